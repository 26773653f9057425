// Package dates resolves date expressions embedded in free text against a
// caller-supplied anchor time. Recognition is rule-ordered: explicit dates
// win over relative keywords, which win over weekday and end-of-period
// phrases. Unrecognized text yields no resolution, never a default.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Resolution is one recognized date expression. Rule names the pattern that
// matched so callers and tests can tell resolutions apart.
type Resolution struct {
	Date time.Time
	Rule string
	Text string
}

var (
	isoRe      = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	numericRe  = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`)
	relDayRe   = regexp.MustCompile(`(?i)\b(today|tomorrow|yesterday)\b`)
	inDaysRe   = regexp.MustCompile(`(?i)\bin (\d+) days?\b`)
	weekdayRe  = regexp.MustCompile(`(?i)\b(next|this)\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	endOfRe    = regexp.MustCompile(`(?i)\bend of (week|month)\b`)
)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// Resolve returns the first date expression found in text, by rule priority.
// The second return is false when nothing matched.
func Resolve(text string, now time.Time) (Resolution, bool) {
	if m := isoRe.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if date, ok := calendarDate(y, mo, d, now.Location()); ok {
			return Resolution{Date: date, Rule: "iso", Text: m[0]}, true
		}
	}

	// Month-first, two- or four-digit year.
	if m := numericRe.FindStringSubmatch(text); m != nil {
		mo, _ := strconv.Atoi(m[1])
		d, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if y < 100 {
			y += 2000
		}
		if date, ok := calendarDate(y, mo, d, now.Location()); ok {
			return Resolution{Date: date, Rule: "numeric", Text: m[0]}, true
		}
	}

	if m := relDayRe.FindStringSubmatch(text); m != nil {
		offset := 0
		switch strings.ToLower(m[1]) {
		case "tomorrow":
			offset = 1
		case "yesterday":
			offset = -1
		}
		return Resolution{Date: truncate(now).AddDate(0, 0, offset), Rule: "relative-day", Text: m[0]}, true
	}

	if m := inDaysRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Resolution{Date: truncate(now).AddDate(0, 0, n), Rule: "in-n-days", Text: m[0]}, true
	}

	if m := weekdayRe.FindStringSubmatch(text); m != nil {
		wd := weekdays[strings.ToLower(m[2])]
		// "this" is the closest occurrence strictly after the anchor,
		// "next" skips one more week.
		delta := (int(wd) - int(now.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		if strings.EqualFold(m[1], "next") {
			delta += 7
		}
		return Resolution{Date: truncate(now).AddDate(0, 0, delta), Rule: "weekday", Text: m[0]}, true
	}

	if m := endOfRe.FindStringSubmatch(text); m != nil {
		if strings.EqualFold(m[1], "week") {
			delta := (int(time.Friday) - int(now.Weekday()) + 7) % 7
			return Resolution{Date: truncate(now).AddDate(0, 0, delta), Rule: "end-of-week", Text: m[0]}, true
		}
		lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location())
		return Resolution{Date: lastDay, Rule: "end-of-month", Text: m[0]}, true
	}

	return Resolution{}, false
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func calendarDate(y, mo, d int, loc *time.Location) (time.Time, bool) {
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	date := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, loc)
	// time.Date normalizes overflow (e.g. Feb 30); reject those.
	if int(date.Month()) != mo || date.Day() != d {
		return time.Time{}, false
	}
	return date, true
}
