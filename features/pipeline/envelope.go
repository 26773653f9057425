package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

var validSources = map[string]struct{}{
	SourceEmail:      {},
	SourceDocument:   {},
	SourceTranscript: {},
}

// newEnvelope validates the inbound batch and normalizes it into a
// ContentEnvelope. Content wins over body when both are present. Missing
// metadata is synthesized from the flat legacy fields.
func newEnvelope(req Request) (*ContentEnvelope, error) {
	source := strings.ToLower(strings.TrimSpace(req.Source))
	if source == "" {
		return nil, fmt.Errorf("%w: source is required", ErrInvalidInput)
	}
	if _, ok := validSources[source]; !ok {
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, req.Source)
	}

	body := req.Content
	if body == "" {
		body = req.Body
	}
	if strings.TrimSpace(body) == "" && len(req.ExtractedTasks) == 0 {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	meta := req.Metadata
	if meta == (Metadata{}) {
		meta = Metadata{
			From:      req.From,
			To:        req.To,
			CC:        req.CC,
			Subject:   req.Subject,
			Date:      req.Date,
			ThreadID:  req.ThreadID,
			MessageID: req.MessageID,
			Filename:  req.Filename,
			FileType:  req.FileType,
		}
	}

	return &ContentEnvelope{Source: source, Body: body, Metadata: meta}, nil
}

var replyPrefixRe = regexp.MustCompile(`(?i)^(re|fwd|fw):\s*`)

// cleanSubject strips reply and forward prefixes, repeatedly, and caps the
// result at 100 characters so it stays usable as a project or task name.
func cleanSubject(subject string) string {
	s := strings.TrimSpace(subject)
	for {
		stripped := replyPrefixRe.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = strings.TrimSpace(stripped)
	}
	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}
	return s
}

// fromOwnDomain reports whether the sender address belongs to the
// organization's own mail domain. Used to skip sent mail echoed back by the
// provider.
func fromOwnDomain(from, domain string) bool {
	if domain == "" || from == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(from), "@"+strings.ToLower(domain))
}

// defaultDescription builds a fallback description when the extractor left
// one empty.
func defaultDescription(env *ContentEnvelope) string {
	if env.Metadata.From == "" && env.Metadata.Subject == "" {
		return ""
	}
	return fmt.Sprintf("From: %s\nSubject: %s", env.Metadata.From, env.Metadata.Subject)
}
