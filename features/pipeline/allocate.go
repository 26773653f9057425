package pipeline

import (
	"sort"
	"strings"

	"strideflow/apps/backend/features/team"
)

// scoreCandidates ranks the roster against a task's required skills. Human
// members score by skill overlap; automation agents are only eligible when
// their declared capabilities overlap the required skills, and score on that
// overlap. Members with no overlap are dropped.
func scoreCandidates(required []string, roster []team.Member) []AllocationCandidate {
	want := lowerSet(required)
	if len(want) == 0 {
		return nil
	}

	cands := make([]AllocationCandidate, 0, len(roster))
	for _, m := range roster {
		have := m.Skills
		if m.IsAutomation {
			have = m.Capabilities
		}
		matching := intersect(want, have)
		if len(matching) == 0 {
			continue
		}
		cands = append(cands, AllocationCandidate{
			Member:            m,
			MatchingSkills:    matching,
			SkillScore:        len(matching),
			AvailabilityScore: 1.0,
		})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].SkillScore != cands[j].SkillScore {
			return cands[i].SkillScore > cands[j].SkillScore
		}
		if cands[i].AvailabilityScore != cands[j].AvailabilityScore {
			return cands[i].AvailabilityScore > cands[j].AvailabilityScore
		}
		return cands[i].Member.Name < cands[j].Member.Name
	})
	return cands
}

// selectAssignees takes the top candidates up to the configured team size.
func selectAssignees(cands []AllocationCandidate, teamSize int) []team.Member {
	if teamSize <= 0 || teamSize > len(cands) {
		teamSize = len(cands)
	}
	picked := make([]team.Member, 0, teamSize)
	for _, c := range cands[:teamSize] {
		picked = append(picked, c.Member)
	}
	return picked
}

// resolveHints matches explicit assignee hints against the roster: exact
// email first, then case-insensitive substring of the display name. Hints
// that match nobody are returned separately.
func resolveHints(hints []string, roster []team.Member) (matched []team.Member, unmatched []string) {
	seen := map[string]struct{}{}
	for _, hint := range hints {
		h := strings.ToLower(strings.TrimSpace(hint))
		if h == "" {
			continue
		}
		m, ok := findByEmail(h, roster)
		if !ok {
			m, ok = findByName(h, roster)
		}
		if !ok {
			unmatched = append(unmatched, hint)
			continue
		}
		key := strings.ToLower(m.Email)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		matched = append(matched, m)
	}
	return matched, unmatched
}

func findByEmail(h string, roster []team.Member) (team.Member, bool) {
	for _, m := range roster {
		if strings.ToLower(m.Email) == h {
			return m, true
		}
	}
	return team.Member{}, false
}

func findByName(h string, roster []team.Member) (team.Member, bool) {
	for _, m := range roster {
		name := strings.ToLower(m.Name)
		if name != "" && (strings.Contains(name, h) || strings.Contains(h, name)) {
			return m, true
		}
	}
	return team.Member{}, false
}

func lowerSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

func intersect(want map[string]struct{}, have []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, s := range have {
		k := strings.ToLower(strings.TrimSpace(s))
		if _, ok := want[k]; !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
