package pipeline

import (
	"errors"
	"strings"

	"strideflow/apps/backend/features/project"
)

var errNoProject = errors.New("no project available")

// Placement is a resolved project plus (optionally) one of its sections.
type Placement struct {
	Project     project.Project
	SectionID   string
	SectionName string
}

type keywordGroup struct {
	keywords []string
	target   string
}

// Keyword groups map hint vocabulary to canonical project names. First group
// whose keyword appears in the hint wins.
var projectGroups = []keywordGroup{
	{[]string{"pov", "point of view"}, "POV Development"},
	{[]string{"client", "external"}, "Client Projects"},
	{[]string{"internal", "tool", "automation"}, "Internal Tools"},
}

var sectionGroups = []keywordGroup{
	{[]string{"backlog"}, "Backlog"},
	{[]string{"this_week", "this week"}, "This Week"},
	{[]string{"in_progress", "in progress"}, "In Progress"},
	{[]string{"review"}, "Review"},
}

// resolvePlacement picks a project and section for one item. The first
// project in the catalog is the default; hints only override it when they
// match. High and critical priority items bias toward the "This Week"
// section when the item carries no section hint of its own.
func resolvePlacement(it ExtractedTask, catalog []project.Project) (Placement, error) {
	if len(catalog) == 0 {
		return Placement{}, errNoProject
	}

	chosen := catalog[0]
	if target := matchGroup(it.ProjectHint, projectGroups); target != "" {
		for _, p := range catalog {
			if strings.EqualFold(p.Name, target) {
				chosen = p
				break
			}
		}
	} else if it.ProjectHint != "" {
		// No keyword match: fall back to an exact name match on the hint.
		for _, p := range catalog {
			if strings.EqualFold(p.Name, it.ProjectHint) {
				chosen = p
				break
			}
		}
	}

	pl := Placement{Project: chosen}

	sectionName := matchGroup(it.SectionHint, sectionGroups)
	if sectionName == "" && (it.Priority == "high" || it.Priority == "critical") {
		sectionName = "This Week"
	}
	if sectionName != "" {
		for _, s := range chosen.Sections {
			if strings.EqualFold(s.Name, sectionName) {
				pl.SectionID = s.ID
				pl.SectionName = s.Name
				break
			}
		}
	}
	if pl.SectionID == "" && len(chosen.Sections) > 0 {
		pl.SectionID = chosen.Sections[0].ID
		pl.SectionName = chosen.Sections[0].Name
	}
	return pl, nil
}

func matchGroup(hint string, groups []keywordGroup) string {
	h := strings.ToLower(strings.TrimSpace(hint))
	if h == "" {
		return ""
	}
	for _, g := range groups {
		for _, kw := range g.keywords {
			if strings.Contains(h, kw) {
				return g.target
			}
		}
	}
	return ""
}
