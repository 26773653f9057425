package team

import "context"

// Member is one entry in the deduplicated roster. Members sourced from the
// registered-user catalog carry an ID; roster-only members do not and cannot
// be the target of a formal assignment.
type Member struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	JobTitle     string   `json:"job_title"`
	Skills       []string `json:"skills"`
	IsAutomation bool     `json:"is_automation_agent"`
	Capabilities []string `json:"automation_capabilities,omitempty"`
}

// HasAccount reports whether the member can be assigned tasks directly.
func (m Member) HasAccount() bool {
	return m.ID != ""
}

type Repository interface {
	ListMembers(ctx context.Context, orgID string) ([]Member, error)
	Count(ctx context.Context, orgID string) (int, error)
}
