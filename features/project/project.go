package project

import "context"

type Project struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"organization_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"` // planning, active, archived
	Sections    []Section `json:"sections,omitempty"`
}

type Section struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type Repository interface {
	ListWithSections(ctx context.Context, orgID string) ([]Project, error)
	FindByName(ctx context.Context, orgID, name string) (*Project, error)
	Save(ctx context.Context, p *Project) error
	Count(ctx context.Context, orgID string) (int, error)
}
