package task

import (
	"context"
	"time"
)

type Task struct {
	ID             string                 `json:"id"`
	ProjectID      string                 `json:"project_id"`
	SectionID      string                 `json:"section_id,omitempty"`
	ParentTaskID   string                 `json:"parent_task_id,omitempty"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Priority       string                 `json:"priority"` // low, medium, high, critical
	Status         string                 `json:"status"`   // todo, in_progress, review, done
	DueDate        *time.Time             `json:"due_date,omitempty"`
	EstimatedHours *float64               `json:"estimated_hours,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedBy      string                 `json:"created_by,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// RecentTask is the slim projection the duplicate filter compares against.
type RecentTask struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

type Assignment struct {
	TaskID     string    `json:"task_id"`
	UserID     string    `json:"user_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

type ActivityLogEntry struct {
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Action     string                 `json:"action"`
	UserID     string                 `json:"user_id"`
	Changes    map[string]interface{} `json:"changes,omitempty"`
}

type Repository interface {
	ListRecent(ctx context.Context, orgID string, since time.Time) ([]RecentTask, error)
	Save(ctx context.Context, t *Task) error
	SaveAssignment(ctx context.Context, a *Assignment) error
	SaveActivity(ctx context.Context, e *ActivityLogEntry) error
	Count(ctx context.Context, orgID string) (int, error)
}
