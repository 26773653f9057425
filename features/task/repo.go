package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// ListRecent returns the trailing-window snapshot used for duplicate
// detection. Tasks are scoped to the organization through their project.
func (r *PostgresRepo) ListRecent(ctx context.Context, orgID string, since time.Time) ([]RecentTask, error) {
	query := `SELECT t.id, t.title, t.status FROM tasks t JOIN projects p ON t.project_id = p.id WHERE p.organization_id = $1 AND t.created_at >= $2`
	rows, err := r.db.QueryContext(ctx, query, orgID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []RecentTask
	for rows.Next() {
		var t RecentTask
		if err := rows.Scan(&t.ID, &t.Title, &t.Status); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *PostgresRepo) Save(ctx context.Context, t *Task) error {
	metadata, err := json.Marshal(t.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO tasks (project_id, section_id, parent_task_id, title, description, priority, status, due_date, estimated_hours, metadata, created_by) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		t.ProjectID,
		nullable(t.SectionID),
		nullable(t.ParentTaskID),
		t.Title,
		t.Description,
		t.Priority,
		t.Status,
		t.DueDate,
		t.EstimatedHours,
		metadata,
		nullable(t.CreatedBy),
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *PostgresRepo) SaveAssignment(ctx context.Context, a *Assignment) error {
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now()
	}
	query := `INSERT INTO task_assignees (task_id, user_id, assigned_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, a.TaskID, a.UserID, a.AssignedAt)
	return err
}

func (r *PostgresRepo) SaveActivity(ctx context.Context, e *ActivityLogEntry) error {
	changes, err := json.Marshal(e.Changes)
	if err != nil {
		return err
	}
	query := `INSERT INTO activity_logs (entity_type, entity_id, action, user_id, changes) VALUES ($1, $2, $3, $4, $5)`
	_, err = r.db.ExecContext(ctx, query, e.EntityType, e.EntityID, e.Action, nullable(e.UserID), changes)
	return err
}

func (r *PostgresRepo) Count(ctx context.Context, orgID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM tasks t JOIN projects p ON t.project_id = p.id WHERE p.organization_id = $1`
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(&count)
	return count, err
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
