package project

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// ListWithSections returns the organization's projects in catalog order,
// each with its sections ordered by position.
func (r *PostgresRepo) ListWithSections(ctx context.Context, orgID string) ([]Project, error) {
	query := `SELECT id, organization_id, name, COALESCE(description, ''), status FROM projects WHERE organization_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.OrgID, &p.Name, &p.Description, &p.Status); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range projects {
		sections, err := r.listSections(ctx, projects[i].ID)
		if err != nil {
			return nil, err
		}
		projects[i].Sections = sections
	}
	return projects, nil
}

func (r *PostgresRepo) listSections(ctx context.Context, projectID string) ([]Section, error) {
	query := `SELECT id, name, position FROM task_sections WHERE project_id = $1 ORDER BY position ASC`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.Name, &s.Position); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

func (r *PostgresRepo) FindByName(ctx context.Context, orgID, name string) (*Project, error) {
	p := &Project{}
	query := `SELECT id, organization_id, name, COALESCE(description, ''), status FROM projects WHERE organization_id = $1 AND name = $2`
	err := r.db.QueryRowContext(ctx, query, orgID, name).Scan(&p.ID, &p.OrgID, &p.Name, &p.Description, &p.Status)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepo) Save(ctx context.Context, p *Project) error {
	query := `INSERT INTO projects (organization_id, name, description, status) VALUES ($1, $2, $3, $4) RETURNING id`
	return r.db.QueryRowContext(ctx, query, p.OrgID, p.Name, p.Description, p.Status).Scan(&p.ID)
}

func (r *PostgresRepo) Count(ctx context.Context, orgID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM projects WHERE organization_id = $1`
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(&count)
	return count, err
}
