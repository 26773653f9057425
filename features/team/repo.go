package team

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// ListMembers merges the registered-user catalog (profiles) with the
// lighter-weight roster (team_members), deduplicated by email. Profiles win
// the merge because they carry login identities.
func (r *PostgresRepo) ListMembers(ctx context.Context, orgID string) ([]Member, error) {
	profiles, err := r.listProfiles(ctx, orgID)
	if err != nil {
		return nil, err
	}

	roster, err := r.listRoster(ctx, orgID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(profiles))
	members := make([]Member, 0, len(profiles)+len(roster))
	for _, m := range profiles {
		seen[strings.ToLower(m.Email)] = struct{}{}
		members = append(members, m)
	}
	for _, m := range roster {
		if _, ok := seen[strings.ToLower(m.Email)]; ok {
			continue
		}
		members = append(members, m)
	}
	return members, nil
}

func (r *PostgresRepo) listProfiles(ctx context.Context, orgID string) ([]Member, error) {
	query := `SELECT id, email, full_name, COALESCE(job_title, ''), expertise, is_ai_agent, ai_capabilities FROM profiles WHERE organization_id = $1 AND job_title IS NOT NULL`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		var skills, caps pq.StringArray
		if err := rows.Scan(&m.ID, &m.Email, &m.Name, &m.JobTitle, &skills, &m.IsAutomation, &caps); err != nil {
			return nil, err
		}
		m.Skills = skills
		m.Capabilities = caps
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *PostgresRepo) listRoster(ctx context.Context, orgID string) ([]Member, error) {
	query := `SELECT email, name, COALESCE(job_title, ''), expertise, is_ai_agent, ai_capabilities FROM team_members WHERE organization_id = $1`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		var skills, caps pq.StringArray
		if err := rows.Scan(&m.Email, &m.Name, &m.JobTitle, &skills, &m.IsAutomation, &caps); err != nil {
			return nil, err
		}
		m.Skills = skills
		m.Capabilities = caps
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *PostgresRepo) Count(ctx context.Context, orgID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM team_members WHERE organization_id = $1`
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(&count)
	return count, err
}
