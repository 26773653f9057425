package team_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"strideflow/apps/backend/features/team"
)

func TestPostgresRepo_ListMembers(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := team.NewPostgresRepo(db)

	t.Run("MergesAndDeduplicatesByEmail", func(t *testing.T) {
		profileRows := sqlmock.NewRows([]string{"id", "email", "full_name", "job_title", "expertise", "is_ai_agent", "ai_capabilities"}).
			AddRow("u1", "jo@example.com", "Jo Keller", "Backend Engineer", pq.Array([]string{"python", "sql"}), false, pq.Array([]string{}))

		rosterRows := sqlmock.NewRows([]string{"email", "name", "job_title", "expertise", "is_ai_agent", "ai_capabilities"}).
			AddRow("JO@example.com", "Jo Keller", "Backend Engineer", pq.Array([]string{"python"}), false, pq.Array([]string{})).
			AddRow("sam@example.com", "Sam Osei", "Designer", pq.Array([]string{"figma"}), false, pq.Array([]string{}))

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, full_name, COALESCE(job_title, ''), expertise, is_ai_agent, ai_capabilities FROM profiles WHERE organization_id = $1 AND job_title IS NOT NULL")).
			WithArgs("org1").
			WillReturnRows(profileRows)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT email, name, COALESCE(job_title, ''), expertise, is_ai_agent, ai_capabilities FROM team_members WHERE organization_id = $1")).
			WithArgs("org1").
			WillReturnRows(rosterRows)

		members, err := repo.ListMembers(context.Background(), "org1")
		assert.NoError(t, err)
		assert.Len(t, members, 2)

		// The profile entry wins the merge and keeps its login identity.
		assert.Equal(t, "u1", members[0].ID)
		assert.True(t, members[0].HasAccount())
		assert.Equal(t, []string{"python", "sql"}, members[0].Skills)

		assert.Equal(t, "sam@example.com", members[1].Email)
		assert.False(t, members[1].HasAccount())
	})

	t.Run("AutomationAgent", func(t *testing.T) {
		profileRows := sqlmock.NewRows([]string{"id", "email", "full_name", "job_title", "expertise", "is_ai_agent", "ai_capabilities"}).
			AddRow("a1", "agent@example.com", "Ops Agent", "Automation", pq.Array([]string{}), true, pq.Array([]string{"documentation", "testing"}))
		rosterRows := sqlmock.NewRows([]string{"email", "name", "job_title", "expertise", "is_ai_agent", "ai_capabilities"})

		mock.ExpectQuery("SELECT id, email, full_name").WithArgs("org1").WillReturnRows(profileRows)
		mock.ExpectQuery("SELECT email, name").WithArgs("org1").WillReturnRows(rosterRows)

		members, err := repo.ListMembers(context.Background(), "org1")
		assert.NoError(t, err)
		assert.Len(t, members, 1)
		assert.True(t, members[0].IsAutomation)
		assert.Equal(t, []string{"documentation", "testing"}, members[0].Capabilities)
	})
}

func TestPostgresRepo_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := team.NewPostgresRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM team_members WHERE organization_id = $1")).
		WithArgs("org1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background(), "org1")
	assert.NoError(t, err)
	assert.Equal(t, 7, count)
}
