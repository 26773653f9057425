package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	openai "strideflow/apps/backend/internal/adapter/openai"
	"strideflow/apps/backend/internal/app"
	"strideflow/apps/backend/internal/config"
)

// TestSmoke_ProcessEmail drives one email through the full HTTP surface:
// extraction against a stubbed completion endpoint, dedup and placement
// against a mocked datastore, and persistence of task, assignment and
// activity log.
func TestSmoke_ProcessEmail(t *testing.T) {
	// Stub completion service
	extraction := `{"tasks":[{"title":"Fix login bug","description":"Users cannot log in","priority":"high","requiredSkills":["go"]}]}`
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}],"usage":{"prompt_tokens":1,"completion_tokens":1}}`, extraction)
	}))
	defer llm.Close()

	completer, err := openai.New(openai.Config{APIKey: "test-key", BaseURL: llm.URL})
	require.NoError(t, err)

	// Mocked datastore, expectations in pipeline call order
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, full_name, COALESCE(job_title, ''), expertise, is_ai_agent, ai_capabilities FROM profiles")).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "job_title", "expertise", "is_ai_agent", "ai_capabilities"}).
			AddRow("u1", "bob@acme.com", "Bob Park", "Engineer", "{go}", false, "{}"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT email, name, COALESCE(job_title, ''), expertise, is_ai_agent, ai_capabilities FROM team_members")).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"email", "name", "job_title", "expertise", "is_ai_agent", "ai_capabilities"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT t.id, t.title, t.status FROM tasks t")).
		WithArgs("org-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, organization_id, name, COALESCE(description, ''), status FROM projects")).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "name", "description", "status"}).
			AddRow("p1", "org-1", "Client Projects", "", "active"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, position FROM task_sections")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "position"}).
			AddRow("s1", "Backlog", 0).
			AddRow("s2", "This Week", 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tasks")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("task-1", time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO task_assignees")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_logs")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cfg := &config.Config{
		DefaultOrgID:        "org-1",
		DuplicateThreshold:  0.8,
		NearDupThreshold:    0.6,
		DedupWindowDays:     30,
		TeamSize:            3,
		PipelineConcurrency: 1,
		ServerPort:          8081,
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	a, err := app.New(cfg, db, completer, nil, logger)
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler)
	defer srv.Close()

	body := `{
		"source": "email",
		"content": "The login page is broken, please fix it.",
		"metadata": {"from": "alice@client.com", "subject": "Login broken"}
	}`
	resp, err := http.Post(srv.URL+"/pipeline/process", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary struct {
		CreatedCount int `json:"createdCount"`
		Created      []struct {
			ID        string `json:"id"`
			SectionID string `json:"section_id"`
		} `json:"created"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	require.Equal(t, 1, summary.CreatedCount)
	require.Equal(t, "task-1", summary.Created[0].ID)
	require.Equal(t, "s2", summary.Created[0].SectionID)

	require.NoError(t, mock.ExpectationsWereMet())
}
