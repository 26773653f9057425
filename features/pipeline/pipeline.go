// Package pipeline turns unstructured content (email, documents, meeting
// transcripts) into structured tasks: extraction through a text-completion
// service, duplicate filtering, placement and assignee resolution, and
// per-item materialization into the task store.
package pipeline

import (
	"context"
	"errors"
	"time"

	"strideflow/apps/backend/features/project"
	"strideflow/apps/backend/features/task"
	"strideflow/apps/backend/features/team"
	openai "strideflow/apps/backend/internal/adapter/openai"
)

const (
	SourceEmail      = "email"
	SourceDocument   = "document"
	SourceTranscript = "transcript"
)

var (
	// ErrInvalidInput rejects a malformed batch before any external call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtractionService marks the completion service unreachable, errored,
	// or returning unparseable content. Request-wide: no items exist yet.
	ErrExtractionService = errors.New("extraction service error")
)

// Metadata carries whatever source context accompanied the content. All
// fields are optional.
type Metadata struct {
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	CC        string `json:"cc,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Date      string `json:"date,omitempty"`
	ThreadID  string `json:"threadId,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	Filename  string `json:"filename,omitempty"`
	FileType  string `json:"type,omitempty"`
}

// ContentEnvelope is the normalized container for one piece of source
// content. It lives for a single pipeline invocation.
type ContentEnvelope struct {
	Source   string
	Body     string
	Metadata Metadata
}

// ExtractedTask is a task candidate produced by the extraction client. It is
// enriched by the resolvers and consumed by the materializer; it is never
// persisted as-is.
type ExtractedTask struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Priority       string   `json:"priority"`
	RequiredSkills []string `json:"requiredSkills,omitempty"`
	AssigneeHints  []string `json:"assigneeHints,omitempty"`
	DueDateExpr    string   `json:"dueDateExpression,omitempty"`
	ProjectHint    string   `json:"projectHint,omitempty"`
	SectionHint    string   `json:"sectionHint,omitempty"`
	SubtaskTitles  []string `json:"subtaskTitles,omitempty"`
	EstimatedHours *float64 `json:"estimatedHours,omitempty"`

	// SimilarityKey is the normalized title used for dedup comparison.
	SimilarityKey string `json:"-"`
}

// AllocationCandidate scores one roster member against a task's required
// skills. Candidate lists are recomputed per task and never cached across
// runs.
type AllocationCandidate struct {
	Member            team.Member
	MatchingSkills    []string
	SkillScore        int
	AvailabilityScore float64
}

// Request is the inbound batch shape. Metadata may arrive nested or as the
// flat legacy fields; ExtractedTasks short-circuits extraction entirely
// (idempotent re-submission path).
type Request struct {
	Source         string          `json:"source"`
	Content        string          `json:"content,omitempty"`
	Body           string          `json:"body,omitempty"`
	Metadata       Metadata        `json:"metadata,omitempty"`
	OrganizationID string          `json:"organizationId,omitempty"`
	ExtractedTasks []ExtractedTask `json:"extractedTasks,omitempty"`

	// Legacy flat fields, used when metadata is absent.
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	CC        string `json:"cc,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Date      string `json:"date,omitempty"`
	ThreadID  string `json:"threadId,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	Filename  string `json:"filename,omitempty"`
	FileType  string `json:"type,omitempty"`
}

type ItemError struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

// Summary is the count-based response the caller always receives, even on
// partial failure.
type Summary struct {
	CreatedCount int         `json:"createdCount"`
	SkippedCount int         `json:"skippedCount"`
	FailedCount  int         `json:"failedCount"`
	Created      []task.Task `json:"created"`
	Duplicates   []string    `json:"duplicates"`
	Errors       []ItemError `json:"errors"`
}

// Config carries every per-deployment policy knob. Passed in at construction
// time; nothing here is a compiled-in constant.
type Config struct {
	OrgID              string
	DefaultOwnerID     string
	OwnMailDomain      string
	DuplicateThreshold float64
	NearDupThreshold   float64
	DedupWindow        time.Duration
	TeamSize           int
	InboxFallback      bool
	ActionableOnly     bool
	Concurrency        int
}

func (c Config) withDefaults() Config {
	if c.DuplicateThreshold == 0 {
		c.DuplicateThreshold = 0.8
	}
	if c.NearDupThreshold == 0 {
		c.NearDupThreshold = 0.6
	}
	if c.DedupWindow == 0 {
		c.DedupWindow = 30 * 24 * time.Hour
	}
	if c.TeamSize == 0 {
		c.TeamSize = 3
	}
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
	return c
}

// Completer is the contract with the external text-completion service.
type Completer interface {
	Chat(ctx context.Context, req openai.Request, result any) error
}

type ProjectStore interface {
	ListWithSections(ctx context.Context, orgID string) ([]project.Project, error)
	FindByName(ctx context.Context, orgID, name string) (*project.Project, error)
	Save(ctx context.Context, p *project.Project) error
}

type TaskStore interface {
	ListRecent(ctx context.Context, orgID string, since time.Time) ([]task.RecentTask, error)
	Save(ctx context.Context, t *task.Task) error
	SaveAssignment(ctx context.Context, a *task.Assignment) error
	SaveActivity(ctx context.Context, e *task.ActivityLogEntry) error
}

type TeamStore interface {
	ListMembers(ctx context.Context, orgID string) ([]team.Member, error)
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}
