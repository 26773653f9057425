package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"strideflow/apps/backend/features/project"
	"strideflow/apps/backend/features/task"
	"strideflow/apps/backend/features/team"
)

// Service orchestrates one pipeline run: normalize, extract, dedup, then
// materialize each surviving item. Item failures accumulate in the summary;
// only input validation and extraction abort the whole batch.
type Service struct {
	extractor *Extractor
	projects  ProjectStore
	tasks     TaskStore
	team      TeamStore
	mat       *Materializer
	cfg       Config
	now       func() time.Time
}

func NewService(completer Completer, projects ProjectStore, tasks TaskStore, teamStore TeamStore, events EventPublisher, cfg Config) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		extractor: NewExtractor(completer, cfg.ActionableOnly),
		projects:  projects,
		tasks:     tasks,
		team:      teamStore,
		mat:       newMaterializer(projects, tasks, events, cfg),
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *Service) Process(ctx context.Context, req Request) (*Summary, error) {
	orgID := req.OrganizationID
	if orgID == "" {
		orgID = s.cfg.OrgID
	}
	if orgID == "" {
		return nil, fmt.Errorf("%w: organizationId is required", ErrInvalidInput)
	}

	env, err := newEnvelope(req)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Created: []task.Task{}, Duplicates: []string{}, Errors: []ItemError{}}

	if env.Source == SourceEmail && fromOwnDomain(env.Metadata.From, s.cfg.OwnMailDomain) {
		slog.Info("skipping sent mail", "from", env.Metadata.From)
		return summary, nil
	}

	now := s.now()

	roster, err := s.team.ListMembers(ctx, orgID)
	if err != nil {
		slog.Warn("roster unavailable", "error", err)
		roster = nil
	}

	items := req.ExtractedTasks
	if len(items) > 0 {
		items = filterExtracted(items, s.cfg.ActionableOnly)
	} else {
		items, err = s.extractor.Extract(ctx, env, roster, now)
		if err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		return summary, nil
	}

	recent, err := s.tasks.ListRecent(ctx, orgID, now.Add(-s.cfg.DedupWindow))
	if err != nil {
		slog.Warn("dedup snapshot unavailable", "error", err)
		recent = nil
	}
	fresh, duplicates := partitionDuplicates(items, recent, duplicatePolicy{
		hard: s.cfg.DuplicateThreshold,
		near: s.cfg.NearDupThreshold,
	})
	summary.Duplicates = append(summary.Duplicates, duplicates...)
	summary.SkippedCount = len(duplicates)
	if len(fresh) == 0 {
		slog.Info("all items were duplicates", "skipped", summary.SkippedCount)
		return summary, nil
	}

	catalog, err := s.projects.ListWithSections(ctx, orgID)
	if err != nil {
		slog.Warn("project catalog unavailable", "error", err)
		catalog = nil
	}
	if len(catalog) == 0 && s.cfg.InboxFallback {
		inbox, err := s.mat.ensureInbox(ctx, orgID)
		if err != nil {
			slog.Warn("inbox fallback unavailable", "error", err)
		} else {
			catalog = append(catalog, inbox)
		}
	}

	results := s.materializeAll(ctx, fresh, env, catalog, roster, orgID, now)
	for i, r := range results {
		switch r.status {
		case itemCreated:
			summary.Created = append(summary.Created, *r.task)
			summary.CreatedCount++
		case itemFailed:
			summary.Errors = append(summary.Errors, ItemError{Item: fresh[i].Title, Reason: r.reason})
			summary.FailedCount++
		}
	}

	slog.Info("pipeline run complete",
		"source", env.Source,
		"created", summary.CreatedCount,
		"skipped", summary.SkippedCount,
		"failed", summary.FailedCount)
	return summary, nil
}

// materializeAll fans out over a bounded worker pool. Dedup already ran
// against a single snapshot, so items are independent of each other here.
func (s *Service) materializeAll(ctx context.Context, items []ExtractedTask, env *ContentEnvelope, catalog []project.Project, roster []team.Member, orgID string, now time.Time) []itemResult {
	results := make([]itemResult, len(items))
	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup
	for i, it := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, it ExtractedTask) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.mat.materialize(ctx, it, env, catalog, roster, orgID, now)
		}(i, it)
	}
	wg.Wait()
	return results
}
