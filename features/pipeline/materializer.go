package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"strideflow/apps/backend/features/project"
	"strideflow/apps/backend/features/task"
	"strideflow/apps/backend/features/team"
	"strideflow/apps/backend/internal/config"
	"strideflow/apps/backend/internal/dates"
)

type itemStatus int

const (
	itemCreated itemStatus = iota
	itemFailed
)

type itemResult struct {
	status itemStatus
	task   *task.Task
	reason string
}

// Materializer walks one extracted item through placement, allocation, date
// resolution and persistence. A failure before the parent task insert fails
// the whole item; failures after it (assignments, subtasks, activity log)
// degrade to warnings so the created task survives.
type Materializer struct {
	projects ProjectStore
	tasks    TaskStore
	events   EventPublisher
	cfg      Config
}

func newMaterializer(projects ProjectStore, tasks TaskStore, events EventPublisher, cfg Config) *Materializer {
	return &Materializer{projects: projects, tasks: tasks, events: events, cfg: cfg}
}

func (m *Materializer) materialize(ctx context.Context, it ExtractedTask, env *ContentEnvelope, catalog []project.Project, roster []team.Member, orgID string, now time.Time) itemResult {
	pl, err := resolvePlacement(it, catalog)
	if err != nil {
		return itemResult{status: itemFailed, reason: err.Error()}
	}

	assignees, unassignable := m.pickAssignees(it, roster)

	t := m.buildTask(it, env, pl, assignees, unassignable, now)
	if err := m.tasks.Save(ctx, t); err != nil {
		return itemResult{status: itemFailed, reason: fmt.Sprintf("save task: %v", err)}
	}

	m.persistAssignments(ctx, t, assignees, now)
	m.persistSubtasks(ctx, t, it, now)
	m.logActivity(ctx, t, env, assignees)
	m.publish(t, assignees)

	return itemResult{status: itemCreated, task: t}
}

func (m *Materializer) pickAssignees(it ExtractedTask, roster []team.Member) (assignees []team.Member, unassignable []team.Member) {
	var picked []team.Member
	if len(it.RequiredSkills) > 0 {
		cands := scoreCandidates(it.RequiredSkills, roster)
		picked = selectAssignees(cands, m.cfg.TeamSize)
	}
	if len(picked) == 0 && len(it.AssigneeHints) > 0 {
		var unmatched []string
		picked, unmatched = resolveHints(it.AssigneeHints, roster)
		if len(unmatched) > 0 {
			slog.Warn("unmatched assignee hints", "hints", unmatched)
		}
	}
	for _, p := range picked {
		if p.HasAccount() {
			assignees = append(assignees, p)
		} else {
			// Roster entries without a platform account cannot hold an
			// assignment row; they are recorded on the task instead.
			unassignable = append(unassignable, p)
		}
	}
	if len(assignees) == 0 && m.cfg.DefaultOwnerID != "" {
		assignees = append(assignees, team.Member{ID: m.cfg.DefaultOwnerID, Name: "default owner"})
	}
	return assignees, unassignable
}

func (m *Materializer) buildTask(it ExtractedTask, env *ContentEnvelope, pl Placement, assignees, unassignable []team.Member, now time.Time) *task.Task {
	priority := strings.ToLower(it.Priority)
	switch priority {
	case "low", "medium", "high", "critical":
	default:
		priority = "medium"
	}

	description := it.Description
	if strings.TrimSpace(description) == "" {
		description = defaultDescription(env)
	}

	var due *time.Time
	if it.DueDateExpr != "" {
		if res, ok := dates.Resolve(it.DueDateExpr, now); ok {
			d := res.Date
			due = &d
		}
	}

	meta := map[string]interface{}{
		"source":       env.Source,
		"autoCreated":  true,
		"autoAssigned": len(assignees) > 0 && len(it.AssigneeHints) == 0,
	}
	if it.SimilarityKey != "" {
		meta["similarityKey"] = it.SimilarityKey
	}
	if env.Metadata.From != "" {
		meta["from"] = env.Metadata.From
	}
	if env.Metadata.Subject != "" {
		meta["subject"] = cleanSubject(env.Metadata.Subject)
	}
	if env.Metadata.Filename != "" {
		meta["filename"] = env.Metadata.Filename
	}
	if len(it.RequiredSkills) > 0 {
		meta["requiredSkills"] = it.RequiredSkills
	}
	if len(assignees) > 0 {
		names := make([]string, len(assignees))
		for i, a := range assignees {
			names[i] = a.Name
		}
		meta["assignedTo"] = names
	}
	if len(unassignable) > 0 {
		names := make([]string, len(unassignable))
		for i, u := range unassignable {
			names[i] = u.Name
		}
		meta["intendedAssignees"] = names
	}

	createdBy := m.cfg.DefaultOwnerID
	if len(assignees) > 0 {
		createdBy = assignees[0].ID
	}

	return &task.Task{
		ProjectID:      pl.Project.ID,
		SectionID:      pl.SectionID,
		Title:          it.Title,
		Description:    description,
		Priority:       priority,
		Status:         "todo",
		DueDate:        due,
		EstimatedHours: it.EstimatedHours,
		Metadata:       meta,
		CreatedBy:      createdBy,
	}
}

func (m *Materializer) persistAssignments(ctx context.Context, t *task.Task, assignees []team.Member, now time.Time) {
	for _, a := range assignees {
		err := m.tasks.SaveAssignment(ctx, &task.Assignment{TaskID: t.ID, UserID: a.ID, AssignedAt: now})
		if err != nil {
			slog.Warn("assignment failed", "task_id", t.ID, "user_id", a.ID, "error", err)
		}
	}
}

func (m *Materializer) persistSubtasks(ctx context.Context, parent *task.Task, it ExtractedTask, now time.Time) {
	n := len(it.SubtaskTitles)
	if n == 0 {
		return
	}
	var hours *float64
	if it.EstimatedHours != nil {
		h := math.Ceil(*it.EstimatedHours / float64(n))
		hours = &h
	}
	for _, title := range it.SubtaskTitles {
		sub := &task.Task{
			ProjectID:      parent.ProjectID,
			SectionID:      parent.SectionID,
			ParentTaskID:   parent.ID,
			Title:          title,
			Priority:       parent.Priority,
			Status:         "todo",
			DueDate:        parent.DueDate,
			EstimatedHours: hours,
			Metadata:       map[string]interface{}{"source": parent.Metadata["source"], "autoCreated": true},
			CreatedBy:      parent.CreatedBy,
		}
		if err := m.tasks.Save(ctx, sub); err != nil {
			slog.Warn("subtask failed", "parent_id", parent.ID, "title", title, "error", err)
		}
	}
}

func (m *Materializer) logActivity(ctx context.Context, t *task.Task, env *ContentEnvelope, assignees []team.Member) {
	changes := map[string]interface{}{
		"title":  t.Title,
		"source": env.Source,
	}
	if env.Metadata.ThreadID != "" {
		changes["email_thread_id"] = env.Metadata.ThreadID
	}
	if env.Metadata.MessageID != "" {
		changes["email_message_id"] = env.Metadata.MessageID
	}
	if len(assignees) > 0 {
		names := make([]string, len(assignees))
		for i, a := range assignees {
			names[i] = a.Name
		}
		changes["assigned_to"] = names
	}
	entry := &task.ActivityLogEntry{
		EntityType: "task",
		EntityID:   t.ID,
		Action:     "created_from_" + env.Source,
		UserID:     t.CreatedBy,
		Changes:    changes,
	}
	if err := m.tasks.SaveActivity(ctx, entry); err != nil {
		slog.Warn("activity log failed", "task_id", t.ID, "error", err)
	}
}

func (m *Materializer) publish(t *task.Task, assignees []team.Member) {
	if m.events == nil {
		return
	}
	if body, err := json.Marshal(map[string]string{
		"taskId":    t.ID,
		"title":     t.Title,
		"projectId": t.ProjectID,
	}); err == nil {
		if err := m.events.Publish(config.TopicTaskCreated, body); err != nil {
			slog.Warn("publish failed", "topic", config.TopicTaskCreated, "task_id", t.ID, "error", err)
		}
	}
	for _, a := range assignees {
		body, err := json.Marshal(map[string]string{
			"taskId": t.ID,
			"title":  t.Title,
			"userId": a.ID,
		})
		if err != nil {
			continue
		}
		if err := m.events.Publish(config.TopicTaskAssigned, body); err != nil {
			slog.Warn("publish failed", "topic", config.TopicTaskAssigned, "task_id", t.ID, "error", err)
		}
	}
}

// ensureInbox finds or creates the catch-all Inbox project for organizations
// that have no projects yet. It runs once per batch, before items fan out,
// so a batch can never insert Inbox twice.
func (m *Materializer) ensureInbox(ctx context.Context, orgID string) (project.Project, error) {
	p, err := m.projects.FindByName(ctx, orgID, "Inbox")
	if err == nil {
		return *p, nil
	}
	inbox := &project.Project{
		OrgID:       orgID,
		Name:        "Inbox",
		Description: "Auto-created for tasks without a project",
		Status:      "active",
	}
	if err := m.projects.Save(ctx, inbox); err != nil {
		return project.Project{}, err
	}
	return *inbox, nil
}
