package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"strideflow/apps/backend/features/team"
	openai "strideflow/apps/backend/internal/adapter/openai"
	"strideflow/apps/backend/internal/similarity"
)

// taskList is the structured output contract sent to the completion service.
type taskList struct {
	Tasks []ExtractedTask `json:"tasks"`
}

var taskListSchema = openai.GenerateSchema[taskList]()

// Extractor calls the completion service with content plus roster context and
// returns filtered task candidates.
type Extractor struct {
	completer      Completer
	actionableOnly bool
}

func NewExtractor(completer Completer, actionableOnly bool) *Extractor {
	return &Extractor{completer: completer, actionableOnly: actionableOnly}
}

const extractSystemPrompt = `You are an expert project manager. You read raw content (emails, documents, meeting transcripts) and extract concrete, actionable work items from it.

Rules:
- Only extract tasks that represent real work someone must do. Skip pleasantries, FYIs, and statements about what third parties will do on their own.
- Titles must be short imperative phrases.
- Keep any deadline phrasing from the content verbatim in dueDateExpression (for example "next Friday", "by end of month", "2024-03-15"). Do not convert it yourself.
- requiredSkills lists the competencies the work calls for; match the team roster's skill names where possible.
- assigneeHints lists names or email addresses the content explicitly directs work to.
- Break genuinely multi-step items into subtaskTitles; leave it empty otherwise.
- priority is one of: low, medium, high, critical.
- sectionHint, when the content implies scheduling, is one of: backlog, this_week, in_progress, review.
Respond with a JSON object containing a "tasks" array. Return an empty array when nothing is actionable.`

func (e *Extractor) Extract(ctx context.Context, env *ContentEnvelope, roster []team.Member, now time.Time) ([]ExtractedTask, error) {
	var out taskList
	req := openai.Request{
		SystemPrompt: extractSystemPrompt,
		UserPrompt:   buildUserPrompt(env, roster, now),
		SchemaName:   "task_extraction",
		Schema:       taskListSchema,
		Temperature:  openai.Temp(0.2),
	}
	if err := e.completer.Chat(ctx, req, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionService, err)
	}
	return filterExtracted(out.Tasks, e.actionableOnly), nil
}

func buildUserPrompt(env *ContentEnvelope, roster []team.Member, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current date: %s\n", now.Format("Monday, 2006-01-02"))
	fmt.Fprintf(&b, "Content source: %s\n", env.Source)
	if env.Metadata.From != "" {
		fmt.Fprintf(&b, "From: %s\n", env.Metadata.From)
	}
	if env.Metadata.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", env.Metadata.Subject)
	}
	if env.Metadata.Date != "" {
		fmt.Fprintf(&b, "Sent: %s\n", env.Metadata.Date)
	}
	if env.Metadata.Filename != "" {
		fmt.Fprintf(&b, "File: %s\n", env.Metadata.Filename)
	}
	if len(roster) > 0 {
		b.WriteString("\nTeam roster:\n")
		for _, m := range roster {
			kind := ""
			if m.IsAutomation {
				kind = " (automation agent)"
			}
			skills := m.Skills
			if m.IsAutomation {
				skills = m.Capabilities
			}
			fmt.Fprintf(&b, "- %s <%s>%s, %s, skills: %s\n",
				m.Name, m.Email, kind, m.JobTitle, strings.Join(skills, ", "))
		}
	}
	b.WriteString("\nContent:\n")
	b.WriteString(env.Body)
	return b.String()
}

var (
	// Third-party commitments ("Bob will send the deck") are not our work
	// unless the sentence also addresses us directly.
	thirdPartyRe  = regexp.MustCompile(`(?i)\b(will|is going to)\b`)
	directCueRe   = regexp.MustCompile(`(?i)\b(you|your|i|we)\b`)
	minTitleChars = 6
)

// filterExtracted applies the post-extraction quality gate: a minimum title
// length always, plus the actionable-only heuristic when enabled.
func filterExtracted(items []ExtractedTask, actionableOnly bool) []ExtractedTask {
	kept := make([]ExtractedTask, 0, len(items))
	for _, it := range items {
		it.Title = strings.TrimSpace(it.Title)
		if len(it.Title) < minTitleChars {
			continue
		}
		if actionableOnly && thirdPartyRe.MatchString(it.Title) && !directCueRe.MatchString(it.Title) {
			continue
		}
		it.SimilarityKey = similarity.Key(it.Title)
		kept = append(kept, it)
	}
	return kept
}
