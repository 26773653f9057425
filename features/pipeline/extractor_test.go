package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"strideflow/apps/backend/features/team"
)

func TestFilterExtracted(t *testing.T) {
	t.Run("DropsShortTitles", func(t *testing.T) {
		kept := filterExtracted([]ExtractedTask{
			{Title: "Fix"},
			{Title: "  ok  "},
			{Title: "Fix login bug"},
		}, false)

		assert.Len(t, kept, 1)
		assert.Equal(t, "Fix login bug", kept[0].Title)
	})

	t.Run("SetsSimilarityKey", func(t *testing.T) {
		kept := filterExtracted([]ExtractedTask{{Title: "Fix Login-Bug!"}}, false)

		assert.Equal(t, "fixloginbug", kept[0].SimilarityKey)
	})

	t.Run("ActionableOnlyDropsThirdPartyCommitments", func(t *testing.T) {
		kept := filterExtracted([]ExtractedTask{
			{Title: "Bob will send the deck"},
			{Title: "Vendor is going to ship the parts"},
		}, true)

		assert.Empty(t, kept)
	})

	t.Run("ActionableOnlyKeepsDirectlyAddressedItems", func(t *testing.T) {
		kept := filterExtracted([]ExtractedTask{
			{Title: "You will present the roadmap"},
			{Title: "I will draft the proposal"},
		}, true)

		assert.Len(t, kept, 2)
	})

	t.Run("HeuristicDisabledKeepsEverything", func(t *testing.T) {
		kept := filterExtracted([]ExtractedTask{
			{Title: "Bob will send the deck"},
		}, false)

		assert.Len(t, kept, 1)
	})
}

func TestBuildUserPrompt(t *testing.T) {
	env := &ContentEnvelope{
		Source: SourceEmail,
		Body:   "Please fix the login bug by Friday.",
		Metadata: Metadata{
			From:    "alice@client.com",
			Subject: "Login broken",
		},
	}
	roster := []team.Member{
		{Name: "Bob Park", Email: "bob@acme.com", JobTitle: "Engineer", Skills: []string{"go", "react"}},
		{Name: "Deploy Bot", Email: "bot@acme.com", IsAutomation: true, Capabilities: []string{"kubernetes"}},
	}
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	prompt := buildUserPrompt(env, roster, now)

	assert.Contains(t, prompt, "Current date: Wednesday, 2024-01-10")
	assert.Contains(t, prompt, "From: alice@client.com")
	assert.Contains(t, prompt, "Subject: Login broken")
	assert.Contains(t, prompt, "Bob Park <bob@acme.com>")
	assert.Contains(t, prompt, "skills: go, react")
	assert.Contains(t, prompt, "(automation agent)")
	assert.Contains(t, prompt, "skills: kubernetes")
	assert.True(t, strings.HasSuffix(prompt, "Please fix the login bug by Friday."))
}
