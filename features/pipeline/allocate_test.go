package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"strideflow/apps/backend/features/team"
)

func rosterFixture() []team.Member {
	return []team.Member{
		{ID: "u1", Name: "Alice Chen", Email: "alice@acme.com", Skills: []string{"go", "postgres", "kubernetes"}},
		{ID: "u2", Name: "Bob Park", Email: "bob@acme.com", Skills: []string{"go", "react"}},
		{ID: "u3", Name: "Carol Diaz", Email: "carol@acme.com", Skills: []string{"design"}},
		{ID: "u4", Name: "Deploy Bot", Email: "bot@acme.com", IsAutomation: true, Capabilities: []string{"kubernetes", "terraform"}},
		{Name: "Eve Lindqvist", Email: "eve@acme.com", Skills: []string{"go"}},
	}
}

func TestScoreCandidates(t *testing.T) {
	roster := rosterFixture()

	t.Run("RanksBySkillOverlap", func(t *testing.T) {
		cands := scoreCandidates([]string{"go", "postgres"}, roster)

		assert.True(t, len(cands) >= 2)
		assert.Equal(t, "Alice Chen", cands[0].Member.Name)
		assert.Equal(t, 2, cands[0].SkillScore)
		assert.Equal(t, 1, cands[1].SkillScore)
	})

	t.Run("DropsZeroOverlap", func(t *testing.T) {
		cands := scoreCandidates([]string{"design"}, roster)

		assert.Len(t, cands, 1)
		assert.Equal(t, "Carol Diaz", cands[0].Member.Name)
	})

	t.Run("AutomationEligibleOnCapabilityOverlap", func(t *testing.T) {
		cands := scoreCandidates([]string{"terraform"}, roster)

		assert.Len(t, cands, 1)
		assert.True(t, cands[0].Member.IsAutomation)
	})

	t.Run("AutomationIneligibleWithoutOverlap", func(t *testing.T) {
		cands := scoreCandidates([]string{"react"}, roster)

		for _, c := range cands {
			assert.False(t, c.Member.IsAutomation)
		}
	})

	t.Run("PartialOverlapRanksBelow", func(t *testing.T) {
		members := []team.Member{
			{ID: "a", Name: "Pat", Email: "pat@acme.com", Skills: []string{"python", "sql"}},
			{ID: "b", Name: "Sam", Email: "sam@acme.com", Skills: []string{"python", "api"}},
		}

		cands := scoreCandidates([]string{"python", "api"}, members)

		assert.Len(t, cands, 2)
		assert.Equal(t, "Sam", cands[0].Member.Name)
		assert.Equal(t, 2, cands[0].SkillScore)
		assert.Equal(t, 1, cands[1].SkillScore)
	})

	t.Run("CaseInsensitiveSkillMatch", func(t *testing.T) {
		cands := scoreCandidates([]string{"Go", "POSTGRES"}, roster)

		assert.Equal(t, 2, cands[0].SkillScore)
	})

	t.Run("NoRequiredSkills", func(t *testing.T) {
		assert.Nil(t, scoreCandidates(nil, roster))
	})

	t.Run("TiesBreakByName", func(t *testing.T) {
		cands := scoreCandidates([]string{"go"}, roster)

		assert.Equal(t, "Alice Chen", cands[0].Member.Name)
		assert.Equal(t, "Bob Park", cands[1].Member.Name)
		assert.Equal(t, "Eve Lindqvist", cands[2].Member.Name)
	})
}

func TestSelectAssignees(t *testing.T) {
	roster := rosterFixture()
	cands := scoreCandidates([]string{"go"}, roster)

	assert.Len(t, selectAssignees(cands, 2), 2)
	assert.Len(t, selectAssignees(cands, 10), 3)
	assert.Len(t, selectAssignees(nil, 3), 0)
}

func TestResolveHints(t *testing.T) {
	roster := rosterFixture()

	t.Run("ExactEmail", func(t *testing.T) {
		matched, unmatched := resolveHints([]string{"alice@acme.com"}, roster)

		assert.Len(t, matched, 1)
		assert.Equal(t, "u1", matched[0].ID)
		assert.Empty(t, unmatched)
	})

	t.Run("EmailCaseInsensitive", func(t *testing.T) {
		matched, _ := resolveHints([]string{"ALICE@ACME.COM"}, roster)

		assert.Len(t, matched, 1)
	})

	t.Run("FuzzyNameSubstring", func(t *testing.T) {
		matched, unmatched := resolveHints([]string{"bob"}, roster)

		assert.Len(t, matched, 1)
		assert.Equal(t, "u2", matched[0].ID)
		assert.Empty(t, unmatched)
	})

	t.Run("HintContainsFullName", func(t *testing.T) {
		matched, _ := resolveHints([]string{"carol diaz (design lead)"}, roster)

		assert.Len(t, matched, 1)
		assert.Equal(t, "u3", matched[0].ID)
	})

	t.Run("UnmatchedReported", func(t *testing.T) {
		matched, unmatched := resolveHints([]string{"zelda"}, roster)

		assert.Empty(t, matched)
		assert.Equal(t, []string{"zelda"}, unmatched)
	})

	t.Run("DeduplicatesByEmail", func(t *testing.T) {
		matched, _ := resolveHints([]string{"alice@acme.com", "alice chen"}, roster)

		assert.Len(t, matched, 1)
	})
}
