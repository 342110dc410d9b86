package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campaignforge/research-api/internal/domain/model"
)

func fullArtifacts() *model.SessionArtifacts {
	return &model.SessionArtifacts{
		SessionID:           "sess-1",
		BrandContext:        strPtr("Heritage outdoor apparel brand, est. 1952."),
		ParsedBrief:         strPtr("Launch the spring hiking collection."),
		ExplorationChoices:  strPtr("Tone: bold. Channel focus: social."),
		ConsultationSummary: strPtr("Client wants to avoid discount framing."),
	}
}

func sectionOrder(prompt string) []string {
	var headings []string
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "## ") {
			headings = append(headings, strings.TrimPrefix(line, "## "))
		}
	}
	return headings
}

func TestAssemblePromptSectionOrder(t *testing.T) {
	t.Run("strategy order", func(t *testing.T) {
		prompt := AssemblePrompt(model.TemplateStrategy, fullArtifacts(), nil)
		assert.Equal(t, []string{
			"Brand Context",
			"Campaign Brief",
			"Exploration Choices",
			"Consultation Summary",
		}, sectionOrder(prompt))
		assert.True(t, strings.HasPrefix(prompt, strategyInstructions))
	})

	t.Run("big idea order", func(t *testing.T) {
		prompt := AssemblePrompt(model.TemplateBigIdea, fullArtifacts(), nil)
		assert.Equal(t, []string{
			"Campaign Brief",
			"Consultation Summary",
			"Exploration Choices",
			"Brand Context",
		}, sectionOrder(prompt))
		assert.True(t, strings.HasPrefix(prompt, bigIdeaInstructions))
	})
}

func TestAssemblePromptOmitsAbsentSections(t *testing.T) {
	artifacts := &model.SessionArtifacts{
		SessionID:   "sess-1",
		ParsedBrief: strPtr("Launch the spring hiking collection."),
		// Whitespace-only artifacts count as absent.
		ExplorationChoices: strPtr("   "),
	}

	prompt := AssemblePrompt(model.TemplateStrategy, artifacts, nil)
	assert.Equal(t, []string{"Campaign Brief"}, sectionOrder(prompt))
	assert.NotContains(t, prompt, "Brand Context")
	assert.NotContains(t, prompt, "Exploration Choices")
}

func TestAssemblePromptDeterministic(t *testing.T) {
	a := AssemblePrompt(model.TemplateStrategy, fullArtifacts(), []string{"pricing", "channels"})
	b := AssemblePrompt(model.TemplateStrategy, fullArtifacts(), []string{"pricing", "channels"})
	assert.Equal(t, a, b)
}

func TestAssemblePromptFocusAreas(t *testing.T) {
	prompt := AssemblePrompt(model.TemplateStrategy, fullArtifacts(), []string{"pricing", " ", "channels"})
	require.Contains(t, prompt, "## Focus Areas")
	assert.Contains(t, prompt, "- pricing\n- channels")

	noFocus := AssemblePrompt(model.TemplateStrategy, fullArtifacts(), []string{"  "})
	assert.NotContains(t, noFocus, "## Focus Areas")
}

func TestAssemblePromptNilArtifacts(t *testing.T) {
	prompt := AssemblePrompt(model.TemplateStrategy, nil, nil)
	assert.Equal(t, strategyInstructions, prompt)
}

func TestStructuringPrompt(t *testing.T) {
	t.Run("strategy schema", func(t *testing.T) {
		prompt := StructuringPrompt(model.TemplateStrategy, "research text")
		assert.Contains(t, prompt, `"one_line_positioning"`)
		assert.Contains(t, prompt, "research text")
		assert.Contains(t, prompt, "only the JSON object")
	})

	t.Run("big idea schema", func(t *testing.T) {
		prompt := StructuringPrompt(model.TemplateBigIdea, "research text")
		assert.Contains(t, prompt, `"premise"`)
		assert.Contains(t, prompt, `"executions"`)
	})
}
