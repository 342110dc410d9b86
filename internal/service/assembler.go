package service

import (
	"strings"

	"github.com/campaignforge/research-api/internal/domain/model"
)

// Research prompt templates. The instruction text is opaque configuration as
// far as this service is concerned; only the section scaffolding matters.
const (
	strategyInstructions = `You are a senior marketing strategist. Using the campaign context below, produce a thorough research-backed campaign strategy: positioning, target audience, key messages, channel recommendations, and risks. Cite the signals you relied on.`

	bigIdeaInstructions = `You are an award-winning creative director. Using the campaign context below, develop one bold creative big idea for the campaign: the premise, the hook, and concrete executions across channels. Explain why it will cut through.`
)

type promptSection struct {
	heading string
	body    string
}

// AssemblePrompt merges the session's optional artifacts into one composite
// prompt for the given template kind. Sections are appended only when the
// artifact is present, in a fixed order per template, so equal inputs always
// produce byte-equal prompts.
func AssemblePrompt(kind model.TemplateKind, artifacts *model.SessionArtifacts, focusAreas []string) string {
	var b strings.Builder

	switch kind {
	case model.TemplateBigIdea:
		b.WriteString(bigIdeaInstructions)
	default:
		b.WriteString(strategyInstructions)
	}

	for _, sec := range orderedSections(kind, artifacts) {
		b.WriteString("\n\n## ")
		b.WriteString(sec.heading)
		b.WriteString("\n")
		b.WriteString(sec.body)
	}

	if focus := joinFocusAreas(focusAreas); focus != "" {
		b.WriteString("\n\n## Focus Areas\n")
		b.WriteString(focus)
	}

	return b.String()
}

// orderedSections returns the present artifact sections in template order.
// Absent artifacts are silently omitted; no placeholder text is emitted.
func orderedSections(kind model.TemplateKind, artifacts *model.SessionArtifacts) []promptSection {
	if artifacts == nil {
		return nil
	}

	var out []promptSection
	add := func(heading string, value *string) {
		if value == nil {
			return
		}
		body := strings.TrimSpace(*value)
		if body == "" {
			return
		}
		out = append(out, promptSection{heading: heading, body: body})
	}

	switch kind {
	case model.TemplateBigIdea:
		// The creative template leads with the brief and prior strategy
		// discussion; brand context comes last as supporting texture.
		add("Campaign Brief", artifacts.ParsedBrief)
		add("Consultation Summary", artifacts.ConsultationSummary)
		add("Exploration Choices", artifacts.ExplorationChoices)
		add("Brand Context", artifacts.BrandContext)
	default:
		add("Brand Context", artifacts.BrandContext)
		add("Campaign Brief", artifacts.ParsedBrief)
		add("Exploration Choices", artifacts.ExplorationChoices)
		add("Consultation Summary", artifacts.ConsultationSummary)
	}
	return out
}

func joinFocusAreas(areas []string) string {
	var kept []string
	for _, a := range areas {
		a = strings.TrimSpace(a)
		if a != "" {
			kept = append(kept, "- "+a)
		}
	}
	return strings.Join(kept, "\n")
}

// StructuringPrompt builds the Phase-2 transformation prompt that asks for a
// bare JSON object conforming to the template's target schema.
func StructuringPrompt(kind model.TemplateKind, outputText string) string {
	var b strings.Builder
	b.WriteString("Convert the research below into a single JSON object. Respond with only the JSON object, no prose and no code fences.\n\nRequired schema:\n")

	switch kind {
	case model.TemplateBigIdea:
		b.WriteString(`{"title": string, "premise": string, "hook": string, "executions": [string], "differentiators": [string]}`)
	default:
		b.WriteString(`{"title": string, "one_line_positioning": string, "target_audience": string, "key_messages": [string], "channels": [string], "risks": [string]}`)
	}

	b.WriteString("\n\nResearch:\n")
	b.WriteString(outputText)
	return b.String()
}
