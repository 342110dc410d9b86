package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ToolInvocation is one entry in the ordered tool trace a research task
// produced while executing (searches, fetches, and similar).
type ToolInvocation struct {
	Kind   string `json:"kind"`
	Query  string `json:"query,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// RawResult is the unmodified output of a completed research task: the
// free-form prose plus the ordered trace of tool invocations.
type RawResult struct {
	OutputText string           `json:"output_text"`
	ToolTrace  []ToolInvocation `json:"tool_trace,omitempty"`
	ReceivedAt time.Time        `json:"received_at"`
}

// StrategyResult is the structured record the structuring phase produces for
// the strategy template.
type StrategyResult struct {
	Title              string   `json:"title"`
	OneLinePositioning string   `json:"one_line_positioning"`
	TargetAudience     string   `json:"target_audience"`
	KeyMessages        []string `json:"key_messages"`
	Channels           []string `json:"channels,omitempty"`
	Risks              []string `json:"risks,omitempty"`
}

// BigIdeaResult is the structured record the structuring phase produces for
// the big-idea template.
type BigIdeaResult struct {
	Title       string   `json:"title"`
	Premise     string   `json:"premise"`
	Hook        string   `json:"hook"`
	Executions  []string `json:"executions"`
	Differentia []string `json:"differentiators,omitempty"`
}

// SchemaError reports the fields a candidate structured result is missing or
// violating. No coercion is attempted; the caller decides whether to retry.
type SchemaError struct {
	Kind   TemplateKind
	Fields []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("structured result does not satisfy %s schema: %s",
		e.Kind, strings.Join(e.Fields, ", "))
}

// ValidateStructured checks a parsed JSON document against the schema for the
// given template kind and returns the canonical re-marshaled form on success.
func ValidateStructured(kind TemplateKind, doc json.RawMessage) (json.RawMessage, error) {
	switch kind {
	case TemplateStrategy:
		var r StrategyResult
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, &SchemaError{Kind: kind, Fields: []string{"(not an object)"}}
		}
		var missing []string
		if strings.TrimSpace(r.Title) == "" {
			missing = append(missing, "title")
		}
		if strings.TrimSpace(r.OneLinePositioning) == "" {
			missing = append(missing, "one_line_positioning")
		}
		if strings.TrimSpace(r.TargetAudience) == "" {
			missing = append(missing, "target_audience")
		}
		if len(r.KeyMessages) == 0 {
			missing = append(missing, "key_messages")
		}
		if len(missing) > 0 {
			return nil, &SchemaError{Kind: kind, Fields: missing}
		}
		out, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("marshal strategy result: %w", err)
		}
		return out, nil
	case TemplateBigIdea:
		var r BigIdeaResult
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, &SchemaError{Kind: kind, Fields: []string{"(not an object)"}}
		}
		var missing []string
		if strings.TrimSpace(r.Title) == "" {
			missing = append(missing, "title")
		}
		if strings.TrimSpace(r.Premise) == "" {
			missing = append(missing, "premise")
		}
		if strings.TrimSpace(r.Hook) == "" {
			missing = append(missing, "hook")
		}
		if len(r.Executions) == 0 {
			missing = append(missing, "executions")
		}
		if len(missing) > 0 {
			return nil, &SchemaError{Kind: kind, Fields: missing}
		}
		out, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("marshal big idea result: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown template kind: %q", kind)
	}
}
