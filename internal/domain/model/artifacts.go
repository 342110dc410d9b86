package model

// SessionArtifacts carries the upstream artifacts a session may have produced.
// Every field is optional; absence means the upstream step has not run yet.
type SessionArtifacts struct {
	SessionID           string  `json:"session_id"`
	BrandContext        *string `json:"brand_context,omitempty"`
	ParsedBrief         *string `json:"parsed_brief,omitempty"`
	ExplorationChoices  *string `json:"exploration_choices,omitempty"`
	ConsultationSummary *string `json:"consultation_summary,omitempty"`
}

// HasParsedBrief reports whether the session brief has been parsed, the one
// hard prerequisite for launching any research job.
func (a *SessionArtifacts) HasParsedBrief() bool {
	return a != nil && a.ParsedBrief != nil && *a.ParsedBrief != ""
}
