package model

import "time"

// Report statuses
const (
	ReportStatusNotStarted = "not_started"
	ReportStatusReady      = "ready"
	ReportStatusFallback   = "fallback" // AI unavailable, local summary only
)

// Suggestion is a question the AI proposes adding to the form
type Suggestion struct {
	QuestionType QuestionType `json:"questionType" bson:"questionType"`
	QuestionText string       `json:"questionText" bson:"questionText"`
	Options      []string     `json:"options" bson:"options"`
}

// Report is the persisted AI analytics report of a form
type Report struct {
	FormID         string       `json:"formId" bson:"formId"`
	Status         string       `json:"status" bson:"status"`
	Summary        string       `json:"summary,omitempty" bson:"summary,omitempty"`
	Suggestions    []Suggestion `json:"suggestions" bson:"suggestions"`
	Warnings       int          `json:"warnings" bson:"warnings"`
	TotalResponses int          `json:"totalResponses" bson:"totalResponses"`
	GeneratedAt    *time.Time   `json:"generatedAt,omitempty" bson:"generatedAt,omitempty"`
}
