package model

import (
	"strings"
	"time"
)

// Answer is one respondent's answer to one question. Question text, type and
// options are snapshotted at submission time so later form edits don't
// rewrite history.
type Answer struct {
	QuestionID   string       `json:"questionId" bson:"questionId"`
	QuestionText string       `json:"questionText" bson:"questionText"`
	QuestionType QuestionType `json:"questionType" bson:"questionType"`
	Options      []string     `json:"options,omitempty" bson:"options,omitempty"`
	Answer       string       `json:"answer" bson:"answer"`
}

// HasResponse reports whether the respondent actually answered
func (a *Answer) HasResponse() bool {
	return strings.TrimSpace(a.Answer) != ""
}

// Response is a full submission for a form
type Response struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	FormID      string    `json:"formId" bson:"formId"`
	Answers     []Answer  `json:"answers" bson:"answers"`
	IP          string    `json:"-" bson:"ip"`
	UserAgent   string    `json:"-" bson:"userAgent"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`
}

// SubmittedAnswer is the respondent-side payload for one question
type SubmittedAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// SubmitRequest is the request body for a public submission
type SubmitRequest struct {
	Answers []SubmittedAnswer `json:"answers"`
}
