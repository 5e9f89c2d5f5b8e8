package model

import "time"

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionTypeMCQ    QuestionType = "mcq"    // Single choice among Options
	QuestionTypeRating QuestionType = "rating" // 0.5 to 5 in half steps
	QuestionTypeNumber QuestionType = "number" // Free numeric input
	QuestionTypeText   QuestionType = "text"   // Free text
)

// IsValid reports whether t is one of the known question types
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeMCQ, QuestionTypeRating, QuestionTypeNumber, QuestionTypeText:
		return true
	}
	return false
}

// Form is a persistent questionnaire owned by a user
type Form struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	OwnerID     string     `json:"ownerId" bson:"ownerId"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	Questions   []Question `json:"questions" bson:"questions"`
	ShareSlug   string     `json:"shareSlug" bson:"shareSlug"`
	IsOpen      bool       `json:"isOpen" bson:"isOpen"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Question is a question slot in a form. The ID stays stable across edits of
// the wording or the options.
type Question struct {
	ID       string       `json:"id" bson:"id"`
	Text     string       `json:"text" bson:"text"`
	Type     QuestionType `json:"type" bson:"type"`
	Options  []string     `json:"options,omitempty" bson:"options,omitempty"` // MCQ only
	Required bool         `json:"required" bson:"required"`
}

// QuestionByID returns the question with the given slot id
func (f *Form) QuestionByID(id string) (*Question, bool) {
	for i := range f.Questions {
		if f.Questions[i].ID == id {
			return &f.Questions[i], true
		}
	}
	return nil, false
}

// PublicForm is what respondents see through a share link
type PublicForm struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	IsOpen      bool       `json:"isOpen"`
}

// Public strips owner data from the form
func (f *Form) Public() *PublicForm {
	return &PublicForm{
		Slug:        f.ShareSlug,
		Title:       f.Title,
		Description: f.Description,
		Questions:   f.Questions,
		IsOpen:      f.IsOpen,
	}
}
