package sba

import "errors"

// Choice is one answer option of a single-best-answer question, labelled A-E.
type Choice struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Submission is a single-best-answer exam question moving through the same
// draft/pending/approved/rejected lifecycle as an OSCE station.
type Submission struct {
	ID              string   `json:"id"`
	Writer          string   `json:"writer"`
	Status          string   `json:"status"`
	Question        string   `json:"question"`
	Choices         []Choice `json:"choices"`
	CorrectAnswer   string   `json:"correct_answer"`
	Explanation     string   `json:"explanation,omitempty"`
	Category        string   `json:"category,omitempty"`
	Subject         string   `json:"subject,omitempty"`
	Topic           string   `json:"topic,omitempty"`
	Images          []string `json:"images,omitempty"`
	RejectionReason string   `json:"rejection_reason,omitempty"`
	CreatedAt       int64    `json:"created_at,omitempty"`
	UpdatedAt       int64    `json:"updated_at,omitempty"`
}

// CreateInput is the allowed field set for new submissions.
type CreateInput struct {
	Writer        string   `json:"writer,omitempty"`
	Status        string   `json:"status,omitempty"`
	Question      string   `json:"question" validate:"required"`
	Choices       []Choice `json:"choices" validate:"min=2,dive"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Explanation   string   `json:"explanation,omitempty"`
	Category      string   `json:"category,omitempty"`
	Subject       string   `json:"subject,omitempty"`
	Topic         string   `json:"topic,omitempty"`
	Images        []string `json:"images,omitempty"`
}

// Patch enumerates every field an update may touch.
type Patch struct {
	Question        *string   `json:"question,omitempty"`
	Choices         *[]Choice `json:"choices,omitempty"`
	CorrectAnswer   *string   `json:"correct_answer,omitempty"`
	Explanation     *string   `json:"explanation,omitempty"`
	Category        *string   `json:"category,omitempty"`
	Subject         *string   `json:"subject,omitempty"`
	Topic           *string   `json:"topic,omitempty"`
	Images          *[]string `json:"images,omitempty"`
	Status          *string   `json:"status,omitempty"`
	RejectionReason *string   `json:"rejection_reason,omitempty"`
}

// ErrCorrectAnswerUnknown is returned when the correct answer does not match
// any choice label.
var ErrCorrectAnswerUnknown = errors.New("correct answer must match one of the choice labels")

func answerMatchesChoice(answer string, choices []Choice) bool {
	for _, c := range choices {
		if c.Label == answer {
			return true
		}
	}
	return false
}
