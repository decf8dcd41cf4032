package osce

import "github.com/meduaid/qb-portal/internal/scoring"

// Station is an OSCE exam station: descriptive fields plus the scoring
// structures the marking engine validates. TotalMarks is always the computed
// sum of item and follow-up scores; it is never persisted from caller input
// without reconciliation.
type Station struct {
	ID              string             `json:"id"`
	Writer          string             `json:"writer"`
	Status          string             `json:"status"`
	Title           string             `json:"title"`
	Category        string             `json:"category,omitempty"`
	Subject         string             `json:"subject,omitempty"`
	Topic           string             `json:"topic,omitempty"`
	CaseDescription string             `json:"case_description,omitempty"`
	Images          []string           `json:"images,omitempty"`
	MarkingScheme   []scoring.Section  `json:"marking_scheme,omitempty"`
	FollowUps       []scoring.FollowUp `json:"follow_ups,omitempty"`
	TotalMarks      float64            `json:"total_marks"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	CreatedAt       int64              `json:"created_at,omitempty"`
	UpdatedAt       int64              `json:"updated_at,omitempty"`
}

// CreateInput is the allowed field set for new stations. Writer and Status are
// resolved by the access policy, not taken verbatim.
type CreateInput struct {
	Writer          string             `json:"writer,omitempty"`
	Status          string             `json:"status,omitempty"`
	Title           string             `json:"title" validate:"required"`
	Category        string             `json:"category,omitempty"`
	Subject         string             `json:"subject,omitempty"`
	Topic           string             `json:"topic,omitempty"`
	CaseDescription string             `json:"case_description,omitempty"`
	Images          []string           `json:"images,omitempty"`
	MarkingScheme   []scoring.Section  `json:"marking_scheme,omitempty"`
	FollowUps       []scoring.FollowUp `json:"follow_ups,omitempty"`
	TotalMarks      *float64           `json:"total_marks,omitempty"`
}

// Patch enumerates every field an update may touch. Absent fields stay nil and
// leave the persisted value untouched; arbitrary body keys outside this set are
// dropped at decode time.
type Patch struct {
	Title           *string             `json:"title,omitempty"`
	Category        *string             `json:"category,omitempty"`
	Subject         *string             `json:"subject,omitempty"`
	Topic           *string             `json:"topic,omitempty"`
	CaseDescription *string             `json:"case_description,omitempty"`
	Images          *[]string           `json:"images,omitempty"`
	MarkingScheme   *[]scoring.Section  `json:"marking_scheme,omitempty"`
	FollowUps       *[]scoring.FollowUp `json:"follow_ups,omitempty"`
	TotalMarks      *float64            `json:"total_marks,omitempty"`
	Status          *string             `json:"status,omitempty"`
	RejectionReason *string             `json:"rejection_reason,omitempty"`
}
