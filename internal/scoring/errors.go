package scoring

import "errors"

var (
	// ErrMissingScoreContent is returned when a station has neither marking-scheme
	// items nor follow-up questions.
	ErrMissingScoreContent = errors.New("station must have at least one marking scheme item or follow-up question")
	// ErrInvalidSectionName indicates a marking-scheme section without a name.
	ErrInvalidSectionName = errors.New("marking scheme section name must not be empty")
	// ErrMissingItemDescription indicates a mark item without a description.
	ErrMissingItemDescription = errors.New("mark item description must not be empty")
	// ErrInvalidItemScore indicates a negative or non-finite mark item score.
	ErrInvalidItemScore = errors.New("mark item score must be a non-negative number")
	// ErrMissingFollowUpQuestion indicates a follow-up without a question.
	ErrMissingFollowUpQuestion = errors.New("follow-up question must not be empty")
	// ErrMissingFollowUpAnswer indicates a follow-up without any non-empty answer.
	ErrMissingFollowUpAnswer = errors.New("follow-up must have at least one answer")
	// ErrInvalidFollowUpScore indicates a negative or non-finite follow-up score.
	ErrInvalidFollowUpScore = errors.New("follow-up score must be a non-negative number")
	// ErrTotalMarksMismatch indicates the supplied total does not reconcile with
	// the computed sum of item and follow-up scores.
	ErrTotalMarksMismatch = errors.New("total marks mismatch")
)
