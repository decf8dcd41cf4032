// Package scoring computes and validates OSCE station totals. All functions are
// pure: they never touch storage or transport, so handlers and services can call
// them on any merged view of a station.
package scoring

import (
	"fmt"
	"math"
	"strings"
)

// Tolerance is the maximum allowed drift between a caller-supplied total and the
// computed sum before the two are considered inconsistent.
const Tolerance = 0.01

// Item is a single scorable line inside a marking-scheme section.
type Item struct {
	Desc  string  `json:"desc"`
	Score float64 `json:"score"`
}

// Section groups mark items under a free-form name. Names are not required to be
// unique across a station.
type Section struct {
	Section string `json:"section"`
	Items   []Item `json:"items"`
}

// FollowUp is an auxiliary question scored independently of the marking scheme.
type FollowUp struct {
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
	Score    float64  `json:"score"`
}

// ComputeTotalMarks sums every item score across all sections plus every
// follow-up score. Nil or empty slices contribute zero. A negative or non-finite
// score aborts with an error naming the offender.
func ComputeTotalMarks(sections []Section, followUps []FollowUp) (float64, error) {
	total := 0.0
	for _, sec := range sections {
		for _, item := range sec.Items {
			if !validScore(item.Score) {
				return 0, fmt.Errorf("%w: item %q in section %q has score %v",
					ErrInvalidItemScore, item.Desc, sec.Section, item.Score)
			}
			total += item.Score
		}
	}
	for i, fu := range followUps {
		if !validScore(fu.Score) {
			return 0, fmt.Errorf("%w: follow-up %d (%q) has score %v",
				ErrInvalidFollowUpScore, i+1, fu.Question, fu.Score)
		}
		total += fu.Score
	}
	return total, nil
}

// ValidateScoringData checks the internal consistency of a station's scoring
// structures. supplied, when non-nil, is the caller's explicit total and must
// reconcile with the computed sum within Tolerance. A nil return means the data
// is safe to persist.
func ValidateScoringData(sections []Section, followUps []FollowUp, supplied *float64) error {
	if !hasScorableContent(sections, followUps) {
		return ErrMissingScoreContent
	}
	for si, sec := range sections {
		if strings.TrimSpace(sec.Section) == "" {
			return fmt.Errorf("%w: section %d", ErrInvalidSectionName, si+1)
		}
		for ii, item := range sec.Items {
			if strings.TrimSpace(item.Desc) == "" {
				return fmt.Errorf("%w: item %d in section %q", ErrMissingItemDescription, ii+1, sec.Section)
			}
			if !validScore(item.Score) {
				return fmt.Errorf("%w: item %q in section %q has score %v",
					ErrInvalidItemScore, item.Desc, sec.Section, item.Score)
			}
		}
	}
	for i, fu := range followUps {
		if strings.TrimSpace(fu.Question) == "" {
			return fmt.Errorf("%w: follow-up %d", ErrMissingFollowUpQuestion, i+1)
		}
		if !hasAnswer(fu.Answers) {
			return fmt.Errorf("%w: follow-up %q", ErrMissingFollowUpAnswer, fu.Question)
		}
		if !validScore(fu.Score) {
			return fmt.Errorf("%w: follow-up %d (%q) has score %v",
				ErrInvalidFollowUpScore, i+1, fu.Question, fu.Score)
		}
	}
	if supplied != nil {
		computed, err := ComputeTotalMarks(sections, followUps)
		if err != nil {
			return err
		}
		if math.Abs(*supplied-computed) > Tolerance {
			return fmt.Errorf("%w: provided %v, calculated %v", ErrTotalMarksMismatch, *supplied, computed)
		}
	}
	return nil
}

func hasScorableContent(sections []Section, followUps []FollowUp) bool {
	for _, sec := range sections {
		if len(sec.Items) > 0 {
			return true
		}
	}
	return len(followUps) > 0
}

func hasAnswer(answers []string) bool {
	for _, a := range answers {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}

func validScore(s float64) bool {
	return s >= 0 && !math.IsNaN(s) && !math.IsInf(s, 0)
}
