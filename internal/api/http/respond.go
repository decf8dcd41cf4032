package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/meduaid/qb-portal/internal/policy"
	"github.com/meduaid/qb-portal/internal/rbac"
	"github.com/meduaid/qb-portal/internal/sba"
	"github.com/meduaid/qb-portal/internal/scoring"
)

func callerFromContext(r *http.Request) policy.Caller {
	return policy.Caller{
		ID:   rbac.SubjectFromContext(r.Context()),
		Role: rbac.RoleFromContext(r.Context()),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto transport codes. Validation errors keep
// their descriptive message; everything unrecognized is an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, policy.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, policy.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case isValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		policy.ErrInvalidStatus,
		policy.ErrRejectionReasonRequired,
		sba.ErrCorrectAnswerUnknown,
		scoring.ErrMissingScoreContent,
		scoring.ErrInvalidSectionName,
		scoring.ErrMissingItemDescription,
		scoring.ErrInvalidItemScore,
		scoring.ErrMissingFollowUpQuestion,
		scoring.ErrMissingFollowUpAnswer,
		scoring.ErrInvalidFollowUpScore,
		scoring.ErrTotalMarksMismatch,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
