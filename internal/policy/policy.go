// Package policy decides, per request, whether a caller may create, update,
// delete or list a piece of reviewable content and what the resulting status and
// rejection reason are. It is shared by OSCE stations and SBA submissions: the
// field lists differ per type, but the role x status rules do not. All functions
// are pure so the rules can be tested without a transport or a store.
package policy

import (
	"errors"
	"strings"
)

const (
	RoleWriter = "writer"
	RoleAdmin  = "admin"
)

const (
	StatusDraft    = "draft"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var (
	// ErrForbidden is returned when role, ownership or the document state denies
	// the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is the shared not-found sentinel surfaced by stores.
	ErrNotFound = errors.New("not found")
	// ErrInvalidStatus is returned when a requested status is not one of the
	// draft/pending/approved/rejected enum values.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrRejectionReasonRequired is returned when an admin rejects content
	// without giving a reason.
	ErrRejectionReasonRequired = errors.New("rejection reason required")
)

// Caller identifies the authenticated requester.
type Caller struct {
	ID   string
	Role string
}

// Document is the minimal persisted view the policy needs.
type Document struct {
	Writer          string
	Status          string
	RejectionReason string
}

// Outcome is the resolved effect of an update request. Status and
// RejectionReason are the values to persist; AdminFields reports whether the
// caller may also write review-only fields (status transitions beyond the
// writer's own, rejection reasons).
type Outcome struct {
	Status          string
	RejectionReason string
	AdminFields     bool
}

// ValidStatus reports whether s is one of the four lifecycle states.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ResolveCreateWriter picks the owner of a new document: the caller, unless an
// admin explicitly authors on another writer's behalf.
func ResolveCreateWriter(caller Caller, requested string) string {
	if caller.Role == RoleAdmin && requested != "" {
		return requested
	}
	return caller.ID
}

// ResolveCreateStatus maps the requested initial status onto the two states a
// new document may start in. Only an explicit draft stays a draft.
func ResolveCreateStatus(requested string) string {
	if requested == StatusDraft {
		return StatusDraft
	}
	return StatusPending
}

// ResolveUpdate applies the role x status transition table. requestedStatus and
// requestedReason are nil when the patch omits them. On success the returned
// Outcome carries the status and rejection reason to persist.
func ResolveUpdate(caller Caller, doc Document, requestedStatus, requestedReason *string) (Outcome, error) {
	switch caller.Role {
	case RoleAdmin:
		return resolveAdminUpdate(doc, requestedStatus, requestedReason)
	case RoleWriter:
		if doc.Writer != caller.ID {
			return Outcome{}, ErrForbidden
		}
		return resolveOwnerUpdate(doc, requestedStatus)
	}
	return Outcome{}, ErrForbidden
}

func resolveAdminUpdate(doc Document, requestedStatus, requestedReason *string) (Outcome, error) {
	out := Outcome{Status: doc.Status, RejectionReason: doc.RejectionReason, AdminFields: true}
	if requestedStatus != nil {
		if !ValidStatus(*requestedStatus) {
			return Outcome{}, ErrInvalidStatus
		}
		out.Status = *requestedStatus
	}
	if requestedReason != nil {
		out.RejectionReason = *requestedReason
	} else if out.Status != StatusRejected {
		// Leaving the rejected state without an explicit reason clears the old one.
		out.RejectionReason = ""
	}
	if out.Status == StatusRejected && strings.TrimSpace(out.RejectionReason) == "" {
		return Outcome{}, ErrRejectionReasonRequired
	}
	return out, nil
}

func resolveOwnerUpdate(doc Document, requestedStatus *string) (Outcome, error) {
	switch doc.Status {
	case StatusDraft:
		out := Outcome{Status: StatusDraft}
		if requestedStatus != nil && *requestedStatus == StatusPending {
			out.Status = StatusPending
		}
		return out, nil
	case StatusRejected:
		// Resubmission: always back to pending, prior rejection cleared.
		return Outcome{Status: StatusPending}, nil
	default:
		return Outcome{}, ErrForbidden
	}
}

// CanDelete reports whether the caller may delete the document. Admins always
// may; the owning writer may unless the document is approved.
func CanDelete(caller Caller, doc Document) error {
	if caller.Role == RoleAdmin {
		return nil
	}
	if caller.Role == RoleWriter && doc.Writer == caller.ID && doc.Status != StatusApproved {
		return nil
	}
	return ErrForbidden
}

// ListScope describes which documents a list request may return.
type ListScope struct {
	Writer       string // restrict to this writer's documents when non-empty
	ExcludeDraft bool   // hide drafts from the result
}

// ResolveListScope maps the caller and an optional status filter onto the read
// rule: writers see only their own content, admins see everything except drafts
// unless the filter explicitly asks for them.
func ResolveListScope(caller Caller, statusFilter string) ListScope {
	if caller.Role == RoleAdmin {
		return ListScope{ExcludeDraft: statusFilter != StatusDraft}
	}
	return ListScope{Writer: caller.ID}
}
