// Package audit keeps an append-only log of review decisions so admins can
// trace who approved, rejected or resubmitted a piece of content and when.
package audit

import (
	"context"
	"database/sql"
	"time"
)

const (
	ActionCreated     = "created"
	ActionApproved    = "approved"
	ActionRejected    = "rejected"
	ActionResubmitted = "resubmitted"
	ActionDeleted     = "deleted"
)

// Entry is one review-log record. DataJSON carries optional detail such as the
// rejection reason.
type Entry struct {
	ContentType string // "station" | "submission"
	ContentID   string
	Actor       string
	Action      string
	DataJSON    string
}

// Recorder appends review-log entries. Recording failures are logged by the
// caller but never abort the mutation they describe.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Discard is a Recorder that drops entries; used by tests and the in-memory
// serve mode.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(context.Context, Entry) error { return nil }

// SQLRecorder appends entries to the review_log table.
type SQLRecorder struct{ db *sql.DB }

func NewSQLRecorder(db *sql.DB) *SQLRecorder { return &SQLRecorder{db: db} }

func (r *SQLRecorder) Record(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO review_log (content_type, content_id, actor, action, data, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ContentType, e.ContentID, e.Actor, e.Action, e.DataJSON, time.Now().Unix())
	return err
}
