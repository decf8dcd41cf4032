package sba

import "context"

// ListOpts mirrors the station listing filters.
type ListOpts struct {
	Writer       string
	Status       string
	ExcludeDraft bool
	Limit        int
	Offset       int
}

// Store persists submissions. Missing ids surface as wrapped policy.ErrNotFound.
type Store interface {
	Put(ctx context.Context, sub Submission) error
	Get(ctx context.Context, id string) (Submission, error)
	Update(ctx context.Context, sub Submission) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOpts) ([]Submission, error)
}
