package osce

import "context"

// ListOpts narrows a station listing. Writer and Status filter exactly;
// ExcludeDraft hides drafts from admin listings that did not ask for them.
type ListOpts struct {
	Writer       string
	Status       string
	ExcludeDraft bool
	Limit        int
	Offset       int
}

// Store persists stations. Implementations return policy.ErrNotFound (wrapped)
// for missing ids so services and handlers can errors.Is on it.
type Store interface {
	Put(ctx context.Context, st Station) error
	Get(ctx context.Context, id string) (Station, error)
	Update(ctx context.Context, st Station) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOpts) ([]Station, error)
}
