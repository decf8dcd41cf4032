package sba

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/meduaid/qb-portal/internal/policy"
)

type memoryStore struct {
	mu   sync.RWMutex
	subs map[string]Submission
}

// NewInMemoryStore returns a Store backed by a process-local map.
func NewInMemoryStore() Store {
	return &memoryStore{subs: map[string]Submission{}}
}

func (m *memoryStore) Put(_ context.Context, sub Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[sub.ID] = sub
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.subs[id]
	if !ok {
		return Submission{}, fmt.Errorf("submission %s: %w", id, policy.ErrNotFound)
	}
	return sub, nil
}

func (m *memoryStore) Update(_ context.Context, sub Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[sub.ID]; !ok {
		return fmt.Errorf("submission %s: %w", sub.ID, policy.ErrNotFound)
	}
	m.subs[sub.ID] = sub
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[id]; !ok {
		return fmt.Errorf("submission %s: %w", id, policy.ErrNotFound)
	}
	delete(m.subs, id)
	return nil
}

func (m *memoryStore) List(_ context.Context, opts ListOpts) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Submission, 0, len(m.subs))
	for _, sub := range m.subs {
		if opts.Writer != "" && sub.Writer != opts.Writer {
			continue
		}
		if opts.Status != "" && sub.Status != opts.Status {
			continue
		}
		if opts.ExcludeDraft && sub.Status == policy.StatusDraft {
			continue
		}
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if opts.Offset >= len(out) {
		return []Submission{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}
