package osce

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/meduaid/qb-portal/internal/policy"
)

type memoryStore struct {
	mu       sync.RWMutex
	stations map[string]Station
}

// NewInMemoryStore returns a Store backed by a process-local map. Used by tests
// and by the serve command when no database is configured.
func NewInMemoryStore() Store {
	return &memoryStore{stations: map[string]Station{}}
}

func (m *memoryStore) Put(_ context.Context, st Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations[st.ID] = st
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.stations[id]
	if !ok {
		return Station{}, fmt.Errorf("station %s: %w", id, policy.ErrNotFound)
	}
	return st, nil
}

func (m *memoryStore) Update(_ context.Context, st Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stations[st.ID]; !ok {
		return fmt.Errorf("station %s: %w", st.ID, policy.ErrNotFound)
	}
	m.stations[st.ID] = st
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stations[id]; !ok {
		return fmt.Errorf("station %s: %w", id, policy.ErrNotFound)
	}
	delete(m.stations, id)
	return nil
}

func (m *memoryStore) List(_ context.Context, opts ListOpts) ([]Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Station, 0, len(m.stations))
	for _, st := range m.stations {
		if opts.Writer != "" && st.Writer != opts.Writer {
			continue
		}
		if opts.Status != "" && st.Status != opts.Status {
			continue
		}
		if opts.ExcludeDraft && st.Status == policy.StatusDraft {
			continue
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return paginate(out, opts.Limit, opts.Offset), nil
}

func paginate(in []Station, limit, offset int) []Station {
	if offset >= len(in) {
		return []Station{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
