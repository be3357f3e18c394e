package rows

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/gridview/pkg/errors"
)

// MemorySource is an in-memory Hierarchical, writable row source. Row IDs
// are random UUIDs. Notifications are delivered synchronously on the
// mutating goroutine, after the source lock is released.
type MemorySource struct {
	mu       sync.Mutex
	rows     []Row
	children map[string][]Row
	byID     map[string]*Row
	subs     map[int]func(Change)
	nextSub  int
}

// NewMemorySource creates a source holding one top-level row per values map.
func NewMemorySource(values ...map[string]any) *MemorySource {
	s := &MemorySource{
		children: make(map[string][]Row),
		byID:     make(map[string]*Row),
		subs:     make(map[int]func(Change)),
	}
	for _, v := range values {
		s.rows = append(s.rows, Row{ID: uuid.NewString(), Values: v})
	}
	s.reindex()
	return s
}

// reindex rebuilds the ID index. Callers hold mu.
func (s *MemorySource) reindex() {
	clear(s.byID)
	for i := range s.rows {
		s.byID[s.rows[i].ID] = &s.rows[i]
	}
	for _, kids := range s.children {
		for i := range kids {
			s.byID[kids[i].ID] = &kids[i]
		}
	}
}

// Len implements Source.
func (s *MemorySource) Len(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows), nil
}

// Row implements Source.
func (s *MemorySource) Row(_ context.Context, i int) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.rows) {
		return Row{}, errors.New(errors.ErrCodeNotFound, "row %d out of range [0,%d)", i, len(s.rows))
	}
	return cloneRow(s.rows[i]), nil
}

// Children implements Hierarchical.
func (s *MemorySource) Children(_ context.Context, id string) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "row %s not found", id)
	}
	kids := s.children[id]
	out := make([]Row, len(kids))
	for i, r := range kids {
		out[i] = cloneRow(r)
	}
	return out, nil
}

// Update implements Writer.
func (s *MemorySource) Update(_ context.Context, id string, values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "row %s not found", id)
	}
	r.Values = maps.Clone(values)
	return nil
}

// Subscribe implements Source.
func (s *MemorySource) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Append adds a top-level row at the end and returns it.
func (s *MemorySource) Append(values map[string]any) Row {
	s.mu.Lock()
	n := len(s.rows)
	s.mu.Unlock()
	return s.Insert(n, values)
}

// Insert adds a top-level row at index i (clamped to the valid range).
func (s *MemorySource) Insert(i int, values map[string]any) Row {
	s.mu.Lock()
	i = max(0, min(i, len(s.rows)))
	r := Row{ID: uuid.NewString(), Values: values}
	s.rows = slices.Insert(s.rows, i, r)
	s.reindex()
	s.mu.Unlock()
	s.notify(Change{Kind: Inserted, Index: i})
	return r
}

// Remove deletes the top-level row at index i together with its
// descendants.
func (s *MemorySource) Remove(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.rows) {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeNotFound, "row %d out of range [0,%d)", i, len(s.rows))
	}
	s.dropChildren(s.rows[i].ID)
	s.rows = slices.Delete(s.rows, i, i+1)
	s.reindex()
	s.mu.Unlock()
	s.notify(Change{Kind: Removed, Index: i})
	return nil
}

func (s *MemorySource) dropChildren(id string) {
	for _, c := range s.children[id] {
		s.dropChildren(c.ID)
	}
	delete(s.children, id)
}

// AddChild appends a child row under parent and returns it.
func (s *MemorySource) AddChild(parent string, values map[string]any) (Row, error) {
	s.mu.Lock()
	if _, ok := s.byID[parent]; !ok {
		s.mu.Unlock()
		return Row{}, errors.New(errors.ErrCodeNotFound, "row %s not found", parent)
	}
	r := Row{ID: uuid.NewString(), Values: values}
	s.children[parent] = append(s.children[parent], r)
	index := len(s.children[parent]) - 1
	s.reindex()
	s.mu.Unlock()
	s.notify(Change{Kind: Inserted, Index: index, Parent: parent})
	return r, nil
}

// Reset replaces every row.
func (s *MemorySource) Reset(values ...map[string]any) {
	s.mu.Lock()
	s.rows = s.rows[:0]
	clear(s.children)
	for _, v := range values {
		s.rows = append(s.rows, Row{ID: uuid.NewString(), Values: v})
	}
	s.reindex()
	s.mu.Unlock()
	s.notify(Change{Kind: Reset})
}

func (s *MemorySource) notify(ch Change) {
	s.mu.Lock()
	ids := slices.Sorted(maps.Keys(s.subs))
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ch)
	}
}

func cloneRow(r Row) Row {
	return Row{ID: r.ID, Values: maps.Clone(r.Values)}
}
