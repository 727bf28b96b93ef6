package repository

import (
	"sync"
)

// table is a mutex-guarded map that hands out copies and remembers insertion order
type table[T any] struct {
	mu    sync.RWMutex
	rows  map[string]*T
	order []string
	clone func(*T) *T
}

func newTable[T any](clone func(*T) *T) *table[T] {
	return &table[T]{rows: make(map[string]*T), clone: clone}
}

// insertLocked stores a copy; callers hold mu
func (t *table[T]) insertLocked(id string, row *T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = t.clone(row)
}

func (t *table[T]) get(id string) (*T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		return nil, false
	}
	return t.clone(row), true
}

func (t *table[T]) list(match func(*T) bool) []*T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*T, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if match == nil || match(row) {
			out = append(out, t.clone(row))
		}
	}
	return out
}

// update runs fn on a copy and swaps it in only when fn succeeds
func (t *table[T]) update(id string, notFound error, fn func(*T) error) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.updateLocked(id, notFound, fn)
}

func (t *table[T]) updateLocked(id string, notFound error, fn func(*T) error) (*T, error) {
	row, ok := t.rows[id]
	if !ok {
		return nil, notFound
	}
	draft := t.clone(row)
	if err := fn(draft); err != nil {
		return nil, err
	}
	t.rows[id] = draft
	return t.clone(draft), nil
}

func (t *table[T]) delete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}
