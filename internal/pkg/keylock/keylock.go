// Package keylock implements an in-process lock table keyed by aggregate id.
//
// Locks on different keys never block each other. Entries are reference counted
// and removed once no goroutine holds or waits for them, so the table does not
// grow with the number of aggregates ever touched.
package keylock

import (
	"context"
	"slices"
	"sync"
)

type entry struct {
	sem  chan struct{}
	refs int
}

// Table is a keyed mutual-exclusion table. The zero value is not usable; use New.
type Table struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Table {
	return &Table{entries: make(map[string]*entry)}
}

// Lock acquires every key, waiting until all are free or ctx is done. Keys are
// acquired in sorted order so that two callers locking overlapping sets cannot
// deadlock. Duplicate keys are acquired once. The returned function releases all
// keys and must be called exactly once.
func (t *Table) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	acquired := make([]string, 0, len(keys))

	for _, key := range keys {
		if err := t.acquire(ctx, key); err != nil {
			t.releaseAll(acquired)
			return nil, err
		}
		acquired = append(acquired, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() { t.releaseAll(acquired) })
	}, nil
}

// Len reports the number of keys currently held or awaited.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *Table) acquire(ctx context.Context, key string) error {
	t.mu.Lock()
	e, ok := t.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		t.entries[key] = e
	}
	e.refs++
	t.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		t.unref(key, e)
		return ctx.Err()
	}
}

func (t *Table) releaseAll(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		t.mu.Lock()
		e := t.entries[keys[i]]
		t.mu.Unlock()

		<-e.sem
		t.unref(keys[i], e)
	}
}

func (t *Table) unref(key string, e *entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(t.entries, key)
	}
}

func normalize(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}
