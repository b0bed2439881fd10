package simstore

import (
	"sync"

	"peek-and-poke/sidecar/internal/wire"
)

type record[T any] struct {
	generation int32
	value      T
}

// Table holds the records of one component type, keyed by entity slot. Each
// record remembers the generation it was attached under; records belonging
// to a destroyed-and-reused slot are treated as absent and purged lazily.
type Table[T any] struct {
	store *Store

	mu      sync.Mutex
	records map[uint32]record[T]
}

// NewTable constructs an empty record table bound to a store.
func NewTable[T any](store *Store) *Table[T] {
	return &Table[T]{store: store, records: make(map[uint32]record[T])}
}

// Attach sets the record for a live entity. Returns false when the entity is
// not live.
func (t *Table[T]) Attach(ref wire.EntityRef, value T) bool {
	gen, live := t.store.Generation(ref.ID)
	if !live || gen != ref.Generation {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[ref.ID] = record[T]{generation: gen, value: value}
	return true
}

// Get reads the record attached to a live entity.
func (t *Table[T]) Get(id uint32) (T, bool) {
	var zero T
	gen, live := t.store.Generation(id)
	if !live {
		return zero, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[id]
	if !ok || rec.generation != gen {
		return zero, false
	}
	return rec.value, true
}

// Collect snapshots every record owned by a live entity, purging records
// stranded by slot reuse along the way.
func (t *Table[T]) Collect() map[uint32]T {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[uint32]T, len(t.records))
	for id, rec := range t.records {
		gen, live := t.store.Generation(id)
		if !live || gen != rec.generation {
			delete(t.records, id)
			continue
		}
		out[id] = rec.value
	}
	return out
}

// Set overwrites the record of a live entity that already carries one.
// Returns false when there is nothing to overwrite.
func (t *Table[T]) Set(id uint32, value T) bool {
	gen, live := t.store.Generation(id)
	if !live {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[id]
	if !ok || rec.generation != gen {
		return false
	}
	rec.value = value
	t.records[id] = rec
	return true
}

// Box holds one singleton record with an explicit present flag, mirroring a
// resource that may not have been inserted into the simulation yet.
type Box[T any] struct {
	mu      sync.Mutex
	value   T
	present bool
}

// NewBox constructs an empty box.
func NewBox[T any]() *Box[T] {
	return &Box[T]{}
}

// Put inserts or replaces the value, marking it present.
func (b *Box[T]) Put(value T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value = value
	b.present = true
}

// Clear removes the value.
func (b *Box[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	var zero T
	b.value = zero
	b.present = false
}

// Load reads the value; ok is false while the box is empty.
func (b *Box[T]) Load() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value, b.present
}

// Store overwrites an existing value. An empty box rejects the write: the
// simulation has not created the resource, so there is nothing to edit.
func (b *Box[T]) Store(value T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.present {
		return false
	}
	b.value = value
	return true
}
