// Package simstore is a small in-memory entity/record store with
// generational slots. It backs the demo simulation and the sidecar's tests;
// real hosts are expected to adapt their own storage to the same capability
// surface.
package simstore

import (
	"sync"

	"peek-and-poke/sidecar/internal/wire"
)

type slot struct {
	generation int32
	live       bool
}

// Store allocates entity slots. A destroyed slot is reused with a bumped
// generation, so stale references to the old occupant can be detected.
type Store struct {
	mu    sync.Mutex
	slots []slot
	free  []uint32
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{}
}

// Create allocates one entity and returns its reference.
func (s *Store) Create() wire.EntityRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked()
}

func (s *Store) createLocked() wire.EntityRef {
	if n := len(s.free); n > 0 {
		id := s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[id].generation++
		s.slots[id].live = true
		return wire.EntityRef{ID: id, Generation: s.slots[id].generation}
	}
	s.slots = append(s.slots, slot{generation: 1, live: true})
	id := uint32(len(s.slots) - 1)
	return wire.EntityRef{ID: id, Generation: 1}
}

// CreateEntities allocates amount empty entities, discarding the refs.
func (s *Store) CreateEntities(amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < amount; i++ {
		s.createLocked()
	}
}

// DestroyEntity deletes the entity in the given slot. Returns false when the
// slot is not live.
func (s *Store) DestroyEntity(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(id) >= len(s.slots) || !s.slots[id].live {
		return false
	}
	s.slots[id].live = false
	s.free = append(s.free, id)
	return true
}

// LiveEntities lists every live entity with its generation.
func (s *Store) LiveEntities() []wire.EntityRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	refs := make([]wire.EntityRef, 0, len(s.slots))
	for id, sl := range s.slots {
		if sl.live {
			refs = append(refs, wire.EntityRef{ID: uint32(id), Generation: sl.generation})
		}
	}
	return refs
}

// Generation resolves a slot to the generation currently occupying it.
func (s *Store) Generation(id uint32) (int32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(id) >= len(s.slots) || !s.slots[id].live {
		return 0, false
	}
	return s.slots[id].generation, true
}

// LiveCount reports the number of live entities.
func (s *Store) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, sl := range s.slots {
		if sl.live {
			count++
		}
	}
	return count
}
