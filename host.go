// Package sidecar synchronizes a running simulation with an external
// inspector process over an unreliable datagram link. Each tick it publishes
// a snapshot of registered record types and applies any edits the inspector
// sent back. It is a debug sidecar, not an RPC layer: dropped frames are
// expected and tolerated.
package sidecar

// Host is the capability surface the simulation exposes to the sidecar. All
// methods are invoked from the tick goroutine only; the sidecar never holds
// references to host state across ticks.
type Host interface {
	// LiveEntities returns every currently live entity with its generation.
	// Order is unspecified.
	LiveEntities() []EntityRef

	// Generation resolves an entity slot to the generation currently
	// occupying it. The second result is false when the slot is not live.
	Generation(id uint32) (int32, bool)

	// CreateEntities allocates amount new empty entities. The inspector
	// learns about them through the next full-sync envelope, so the
	// resulting identifiers are not reported back.
	CreateEntities(amount int)

	// DestroyEntity deletes the entity in the given slot. Destroying a slot
	// that is not live is a no-op and returns false.
	DestroyEntity(id uint32) bool
}

// ReadStore provides a point-in-time view of every live record of one
// component type, keyed by owning entity id. The sidecar serializes the
// returned values immediately and never retains them.
type ReadStore[T any] interface {
	Collect() map[uint32]T
}

// WriteStore applies an inspector edit to one entity's record. Set returns
// false when the entity carries no record of this type; the edit is then
// skipped silently, since the record may have been removed in the interim.
type WriteStore[T any] interface {
	Set(id uint32, value T) bool
}

// ComponentStore combines read and write access to a component type.
type ComponentStore[T any] interface {
	ReadStore[T]
	WriteStore[T]
}

// ResourceView reads a singleton record. Load returns false while the
// resource does not exist in the simulation.
type ResourceView[T any] interface {
	Load() (T, bool)
}

// ResourceSink overwrites a singleton record. Store returns false when the
// resource does not currently exist.
type ResourceSink[T any] interface {
	Store(value T) bool
}

// ResourceStore combines read and write access to a singleton record.
type ResourceStore[T any] interface {
	ResourceView[T]
	ResourceSink[T]
}
