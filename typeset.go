package sidecar

import (
	"encoding/json"
	"fmt"

	"peek-and-poke/sidecar/internal/queue"
	"peek-and-poke/sidecar/internal/telemetry"
)

type recordKind int

const (
	kindComponent recordKind = iota
	kindResource
)

func (k recordKind) String() string {
	if k == kindResource {
		return "resource"
	}
	return "component"
}

// typeEntry is one registered record type. The concrete type is captured by
// the factory closures at registration time, so materialization and dispatch
// never need runtime type identifiers.
type typeEntry struct {
	name string
	kind recordKind

	// makeReader is nil unless the entry is readable. makeWriter is nil
	// unless the entry is writable; it registers the entry's inbound
	// channel with the build context as a side effect.
	makeReader func(b *buildContext) stage
	makeWriter func(b *buildContext) stage
}

// buildContext carries the shared wiring handed to the factory closures
// while a TypeSet is materialized.
type buildContext struct {
	host    Host
	conn    *Connection
	logger  telemetry.Logger
	metrics telemetry.Metrics

	componentIn map[string]*queue.Queue[componentRequest]
	resourceIn  map[string]*queue.Queue[json.RawMessage]
}

// TypeSet is an ordered, append-only collection of registered record types.
// Values are immutable: every registration returns a new set, so sets can be
// composed fluently and shared freely. Declaration order determines the
// order pipeline stages are wired.
type TypeSet struct {
	entries []typeEntry
}

// EmptySet returns a set with no registrations.
func EmptySet() TypeSet {
	return TypeSet{}
}

func (s TypeSet) with(entry typeEntry) TypeSet {
	entries := make([]typeEntry, 0, len(s.entries)+1)
	entries = append(entries, s.entries...)
	entries = append(entries, entry)
	return TypeSet{entries: entries}
}

// Join concatenates two sets, preserving left-to-right declaration order.
func (s TypeSet) Join(other TypeSet) TypeSet {
	entries := make([]typeEntry, 0, len(s.entries)+len(other.entries))
	entries = append(entries, s.entries...)
	entries = append(entries, other.entries...)
	return TypeSet{entries: entries}
}

// Len reports the number of registered entries.
func (s TypeSet) Len() int {
	return len(s.entries)
}

// Names lists the registered names in declaration order.
func (s TypeSet) Names() []string {
	names := make([]string, 0, len(s.entries))
	for _, entry := range s.entries {
		names = append(names, entry.name)
	}
	return names
}

// validate enforces name uniqueness at build time rather than dispatch
// time: readable names must be unique per kind, and so must writable names.
func (s TypeSet) validate() error {
	type key struct {
		kind recordKind
		name string
	}
	readers := make(map[key]bool)
	writers := make(map[key]bool)
	for _, entry := range s.entries {
		k := key{kind: entry.kind, name: entry.name}
		if entry.name == "" {
			return fmt.Errorf("registered %s has an empty name", entry.kind)
		}
		if entry.makeReader != nil {
			if readers[k] {
				return fmt.Errorf("%s %q is registered for reading twice", entry.kind, entry.name)
			}
			readers[k] = true
		}
		if entry.makeWriter != nil {
			if writers[k] {
				return fmt.Errorf("%s %q is registered for writing twice", entry.kind, entry.name)
			}
			writers[k] = true
		}
	}
	return nil
}

// materialize folds over the set in declaration order, producing one read
// stage per readable entry and one write stage (plus inbound channel) per
// writable entry.
func (s TypeSet) materialize(b *buildContext) (readers, writers []stage, err error) {
	if err := s.validate(); err != nil {
		return nil, nil, err
	}
	for _, entry := range s.entries {
		if entry.makeReader != nil {
			readers = append(readers, entry.makeReader(b))
		}
		if entry.makeWriter != nil {
			writers = append(writers, entry.makeWriter(b))
		}
	}
	return readers, writers, nil
}

// ReadComponent registers a component type for publication to the inspector.
func ReadComponent[T any](set TypeSet, name string, store ReadStore[T]) TypeSet {
	return set.with(typeEntry{
		name: name,
		kind: kindComponent,
		makeReader: func(b *buildContext) stage {
			return &readComponentStage[T]{typeName: name, store: store, conn: b.conn, logger: b.logger}
		},
	})
}

// WriteComponent registers a component type for edits from the inspector.
func WriteComponent[T any](set TypeSet, name string, store WriteStore[T]) TypeSet {
	return set.with(typeEntry{
		name:       name,
		kind:       kindComponent,
		makeWriter: componentWriterFactory[T](name, store),
	})
}

// SyncComponent registers a component type for both publication and edits.
func SyncComponent[T any](set TypeSet, name string, store ComponentStore[T]) TypeSet {
	return set.with(typeEntry{
		name: name,
		kind: kindComponent,
		makeReader: func(b *buildContext) stage {
			return &readComponentStage[T]{typeName: name, store: store, conn: b.conn, logger: b.logger}
		},
		makeWriter: componentWriterFactory[T](name, store),
	})
}

// ReadResource registers a singleton record for publication to the inspector.
func ReadResource[T any](set TypeSet, name string, view ResourceView[T]) TypeSet {
	return set.with(typeEntry{
		name: name,
		kind: kindResource,
		makeReader: func(b *buildContext) stage {
			return &readResourceStage[T]{typeName: name, view: view, conn: b.conn, logger: b.logger}
		},
	})
}

// WriteResource registers a singleton record for edits from the inspector.
func WriteResource[T any](set TypeSet, name string, sink ResourceSink[T]) TypeSet {
	return set.with(typeEntry{
		name:       name,
		kind:       kindResource,
		makeWriter: resourceWriterFactory[T](name, sink),
	})
}

// SyncResource registers a singleton record for both publication and edits.
func SyncResource[T any](set TypeSet, name string, store ResourceStore[T]) TypeSet {
	return set.with(typeEntry{
		name: name,
		kind: kindResource,
		makeReader: func(b *buildContext) stage {
			return &readResourceStage[T]{typeName: name, view: store, conn: b.conn, logger: b.logger}
		},
		makeWriter: resourceWriterFactory[T](name, store),
	})
}

func componentWriterFactory[T any](name string, store WriteStore[T]) func(b *buildContext) stage {
	return func(b *buildContext) stage {
		in := queue.New[componentRequest]()
		b.componentIn[name] = in
		return &writeComponentStage[T]{typeName: name, store: store, host: b.host, in: in, logger: b.logger}
	}
}

func resourceWriterFactory[T any](name string, sink ResourceSink[T]) func(b *buildContext) stage {
	return func(b *buildContext) stage {
		in := queue.New[json.RawMessage]()
		b.resourceIn[name] = in
		return &writeResourceStage[T]{typeName: name, sink: sink, in: in, logger: b.logger}
	}
}
