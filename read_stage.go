package sidecar

import (
	"encoding/json"
	"time"

	"peek-and-poke/sidecar/internal/telemetry"
	"peek-and-poke/sidecar/internal/wire"
)

// stage is one unit of per-tick work. Stages never block and never retain
// control across ticks.
type stage interface {
	name() string
	run(now time.Time)
}

// serializedComponent is the outbound shape for one component type's
// snapshot: record JSON keyed by owning entity id.
type serializedComponent[T any] struct {
	Name string       `json:"name"`
	Data map[uint32]T `json:"data"`
}

// serializedResource is the outbound shape for one singleton record.
type serializedResource[T any] struct {
	Name string `json:"name"`
	Data T      `json:"data"`
}

// readComponentStage snapshots every live record of one component type each
// tick and queues the serialized blob for the coordinator. A serialization
// failure drops only this type's contribution for the tick.
type readComponentStage[T any] struct {
	typeName string
	store    ReadStore[T]
	conn     *Connection
	logger   telemetry.Logger
}

func (s *readComponentStage[T]) name() string { return s.typeName }

func (s *readComponentStage[T]) run(now time.Time) {
	records := s.store.Collect()
	if records == nil {
		records = map[uint32]T{}
	}
	raw, err := json.Marshal(serializedComponent[T]{Name: s.typeName, Data: records})
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("failed to serialize component %q: %v", s.typeName, err)
		}
		return
	}
	s.conn.sendData(wire.Blob{Kind: wire.BlobComponent, JSON: raw})
}

// readResourceStage snapshots one singleton record each tick. A resource
// that does not exist is warned about once per process lifetime, then
// skipped quietly.
type readResourceStage[T any] struct {
	typeName string
	view     ResourceView[T]
	conn     *Connection
	logger   telemetry.Logger

	missingWarned bool
}

func (s *readResourceStage[T]) name() string { return s.typeName }

func (s *readResourceStage[T]) run(now time.Time) {
	value, ok := s.view.Load()
	if !ok {
		if !s.missingWarned {
			s.missingWarned = true
			if s.logger != nil {
				s.logger.Printf("resource %q does not exist in the simulation and will not be synced", s.typeName)
			}
		}
		return
	}
	raw, err := json.Marshal(serializedResource[T]{Name: s.typeName, Data: value})
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("failed to serialize resource %q: %v", s.typeName, err)
		}
		return
	}
	s.conn.sendData(wire.Blob{Kind: wire.BlobResource, JSON: raw})
}
