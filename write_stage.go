package sidecar

import (
	"encoding/json"
	"time"

	"peek-and-poke/sidecar/internal/queue"
	"peek-and-poke/sidecar/internal/telemetry"
	"peek-and-poke/sidecar/internal/wire"
)

// componentRequest is one routed inspector edit awaiting application to a
// per-entity record.
type componentRequest struct {
	Entity wire.EntityRef
	Data   json.RawMessage
}

// writeComponentStage drains its inbound channel once per tick and applies
// each edit to the matching live record. Failures are per-request: a bad
// payload is logged and skipped, and a stale or missing entity is skipped
// silently since host churn racing inspector latency is expected.
type writeComponentStage[T any] struct {
	typeName string
	store    WriteStore[T]
	host     Host
	in       *queue.Queue[componentRequest]
	logger   telemetry.Logger
}

func (s *writeComponentStage[T]) name() string { return s.typeName }

func (s *writeComponentStage[T]) run(now time.Time) {
	for _, req := range s.in.TryDrain() {
		var value T
		if err := json.Unmarshal(req.Data, &value); err != nil {
			if s.logger != nil {
				s.logger.Printf("failed to deserialize %q update for entity %d: %v", s.typeName, req.Entity.ID, err)
			}
			continue
		}
		// The inspector's reference may predate a destroy/recreate of this
		// slot; a generation mismatch means the edit targets an entity that
		// no longer exists.
		gen, live := s.host.Generation(req.Entity.ID)
		if !live || gen != req.Entity.Generation {
			continue
		}
		s.store.Set(req.Entity.ID, value)
	}
}

// writeResourceStage drains its inbound channel once per tick and overwrites
// the singleton record with each decoded payload in arrival order.
type writeResourceStage[T any] struct {
	typeName string
	sink     ResourceSink[T]
	in       *queue.Queue[json.RawMessage]
	logger   telemetry.Logger
}

func (s *writeResourceStage[T]) name() string { return s.typeName }

func (s *writeResourceStage[T]) run(now time.Time) {
	for _, raw := range s.in.TryDrain() {
		var value T
		if err := json.Unmarshal(raw, &value); err != nil {
			if s.logger != nil {
				s.logger.Printf("failed to deserialize %q update: %v", s.typeName, err)
			}
			continue
		}
		s.sink.Store(value)
	}
}
