package sidecar

import (
	"time"

	"peek-and-poke/sidecar/internal/queue"
	"peek-and-poke/sidecar/internal/telemetry"
)

// entityCommand is a batched entity lifecycle request from the inspector.
type entityCommand struct {
	create  int
	destroy []uint32
}

// lifecycleStage applies entity create/destroy requests once per tick.
// Created entities remain empty until the host or the inspector attaches
// records; destroy requests for slots that are no longer live are no-ops.
type lifecycleStage struct {
	host   Host
	in     *queue.Queue[entityCommand]
	logger telemetry.Logger
}

func (s *lifecycleStage) name() string { return "entity-lifecycle" }

func (s *lifecycleStage) run(now time.Time) {
	for _, cmd := range s.in.TryDrain() {
		if cmd.create > 0 {
			s.host.CreateEntities(cmd.create)
		}
		for _, id := range cmd.destroy {
			s.host.DestroyEntity(id)
		}
	}
}
