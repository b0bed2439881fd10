// Package app wires the demo simulation to the sidecar: a handful of moving
// entities plus a score resource, published to an inspector on loopback.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"peek-and-poke/sidecar"
	"peek-and-poke/sidecar/internal/simstore"
	"peek-and-poke/sidecar/internal/telemetry"
	"peek-and-poke/sidecar/internal/transport"
	"peek-and-poke/sidecar/logging"
	"peek-and-poke/sidecar/logging/sinks"
)

// Position is a demo per-entity record.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Velocity is a demo per-entity record.
type Velocity struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Score is a demo singleton record.
type Score struct {
	Value int `json:"value"`
}

// Config tunes the demo run.
type Config struct {
	TickRate      int
	SendInterval  time.Duration
	InspectorAddr string
	Transport     string // "udp" or "websocket"
	Logger        telemetry.Logger
}

// DefaultConfig returns the standard demo configuration.
func DefaultConfig() Config {
	return Config{
		TickRate:      60,
		SendInterval:  sidecar.DefaultSendInterval,
		InspectorAddr: sidecar.DefaultInspectorAddr,
		Transport:     "udp",
	}
}

func applyEnv(cfg *Config, logger telemetry.Logger) {
	if raw := os.Getenv("SIDECAR_SEND_INTERVAL_MS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.SendInterval = time.Duration(value) * time.Millisecond
		} else {
			logger.Printf("invalid SIDECAR_SEND_INTERVAL_MS=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("SIDECAR_INSPECTOR_ADDR"); raw != "" {
		cfg.InspectorAddr = raw
	}
	if raw := os.Getenv("SIDECAR_TRANSPORT"); raw != "" {
		cfg.Transport = raw
	}
	if raw := os.Getenv("SIDECAR_TICK_RATE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.TickRate = value
		} else {
			logger.Printf("invalid SIDECAR_TICK_RATE=%q: %v", raw, err)
		}
	}
}

// websocketURL accepts either a full websocket URL or a bare host:port,
// which is what the shared inspector-address setting carries by default.
func websocketURL(addr string) string {
	if strings.Contains(addr, "://") {
		return addr
	}
	return "ws://" + addr
}

// logMetrics writes the run's counters through the router as a shutdown
// report, in stable order.
func logMetrics(router *logging.Router, metrics *telemetry.MemoryMetrics) {
	snapshot := metrics.Snapshot()
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		router.Infof("metrics", "%s=%d", key, snapshot[key])
	}
}

// Run drives the demo simulation until the context is cancelled.
func Run(ctx context.Context) error {
	return RunWithConfig(ctx, DefaultConfig())
}

// RunWithConfig drives the demo simulation with explicit settings.
func RunWithConfig(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	applyEnv(&cfg, logger)

	store := simstore.NewStore()
	positions := simstore.NewTable[Position](store)
	velocities := simstore.NewTable[Velocity](store)
	scores := simstore.NewBox[Score]()
	scores.Put(Score{})

	for i := 0; i < 4; i++ {
		ref := store.Create()
		positions.Attach(ref, Position{X: float64(i) * 10})
		velocities.Attach(ref, Velocity{DX: 1, DY: float64(i)})
	}

	set := sidecar.SyncComponent[Position](sidecar.EmptySet(), "Position", positions)
	set = sidecar.SyncComponent[Velocity](set, "Velocity", velocities)
	set = sidecar.SyncResource[Score](set, "Score", scores)

	metrics := telemetry.NewMemoryMetrics()
	sideCfg := sidecar.Config{
		SendInterval:  cfg.SendInterval,
		InspectorAddr: cfg.InspectorAddr,
		Logger:        logger,
		Metrics:       metrics,
	}
	if cfg.Transport == "websocket" {
		ws, err := transport.DialWebSocket(websocketURL(cfg.InspectorAddr), logger, metrics)
		if err != nil {
			return fmt.Errorf("connect inspector websocket: %w", err)
		}
		sideCfg.Transport = ws
	}

	side, err := sidecar.New(store, set, sideCfg)
	if err != nil {
		return fmt.Errorf("build sidecar: %w", err)
	}
	defer side.Close()

	router := logging.NewRouter(logging.LevelInfo,
		sinks.NewConsole(os.Stdout),
		sinks.NewEditor(side.Connection()),
	)
	defer router.Close()

	session := uuid.NewString()
	router.Infof("demo", "session %s publishing to %s over %s", session, cfg.InspectorAddr, cfg.Transport)
	side.Connection().SendMessage("session", map[string]string{"id": session})

	step := 1.0 / float64(cfg.TickRate)
	ticker := time.NewTicker(time.Second / time.Duration(cfg.TickRate))
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			router.Infof("demo", "session %s shutting down", session)
			logMetrics(router, metrics)
			return nil
		case now := <-ticker.C:
			tick++
			for id, vel := range velocities.Collect() {
				if pos, ok := positions.Get(id); ok {
					pos.X += vel.DX * step
					pos.Y += vel.DY * step
					positions.Set(id, pos)
				}
			}
			if tick%cfg.TickRate == 0 {
				if current, ok := scores.Load(); ok {
					scores.Store(Score{Value: current.Value + 1})
					router.Infof("score", "score is now %d", current.Value+1)
				}
			}
			if err := side.Tick(now); err != nil {
				return fmt.Errorf("sidecar tick: %w", err)
			}
		}
	}
}
