// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package tick runs the server's single logical game loop: a fixed,
// ordered sequence of stages that advance status effects, combat,
// casting, decay/death, NPC maintenance, and corpse cleanup once per
// tick, then broadcasts a game_tick event once every stage has settled.
package tick

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mythosmud/mythosmud/internal/domain"
	"github.com/mythosmud/mythosmud/internal/event"
)

// maintenanceCadence is how often, in ticks, the NPC maintenance and corpse
// cleanup stages run: every 60th tick, starting at tick 0 (roughly once a
// minute at the default 1s tick rate), per the
// original server's process_npc_maintenance/cleanup_decayed_corpses cadence.
const maintenanceCadence = 60

// StatusEffectProcessor advances damage/heal-over-time effects for online
// players, persisting any that changed.
type StatusEffectProcessor interface {
	ProcessStatusEffects(ctx context.Context, tick domain.Tick, online []domain.PlayerId) error
}

// CombatProcessor advances any active combats by one tick.
type CombatProcessor interface {
	ProcessCombatTick(ctx context.Context, tick domain.Tick) error
}

// CastingProcessor advances active spell castings by one tick.
type CastingProcessor interface {
	ProcessCastingProgress(ctx context.Context, tick domain.Tick) error
}

// DeathProcessor decrements DP for mortally wounded players, marks death at
// the threshold, and relocates stray dead players to limbo.
type DeathProcessor interface {
	ProcessDPDecayAndDeath(ctx context.Context, tick domain.Tick) error
}

// StatProcessor owns the passive-lucidity-flux and MP-regeneration
// arithmetic; the core only orders and invokes it (spec Open Question 3).
type StatProcessor interface {
	ApplyLucidityFlux(ctx context.Context, tick domain.Tick, online []domain.PlayerId) error
	RegenerateMP(ctx context.Context, tick domain.Tick, online []domain.PlayerId) error
}

// NPCMaintainer drains the NPC respawn queue and cleans up timed-out NPCs.
// Invoked every 60th tick.
type NPCMaintainer interface {
	PeriodicMaintenance(ctx context.Context, tick domain.Tick) error
}

// CorpseCleaner finalizes decayed corpse containers. Invoked every 60th tick.
type CorpseCleaner interface {
	CleanupDecayedCorpses(ctx context.Context, tick domain.Tick) error
}

// OnlinePlayers supplies the snapshot of currently-connected players the
// per-tick stages operate over.
type OnlinePlayers interface {
	OnlinePlayerIDs() []domain.PlayerId
}

// Config controls the scheduler's timing.
type Config struct {
	Interval time.Duration // default 1s; tests use a much shorter value
}

// DefaultConfig returns the scheduler's production timing.
func DefaultConfig() Config {
	return Config{Interval: time.Second}
}

// Scheduler runs the fixed-order tick loop described in §4.8: status
// effects, tick counter, combat, casting, DP decay/death, NPC maintenance,
// corpse cleanup, broadcast. Any collaborator left nil is skipped for that
// stage rather than treated as an error, so a caller can wire only the
// subsystems it actually has.
type Scheduler struct {
	cfg Config

	online   OnlinePlayers
	status   StatusEffectProcessor
	combat   CombatProcessor
	casting  CastingProcessor
	death    DeathProcessor
	stats    StatProcessor
	npc      NPCMaintainer
	corpses  CorpseCleaner
	bus      *event.Bus
	logger   *slog.Logger

	current atomic.Int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures an optional collaborator on the scheduler.
type Option func(*Scheduler)

// WithOnlinePlayers sets the online-player snapshot provider.
func WithOnlinePlayers(o OnlinePlayers) Option { return func(s *Scheduler) { s.online = o } }

// WithStatusEffects sets the status-effect stage collaborator.
func WithStatusEffects(p StatusEffectProcessor) Option { return func(s *Scheduler) { s.status = p } }

// WithCombat sets the combat stage collaborator.
func WithCombat(p CombatProcessor) Option { return func(s *Scheduler) { s.combat = p } }

// WithCasting sets the casting stage collaborator.
func WithCasting(p CastingProcessor) Option { return func(s *Scheduler) { s.casting = p } }

// WithDeath sets the DP decay/death stage collaborator.
func WithDeath(p DeathProcessor) Option { return func(s *Scheduler) { s.death = p } }

// WithStats sets the passive lucidity flux / MP regeneration collaborator.
func WithStats(p StatProcessor) Option { return func(s *Scheduler) { s.stats = p } }

// WithNPCMaintenance sets the 60-tick NPC maintenance collaborator.
func WithNPCMaintenance(p NPCMaintainer) Option { return func(s *Scheduler) { s.npc = p } }

// WithCorpseCleanup sets the 60-tick corpse cleanup collaborator.
func WithCorpseCleanup(p CorpseCleaner) Option { return func(s *Scheduler) { s.corpses = p } }

// NewScheduler creates a tick scheduler that broadcasts on bus.
func NewScheduler(cfg Config, bus *event.Bus, opts ...Option) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	s := &Scheduler{
		cfg:    cfg,
		bus:    bus,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentTick returns the most recently completed tick's counter, making
// the scheduler satisfy a TickProvider interface for combat/casting
// collaborators that need to read it without holding a reference to the
// scheduler's internals.
func (s *Scheduler) CurrentTick() int64 {
	return s.current.Load()
}

// Start begins the tick loop on a goroutine. Stop or cancelling ctx ends it.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop cancels the tick loop and waits for the current stage to unwind.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	var tickCount domain.Tick
	s.logger.Info("tick loop started", "interval", s.cfg.Interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("tick loop cancelled")
			return
		case <-ticker.C:
			s.runTick(ctx, tickCount)
			tickCount++
		}
	}
}

// runTick executes every stage for a single tick in the fixed order §4.8
// requires. Each stage is wrapped so a panic or error there is logged and
// does not abort the remaining stages or the loop itself.
func (s *Scheduler) runTick(ctx context.Context, tickCount domain.Tick) {
	tracer := otel.Tracer("mythosmud/tick")
	ctx, span := tracer.Start(ctx, "tick.run",
		trace.WithAttributes(attribute.Int64("tick.number", int64(tickCount))),
	)
	defer span.End()

	online := s.onlinePlayers()

	s.runStage(ctx, "status_effects", func() error {
		if s.status == nil {
			return nil
		}
		return s.status.ProcessStatusEffects(ctx, tickCount, online)
	})

	s.current.Store(int64(tickCount))

	s.runStage(ctx, "combat", func() error {
		if s.combat == nil {
			return nil
		}
		return s.combat.ProcessCombatTick(ctx, tickCount)
	})

	s.runStage(ctx, "casting", func() error {
		if s.casting == nil {
			return nil
		}
		return s.casting.ProcessCastingProgress(ctx, tickCount)
	})

	s.runStage(ctx, "dp_decay_and_death", func() error {
		if s.death == nil {
			return nil
		}
		return s.death.ProcessDPDecayAndDeath(ctx, tickCount)
	})

	s.runStage(ctx, "passive_lucidity_flux", func() error {
		if s.stats == nil {
			return nil
		}
		return s.stats.ApplyLucidityFlux(ctx, tickCount, online)
	})

	s.runStage(ctx, "mp_regeneration", func() error {
		if s.stats == nil {
			return nil
		}
		return s.stats.RegenerateMP(ctx, tickCount, online)
	})

	if tickCount%maintenanceCadence == 0 {
		s.runStage(ctx, "npc_maintenance", func() error {
			if s.npc == nil {
				return nil
			}
			return s.npc.PeriodicMaintenance(ctx, tickCount)
		})

		s.runStage(ctx, "corpse_cleanup", func() error {
			if s.corpses == nil {
				return nil
			}
			return s.corpses.CleanupDecayedCorpses(ctx, tickCount)
		})
	}

	s.broadcastTick(tickCount, len(online))
}

// runStage invokes fn, converting a panic into a logged error so one
// misbehaving stage never stops the loop, matching the original server's
// per-stage try/except around every tick phase.
func (s *Scheduler) runStage(_ context.Context, name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tick stage panicked", "stage", name, "panic", r)
		}
	}()

	if err := fn(); err != nil {
		s.logger.Error("tick stage failed", "stage", name, "error", err)
	}
}

func (s *Scheduler) onlinePlayers() []domain.PlayerId {
	if s.online == nil {
		return nil
	}
	return s.online.OnlinePlayerIDs()
}

// TickPayload is the JSON payload for the game_tick event broadcast at the
// end of every tick, once every stage's state changes have been applied.
type TickPayload struct {
	TickNumber    int64     `json:"tick_number"`
	Timestamp     time.Time `json:"timestamp"`
	ActivePlayers int       `json:"active_players"`
}

func (s *Scheduler) broadcastTick(tickCount domain.Tick, activePlayers int) {
	if s.bus == nil {
		return
	}

	payload, err := json.Marshal(TickPayload{
		TickNumber:    int64(tickCount),
		Timestamp:     time.Now(),
		ActivePlayers: activePlayers,
	})
	if err != nil {
		s.logger.Error("failed to marshal tick payload", "tick", tickCount, "error", err)
		return
	}

	s.bus.BroadcastGlobal(event.Event{
		ID:        ulid.Make(),
		Type:      event.TypeGameTick,
		Timestamp: time.Now(),
		Actor:     event.Actor{Kind: event.ActorSystem, ID: "tick"},
		Payload:   payload,
	})
}
