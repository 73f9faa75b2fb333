package generator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/nerrad567/entrance-cockpit-mock/internal/monitoring"
)

// Defaults applied by New when the config leaves them unset.
const (
	DefaultInterval           = 3 * time.Second
	DefaultSuccessProbability = 0.8

	// recordTimeout bounds recorder calls made from the auto-mode worker.
	recordTimeout = 5 * time.Second
)

// Broadcaster delivers events to observers. Satisfied by *monitoring.Hub.
type Broadcaster interface {
	Broadcast(ev monitoring.Event) error
}

// Recorder receives every successfully broadcast event.
type Recorder interface {
	RecordEvent(ctx context.Context, ev monitoring.Event) error
}

// Source supplies mock identifiers. Satisfied by *directory.Directory.
type Source interface {
	RandomDoorID() string
	RandomBadgeID() string
	RandomDeviceID() string
	RandomUnknownBadgeID() string
}

// Logger defines the logging interface used by the Generator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config controls event generation. Start from DefaultConfig: a literal
// leaves SuccessProbability at zero, which makes every random badge event
// fail.
type Config struct {
	// AutoMode enables the background cadence started by StartAuto.
	AutoMode bool

	// Interval is the period between auto-mode events.
	Interval time.Duration

	// SuccessProbability is the chance a random badge event succeeds.
	// Zero is honoured (always fail); a negative value means "use the
	// default".
	SuccessProbability float64

	// UnknownBadgeProbability is the chance a random badge event carries
	// an UNKNOWN-<N> badge. Zero never emits unknown badges.
	UnknownBadgeProbability float64
}

// DefaultConfig returns auto mode off, a 3s interval and 80% success.
func DefaultConfig() Config {
	return Config{
		Interval:           DefaultInterval,
		SuccessProbability: DefaultSuccessProbability,
	}
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the generator logger.
func WithLogger(l Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithRand injects the PRNG used for success and unknown-badge draws.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rng = r
		}
	}
}

// WithRecorder registers a recorder at construction time.
func WithRecorder(r Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorders = append(g.recorders, r)
		}
	}
}

// Generator builds and publishes monitoring events.
//
// Thread Safety: all methods are safe for concurrent use.
type Generator struct {
	cfg    Config
	hub    Broadcaster
	source Source
	logger Logger

	recMu     sync.RWMutex
	recorders []Recorder

	rngMu sync.Mutex
	rng   *rand.Rand

	// Auto-mode worker state
	runMu sync.Mutex
	stop  chan struct{}
	wg    sync.WaitGroup
}

// New creates a generator publishing to hub and drawing ids from source.
func New(cfg Config, hub Broadcaster, source Source, opts ...Option) (*Generator, error) {
	if hub == nil {
		return nil, ErrNoBroadcaster
	}
	if source == nil {
		return nil, ErrNoSource
	}

	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.SuccessProbability < 0 {
		cfg.SuccessProbability = DefaultSuccessProbability
	}

	g := &Generator{
		cfg:    cfg,
		hub:    hub,
		source: source,
		logger: noopLogger{},
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Config returns the effective configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// AddRecorder registers r to receive every published event.
func (g *Generator) AddRecorder(r Recorder) {
	if r == nil {
		return
	}
	g.recMu.Lock()
	defer g.recMu.Unlock()
	g.recorders = append(g.recorders, r)
}

// Publish broadcasts ev unchanged and then hands it to the recorders.
// Only broadcast failures (serialisation) are returned.
func (g *Generator) Publish(ctx context.Context, ev monitoring.Event) error {
	if err := g.hub.Broadcast(ev); err != nil {
		return fmt.Errorf("broadcasting event %s: %w", ev.ID, err)
	}

	g.record(ctx, ev)
	return nil
}

// PublishRandom builds a random badge event and publishes it.
func (g *Generator) PublishRandom(ctx context.Context) (monitoring.Event, error) {
	ev := g.RandomBadgeEvent()
	if err := g.Publish(ctx, ev); err != nil {
		return ev, err
	}
	return ev, nil
}

// RandomBadgeEvent builds a badge_event from the directory tables.
func (g *Generator) RandomBadgeEvent() monitoring.Event {
	g.rngMu.Lock()
	success := g.rng.Float64() < g.cfg.SuccessProbability
	unknown := g.cfg.UnknownBadgeProbability > 0 && g.rng.Float64() < g.cfg.UnknownBadgeProbability
	g.rngMu.Unlock()

	badgeID := g.source.RandomBadgeID()
	if unknown {
		badgeID = g.source.RandomUnknownBadgeID()
	}

	return monitoring.NewBadgeEvent(
		g.source.RandomDeviceID(),
		badgeID,
		g.source.RandomDoorID(),
		success,
	)
}

// StartAuto starts the auto-mode worker when AutoMode is set.
// The first event fires one interval after the call. Calling it again
// while the worker runs has no effect. It reports whether a worker is running.
func (g *Generator) StartAuto() bool {
	if !g.cfg.AutoMode {
		g.logger.Debug("auto mode disabled, not scheduling events")
		return false
	}

	g.runMu.Lock()
	defer g.runMu.Unlock()

	if g.stop != nil {
		return true
	}

	g.stop = make(chan struct{})
	g.wg.Add(1)
	go g.run(g.stop)

	g.logger.Info("auto mode started", "interval", g.cfg.Interval.String())
	return true
}

// Stop cancels the auto-mode worker and waits for it to exit.
// An in-flight publish completes first. Safe to call when not started.
func (g *Generator) Stop() {
	g.runMu.Lock()
	stop := g.stop
	g.stop = nil
	g.runMu.Unlock()

	if stop == nil {
		return
	}

	close(stop)
	g.wg.Wait()
	g.logger.Info("auto mode stopped")
}

// Running reports whether the auto-mode worker is active.
func (g *Generator) Running() bool {
	g.runMu.Lock()
	defer g.runMu.Unlock()
	return g.stop != nil
}

// run is the single auto-mode worker. time.Ticker keeps a fixed rate:
// a late tick fires immediately, and ticks never overlap.
func (g *Generator) run(stop <-chan struct{}) {
	defer g.wg.Done()

	ticker := time.NewTicker(g.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			ev, err := g.PublishRandom(ctx)
			cancel()
			if err != nil {
				g.logger.Error("auto mode publish failed", "event_id", ev.ID, "error", err)
			}
		}
	}
}

func (g *Generator) record(ctx context.Context, ev monitoring.Event) {
	g.recMu.RLock()
	recorders := g.recorders
	g.recMu.RUnlock()

	for _, r := range recorders {
		if err := r.RecordEvent(ctx, ev); err != nil {
			g.logger.Warn("recording event failed",
				"event_id", ev.ID,
				"event_type", ev.Type,
				"error", err)
		}
	}
}
