package aspxauth

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MrEthical07/aspxauth/internal/machinekey"
	"go.uber.org/zap"
)

// Builder assembles an Engine. A Builder is single use: configure it, call Build once,
// and discard it.
type Builder struct {
	config Config
	logger *zap.Logger
	clock  func() time.Time
	random io.Reader

	built bool
}

// New returns a Builder holding DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithLogger sets the logger used for decode diagnostics. Nil restores the no-op logger.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock overrides the time source used for issue dates and expiration checks.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// WithRandom overrides the source of headers and IVs. It exists for deterministic tests;
// production engines should keep crypto/rand.
func (b *Builder) WithRandom(r io.Reader) *Builder {
	b.random = r
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the decode latency histogram. It has no effect unless
// metrics are enabled.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, decodes and derives the keys, and returns an
// immutable Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	keys, err := cfg.keys()
	if err != nil {
		return nil, err
	}

	protector, err := machinekey.New(cfg.Mode.protection(), keys, b.random)
	if err != nil {
		return nil, fmt.Errorf("machine key: %w", err)
	}

	engine := &Engine{
		config:    cfg,
		protector: protector,
		metrics:   NewMetrics(cfg.Metrics),
		logger:    b.logger,
		now:       b.clock,
	}
	if engine.logger == nil {
		engine.logger = zap.NewNop()
	}
	if engine.now == nil {
		engine.now = time.Now
	}

	b.built = true

	return engine, nil
}

// NewEngine builds an Engine from cfg with the default logger, clock and randomness.
func NewEngine(cfg Config) (*Engine, error) {
	return New().WithConfig(cfg).Build()
}
