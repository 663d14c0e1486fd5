// Package sweep drives the engine's deadline sweep on a fixed cadence.
// Cadence only affects latency, never correctness: the sweep itself is
// idempotent, so a missed or doubled tick changes nothing.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/tahmid-rahman/counselhub/internal/clock"
)

type Target interface {
	Sweep(ctx context.Context, now time.Time) int
}

type Sweeper struct {
	target   Target
	clk      clock.Clock
	logger   *slog.Logger
	interval time.Duration
}

type Config struct {
	Interval time.Duration
}

func New(target Target, clk clock.Clock, logger *slog.Logger, cfg Config) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	return &Sweeper{
		target:   target,
		clk:      clk,
		logger:   logger,
		interval: cfg.Interval,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.target.Sweep(ctx, s.clk.Now()); n > 0 {
				s.logger.Info("deadline sweep acted", "breaches", n)
			}
		}
	}
}
