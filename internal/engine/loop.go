package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Loop drives a World at its fixed tick rate from wall-clock time. Frame
// delivery jitter lands in a time-debt accumulator drained in fixed-size
// decrements; the debt is clamped so a stalled host cannot force unbounded
// catch-up ticks in a single callback.
type Loop struct {
	w          *World
	step       time.Duration
	maxCatchUp int
	log        *zap.Logger
	accum      time.Duration
}

// statsEvery is how often Run emits a progress line, in ticks.
const statsEvery = 600

func NewLoop(w *World, maxCatchUp int, log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	if maxCatchUp < 1 {
		maxCatchUp = 1
	}
	return &Loop{
		w:          w,
		step:       time.Duration(float64(time.Second) / w.TickRate()),
		maxCatchUp: maxCatchUp,
		log:        log,
	}
}

// Step is the fixed timestep duration.
func (l *Loop) Step() time.Duration { return l.step }

// Advance absorbs elapsed wall time and runs however many whole fixed
// ticks it covers, at most maxCatchUp. Returns the number of ticks run.
func (l *Loop) Advance(elapsed time.Duration) int {
	l.accum += elapsed
	if max := time.Duration(l.maxCatchUp) * l.step; l.accum > max {
		l.accum = max
	}
	n := 0
	for l.accum >= l.step {
		l.w.RunTick()
		l.accum -= l.step
		n++
	}
	return n
}

// Run ticks the world until the context is canceled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.step)
	defer ticker.Stop()

	last := time.Now()
	var sinceStats uint64
	for {
		select {
		case <-ctx.Done():
			l.log.Info("game loop stopped",
				zap.Uint64("tick", l.w.Tick()),
				zap.Int("entities", l.w.Registry().Len()))
			return ctx.Err()
		case now := <-ticker.C:
			start := time.Now()
			ran := l.Advance(now.Sub(last))
			last = now
			sinceStats += uint64(ran)
			if sinceStats >= statsEvery {
				sinceStats = 0
				l.log.Debug("tick stats",
					zap.Uint64("tick", l.w.Tick()),
					zap.Int("entities", l.w.Registry().Len()),
					zap.Duration("frame_cost", time.Since(start)))
			}
		}
	}
}
