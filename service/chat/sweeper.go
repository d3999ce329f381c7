package chat

import (
	"context"
	"sync/atomic"
	"time"

	"PChat/logger"
)

// Retention policy: fixed constants, not configuration.
const (
	SweepInterval = time.Hour
	RetentionAge  = 24 * time.Hour
)

// RetentionStore is the slice of the message store the sweeper needs.
type RetentionStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type SweeperConf struct {
	Interval time.Duration    // tick period (default SweepInterval)
	MaxAge   time.Duration    // retention age (default RetentionAge)
	Clock    func() time.Time // injectable clock for tests; nil => time.Now
}

func (c *SweeperConf) norm() {
	if c.Interval <= 0 {
		c.Interval = SweepInterval
	}
	if c.MaxAge <= 0 {
		c.MaxAge = RetentionAge
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

// Sweeper deletes expired messages on a fixed interval. Failures are logged
// and retried on the next tick. If a sweep is still in flight when the next
// tick fires, that tick is skipped; sweeps never overlap.
type Sweeper struct {
	store   RetentionStore
	conf    SweeperConf
	running atomic.Bool
}

func NewSweeper(store RetentionStore, conf SweeperConf) *Sweeper {
	conf.norm()
	return &Sweeper{store: store, conf: conf}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.conf.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		logger.Warnf("[Sweeper] previous sweep still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	cutoff := s.conf.Clock().Add(-s.conf.MaxAge)
	n, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		logger.Errorf("[Sweeper] delete old messages failed err=%v", err)
		return
	}
	logger.Infof("[Sweeper] deleted %d old messages cutoff=%s", n, cutoff.Format(time.RFC3339))
}
