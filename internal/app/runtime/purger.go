package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wareledger/wareledger/internal/logging"
	"github.com/wareledger/wareledger/internal/middleware"
	"github.com/wareledger/wareledger/internal/session"
)

// limiterIdle is how long a client may stay silent before its login
// limiter is dropped.
const limiterIdle = time.Hour

// purger evicts expired sessions and idle login limiters on a cron schedule.
type purger struct {
	schedule string
	sessions session.Store
	limiter  *middleware.RateLimiter
	log      *logging.Logger
	cron     *cron.Cron
}

func newPurger(schedule string, sessions session.Store, limiter *middleware.RateLimiter, log *logging.Logger) *purger {
	if schedule == "" {
		schedule = "@every 15m"
	}
	return &purger{schedule: schedule, sessions: sessions, limiter: limiter, log: log}
}

func (p *purger) Name() string { return "session-purger" }

func (p *purger) Start(context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(p.schedule, p.run); err != nil {
		return fmt.Errorf("schedule %q: %w", p.schedule, err)
	}
	c.Start()
	p.cron = c
	p.log.WithField("schedule", p.schedule).Info("session purge scheduled")
	return nil
}

func (p *purger) Stop(ctx context.Context) error {
	if p.cron == nil {
		return nil
	}
	done := p.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *purger) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	purged := p.sessions.PurgeExpired(ctx)
	dropped := 0
	if p.limiter != nil {
		dropped = p.limiter.Cleanup(limiterIdle)
	}
	if purged > 0 || dropped > 0 {
		p.log.WithFields(map[string]interface{}{
			"sessions": purged,
			"limiters": dropped,
		}).Debug("expired entries purged")
	}
}
