// Package scheduler runs housekeeping jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SessionPurger removes sessions that expired at or before now.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context, now time.Time) int
}

// SweepSessions purges expired sessions once and returns how many went.
func SweepSessions(ctx context.Context, p SessionPurger, log logrus.FieldLogger) int {
	n := p.PurgeExpiredSessions(ctx, time.Now())
	if n > 0 {
		log.WithField("removed", n).Info("expired sessions purged")
	}
	return n
}

// Start schedules the session sweep and stops the cron runner when ctx is done.
// onSweep, when set, receives the count of every sweep.
func Start(ctx context.Context, spec string, p SessionPurger, log logrus.FieldLogger, onSweep func(int)) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		n := SweepSessions(ctx, p, log)
		if onSweep != nil {
			onSweep(n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule session sweep %q: %w", spec, err)
	}

	c.Start()
	log.WithField("schedule", spec).Info("scheduler started")

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		log.Info("scheduler stopped")
	}()
	return c, nil
}
