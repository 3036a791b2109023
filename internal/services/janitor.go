package services

import (
	"fmt"
	"time"

	"github.com/google/logger"
	"github.com/robfig/cron/v3"
)

// StartJanitor schedules CleanUpInactiveSessions on the given cron schedule
// (for example "@every 10m"). Stop the returned cron to end it.
func StartJanitor(svc *LotteryService, schedule string, ttl time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n := svc.CleanUpInactiveSessions(ttl); n > 0 {
			logger.Infof("Removed %d inactive session(s)", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
