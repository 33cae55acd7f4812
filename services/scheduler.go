// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"time"

	"prediction-pool/utils"

	"github.com/go-co-op/gocron/v2"
)

// StartKickoffScheduler flips SCHEDULED matches to LIVE once their kickoff passes.
// The caller owns the returned scheduler and must shut it down.
func (s *MatchService) StartKickoffScheduler(ctx context.Context, every time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithClock(s.Clock))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	// Every interval: start matches whose kickoff has passed
	_, err = sched.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			if _, err := s.StartDueMatches(ctx); err != nil {
				utils.Log.WithError(err).Error("[Scheduler] ❌ Kickoff sweep failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("kickoff-sweep"),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule kickoff sweep: %w", err)
	}

	sched.Start()
	utils.Log.Infof("⏰ Kickoff sweep scheduled every %s", every)
	return sched, nil
}
