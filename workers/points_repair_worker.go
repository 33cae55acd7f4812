package workers

import (
	"context"
	"time"

	"prediction-pool/services"
	"prediction-pool/utils"
)

// PointsRepairer is the slice of the match service the repair loop needs.
type PointsRepairer interface {
	UnscoredFinishedMatches(ctx context.Context) ([]string, error)
	RecomputeMatchPoints(ctx context.Context, matchID string) (int, error)
}

// PointsRepairWorker rescans finished matches for predictions left without points.
type PointsRepairWorker struct {
	Matches  PointsRepairer
	Interval time.Duration

	// OnRepaired runs after a tick that rescored at least one match.
	OnRepaired func(ctx context.Context)
}

func NewPointsRepairWorker(matches PointsRepairer, interval time.Duration) *PointsRepairWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &PointsRepairWorker{Matches: matches, Interval: interval}
}

// Start blocks until ctx is cancelled.
func (w *PointsRepairWorker) Start(ctx context.Context) {
	utils.Log.Infof("🔧 Points repair worker started (every %s)", w.Interval)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.Log.Info("Points repair worker stopped.")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				utils.Log.WithError(err).Error("❌ Points repair sweep failed")
			}
		}
	}
}

// RunOnce rescores every finished match with unscored predictions and reports how many it fixed.
// A failing match is logged and skipped; the next sweep retries it.
func (w *PointsRepairWorker) RunOnce(ctx context.Context) (int, error) {
	ids, err := w.Matches.UnscoredFinishedMatches(ctx)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	utils.Log.Warnf("📥 Found %d finished match(es) with unscored predictions", len(ids))

	repaired := 0
	for _, id := range ids {
		n, err := w.Matches.RecomputeMatchPoints(ctx, id)
		if err != nil {
			utils.WithMatch(id).WithError(err).Error("❌ Failed to rescore match")
			continue
		}
		repaired++
		utils.WithMatch(id).Infof("✅ Rescored %d prediction(s)", n)
	}

	if repaired > 0 && w.OnRepaired != nil {
		w.OnRepaired(ctx)
	}
	return repaired, nil
}

var _ PointsRepairer = (*services.MatchService)(nil)
