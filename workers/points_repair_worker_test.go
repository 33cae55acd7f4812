package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepairer struct {
	unscored   []string
	listErr    error
	failFor    map[string]bool
	recomputed []string
}

func (f *fakeRepairer) UnscoredFinishedMatches(ctx context.Context) ([]string, error) {
	return f.unscored, f.listErr
}

func (f *fakeRepairer) RecomputeMatchPoints(ctx context.Context, matchID string) (int, error) {
	if f.failFor[matchID] {
		return 0, errors.New("database is locked")
	}
	f.recomputed = append(f.recomputed, matchID)
	return 3, nil
}

func TestRunOnce_RescoresUnscoredMatches(t *testing.T) {
	repo := &fakeRepairer{unscored: []string{"m1", "m2", "m3"}, failFor: map[string]bool{"m2": true}}
	w := NewPointsRepairWorker(repo, time.Minute)
	hooks := 0
	w.OnRepaired = func(ctx context.Context) { hooks++ }

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"m1", "m3"}, repo.recomputed)
	assert.Equal(t, 1, hooks)
}

func TestRunOnce_NothingToDo(t *testing.T) {
	repo := &fakeRepairer{}
	w := NewPointsRepairWorker(repo, 0)
	w.OnRepaired = func(ctx context.Context) { t.Fatal("hook should not run") }

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 5*time.Minute, w.Interval)
}

func TestRunOnce_ListError(t *testing.T) {
	w := NewPointsRepairWorker(&fakeRepairer{listErr: errors.New("boom")}, time.Minute)
	_, err := w.RunOnce(context.Background())
	assert.EqualError(t, err, "boom")
}

func TestStart_StopsOnCancel(t *testing.T) {
	w := NewPointsRepairWorker(&fakeRepairer{}, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
