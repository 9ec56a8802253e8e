package workers_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/system/workers"
)

type countingSweeper struct {
	calls atomic.Int64
	n     int
	err   error
}

func (s *countingSweeper) SweepExpired(context.Context) (int, error) {
	s.calls.Add(1)
	return s.n, s.err
}

func TestSweep_RunsPostsThenGroups(t *testing.T) {
	posts := &countingSweeper{n: 2}
	groups := &countingSweeper{n: 1}
	w := workers.NewExpirySweep(posts, groups, zap.NewNop(), time.Hour)

	w.Sweep()

	if posts.calls.Load() != 1 || groups.calls.Load() != 1 {
		t.Errorf("calls = posts %d, groups %d, want 1 each", posts.calls.Load(), groups.calls.Load())
	}
}

func TestSweep_PostFailureStillSweepsGroups(t *testing.T) {
	posts := &countingSweeper{err: errors.New("store down")}
	groups := &countingSweeper{}
	w := workers.NewExpirySweep(posts, groups, zap.NewNop(), time.Hour)

	w.Sweep()

	if groups.calls.Load() != 1 {
		t.Error("group sweep should run even when the post sweep fails")
	}
}

func TestStartStop_TicksAndTerminates(t *testing.T) {
	posts := &countingSweeper{}
	groups := &countingSweeper{}
	w := workers.NewExpirySweep(posts, groups, zap.NewNop(), 10*time.Millisecond)

	w.Start()
	deadline := time.After(2 * time.Second)
	for posts.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("worker never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}
	w.Stop()

	settled := posts.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if posts.calls.Load() != settled {
		t.Error("worker kept sweeping after Stop")
	}
}
