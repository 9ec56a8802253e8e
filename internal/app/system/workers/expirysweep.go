// internal/app/system/workers/expirysweep.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/system/timeouts"
)

// Sweeper removes expired content of one family and reports how many
// items it swept.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// ExpirySweep is a background worker that removes transient content
// whose display window has ended.
type ExpirySweep struct {
	posts    Sweeper
	groups   Sweeper
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewExpirySweep creates a new expiry sweep worker.
//
// Parameters:
//   - posts: the post engine (swept first, so group membership shrinks before groups are checked)
//   - groups: the group engine
//   - logger: zap logger for logging
//   - interval: how often to run the sweep (e.g., 5 minutes)
func NewExpirySweep(posts, groups Sweeper, logger *zap.Logger, interval time.Duration) *ExpirySweep {
	return &ExpirySweep{
		posts:    posts,
		groups:   groups,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *ExpirySweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("expiry sweep worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *ExpirySweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("expiry sweep worker stopped")
}

func (w *ExpirySweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

// Sweep runs one sweep cycle immediately. Exposed so startup can clear
// the backlog without waiting for the first tick.
func (w *ExpirySweep) Sweep() {
	w.sweep()
}

func (w *ExpirySweep) sweep() {
	ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Batch(), w.log, "expiry sweep")
	defer cancel()

	postCount, err := w.posts.SweepExpired(ctx)
	if err != nil {
		w.log.Error("failed to sweep expired posts", zap.Error(err))
	}

	groupCount, err := w.groups.SweepExpired(ctx)
	if err != nil {
		w.log.Error("failed to sweep expired groups", zap.Error(err))
	}

	if postCount > 0 || groupCount > 0 {
		w.log.Info("swept expired content",
			zap.Int("posts", postCount),
			zap.Int("groups", groupCount))
	}
}
