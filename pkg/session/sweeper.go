package session

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"go.uber.org/zap"
)

// Sweeper periodically evicts expired sessions on a cron schedule.
// It is opt-in: without it the store still sweeps lazily when
// CreateSession hits capacity, which can leave memory held between
// creations under sustained single-session traffic.
type Sweeper struct {
	store *Store
	expr  string
	log   *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper validates the cron expression and prepares a sweeper.
func NewSweeper(store *Store, cronExpr string, log *zap.Logger) (*Sweeper, error) {
	if !gronx.New().IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid sweep cron expression: %q", cronExpr)
	}
	return &Sweeper{store: store, expr: cronExpr, log: log}, nil
}

// Start launches the sweep loop. The schedule is checked once per
// minute against the cron expression.
func (w *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		g := gronx.New()
		for {
			select {
			case <-ctx.Done():
				return
			case tick := <-ticker.C:
				due, err := g.IsDue(w.expr, tick)
				if err != nil {
					w.log.Warn("sweep schedule check failed", zap.Error(err))
					continue
				}
				if !due {
					continue
				}
				if evicted := w.store.Sweep(); evicted > 0 {
					w.log.Info("session sweep", zap.Int("evicted", evicted))
				}
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit.
func (w *Sweeper) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}
