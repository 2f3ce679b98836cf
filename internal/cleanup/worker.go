package cleanup

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shareforge/shareforge/internal/share"
)

// Worker periodically deletes expired shares and their files
type Worker struct {
	store    share.Store
	shares   *share.Manager
	ticker   *time.Ticker
	stopChan chan struct{}
	cleaned  func(count int)
}

// NewWorker creates a new cleanup worker. The optional cleaned callback
// receives the number of shares deleted per sweep.
func NewWorker(store share.Store, shares *share.Manager, cleaned func(count int)) *Worker {
	return &Worker{
		store:    store,
		shares:   shares,
		stopChan: make(chan struct{}),
		cleaned:  cleaned,
	}
}

// Start begins the cleanup worker
func (w *Worker) Start(ctx context.Context, interval time.Duration) {
	w.ticker = time.NewTicker(interval)

	logrus.WithField("interval", interval).Info("Share cleanup worker started")

	// Run immediately on start
	go w.Sweep(ctx)

	go func() {
		for {
			select {
			case <-w.ticker.C:
				w.Sweep(ctx)
			case <-w.stopChan:
				w.ticker.Stop()
				logrus.Info("Share cleanup worker stopped")
				return
			case <-ctx.Done():
				w.ticker.Stop()
				logrus.Info("Share cleanup worker stopped due to context cancellation")
				return
			}
		}
	}()
}

// Stop stops the cleanup worker
func (w *Worker) Stop() {
	close(w.stopChan)
}

// Sweep deletes every expired share. Individual failures are logged and do
// not abort the sweep.
func (w *Worker) Sweep(ctx context.Context) {
	expired, err := w.store.ListExpired(ctx, time.Now())
	if err != nil {
		logrus.WithError(err).Error("Failed to list expired shares")
		return
	}
	if len(expired) == 0 {
		return
	}

	deleted := 0
	for _, s := range expired {
		if err := w.shares.Remove(ctx, s.ID, true); err != nil {
			logrus.WithError(err).WithField("share_id", s.ID).Error("Failed to delete expired share")
			continue
		}
		deleted++
	}

	logrus.WithFields(logrus.Fields{
		"expired": len(expired),
		"deleted": deleted,
	}).Info("Cleaned up expired shares")

	if w.cleaned != nil && deleted > 0 {
		w.cleaned(deleted)
	}
}
