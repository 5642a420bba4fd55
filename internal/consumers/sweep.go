package consumers

import (
	"context"
	"sync"
	"time"

	"hunttickets/internal/format"
	"hunttickets/internal/logger"
	"hunttickets/internal/models"
)

const DefaultSweepInterval = 5 * time.Minute

// StatusSweepJob periodically reconciles active events, catching sold out
// events whose update message was lost.
type StatusSweepJob struct {
	events   EventReconciler
	interval time.Duration
	now      func() time.Time
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewStatusSweepJob(events EventReconciler, interval time.Duration) *StatusSweepJob {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &StatusSweepJob{
		events:   events,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

func (j *StatusSweepJob) Start(ctx context.Context) {
	logger.Get().Info("Starting event status sweep", "interval", j.interval)

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		j.Sweep(ctx)
		for {
			select {
			case <-ticker.C:
				j.Sweep(ctx)
			case <-ctx.Done():
				return
			case <-j.done:
				logger.Get().Info("Event status sweep stopped")
				return
			}
		}
	}()
}

func (j *StatusSweepJob) Stop() {
	close(j.done)
	j.wg.Wait()
}

// Sweep reconciles every active event at or over capacity and returns how
// many were marked sold out.
func (j *StatusSweepJob) Sweep(ctx context.Context) int {
	events, err := j.events.List(ctx, &models.EventFilters{Status: models.EventStatusActive})
	if err != nil {
		logger.Get().Error("Failed to list events for status sweep", "error", err)
		return 0
	}

	now := j.now()
	marked := 0
	for i := range events {
		if format.DetermineEventStatus(&events[i], now) != models.EventStatusSoldOut {
			continue
		}
		if _, err := j.events.ReconcileStatus(ctx, events[i].ID); err != nil {
			logger.Get().Error("Failed to reconcile event status", "event_id", events[i].ID, "error", err)
			continue
		}
		marked++
	}

	if marked > 0 {
		logger.Get().Info("Marked sold out events", "count", marked)
	}
	return marked
}
