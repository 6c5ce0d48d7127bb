package services

import (
	"context"
	"sync"
	"time"

	"ticketoffice/internal/clock"
	"ticketoffice/internal/logger"
	"ticketoffice/internal/messaging"
	"ticketoffice/internal/metrics"
)

// UsageSweeper periodically moves ACTIVE tickets of departed trips to USED.
type UsageSweeper struct {
	Tickets  UsageMarker
	Clock    clock.Clock
	Interval time.Duration
	Events   messaging.Publisher

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

type usageSweepEvent struct {
	Count int64     `json:"count"`
	At    time.Time `json:"at"`
}

// RunOnce performs one sweep and returns the number of tickets marked USED.
func (j *UsageSweeper) RunOnce(ctx context.Context) (int64, error) {
	now := j.Clock.Now()
	n, err := j.Tickets.MarkUsedDeparted(ctx, now)
	if err != nil {
		return 0, classify(err, "mark tickets used")
	}
	metrics.AddTicketsUsed(n)
	if n > 0 {
		logger.Event(ctx, "usage", "sweep", "tickets marked used", "count", n)
		messaging.PublishBestEffort(ctx, j.Events, messaging.SubjectTicketsUsed, usageSweepEvent{Count: n, At: now})
	}
	return n, nil
}

// Start runs a sweep immediately and then on every tick until Stop or ctx
// cancellation. A non-positive interval disables the job.
func (j *UsageSweeper) Start(ctx context.Context) {
	if j.Interval <= 0 {
		logger.Get().Info("usage sweeper disabled")
		return
	}
	j.done = make(chan struct{})
	logger.Get().Info("starting usage sweeper", "interval", j.Interval.String())

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(j.Interval)
		defer ticker.Stop()

		j.sweep(ctx)
		for {
			select {
			case <-ticker.C:
				j.sweep(ctx)
			case <-j.done:
				logger.Get().Info("usage sweeper stopped")
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (j *UsageSweeper) sweep(ctx context.Context) {
	if _, err := j.RunOnce(ctx); err != nil {
		logger.WithContext(ctx).Error("usage sweep failed", "error", err)
	}
}

// Stop ends the loop and waits for an in-flight sweep.
func (j *UsageSweeper) Stop() {
	j.stopOnce.Do(func() {
		if j.done != nil {
			close(j.done)
		}
	})
	j.wg.Wait()
}
