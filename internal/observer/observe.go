package observer

import (
	"context"
	"time"

	"github.com/pako-23/typing-rate/internal/receiver"
	"go.uber.org/zap"
)

func (o *Observer) record(event *receiver.Event) bool {
	if o.source != "" && event.Source != o.source {
		return false
	}

	timestamp := o.clock.Now().UnixMilli()
	if o.eventTimestamps {
		timestamp = event.TimestampMs
	}

	o.Estimator.RecordEvent(timestamp)
	return true
}

func (o *Observer) refresh() {
	rate := o.Estimator.CurrentRate(o.clock.Now().UnixMilli())

	if err := o.display.Render(rate); err != nil {
		o.logger.Warn("failed to render rate", zap.Int64("rate", rate), zap.Error(err))
	}
}

// Reset clears the estimator from the observing goroutine and renders the
// empty window. It blocks until that is done or ctx ends, so it fails with
// ctx.Err() when Observe is not running.
func (o *Observer) Reset(ctx context.Context) error {
	done := make(chan struct{})

	select {
	case o.resets <- done:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Observe runs until ctx is done. It renders once on start so the display
// shows the empty-window sentinel before any event arrives.
func (o *Observer) Observe(ctx context.Context, ch <-chan *receiver.Event) {
	var tick <-chan time.Time

	if o.Interval > 0 {
		ticker := o.clock.Ticker(o.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	o.refresh()

	for {
		select {
		case <-tick:
			o.refresh()

		case event, ok := <-ch:
			if !ok {
				o.logger.Info("event channel closed, observer stopping")
				return
			}

			if !o.record(event) {
				continue
			}

			if o.refreshOnEvent {
				o.refresh()
			}

		case done := <-o.resets:
			o.Estimator.Clear()
			o.refresh()
			close(done)
			o.logger.Info("estimator reset")

		case <-ctx.Done():
			return
		}
	}
}
