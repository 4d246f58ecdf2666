package observer

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pako-23/typing-rate/internal/display"
	"github.com/pako-23/typing-rate/internal/queue"
	"go.uber.org/zap"
)

const DefaultInterval = 500 * time.Millisecond

// Observer feeds activity events into one RateEstimator and pushes the
// refreshed rate to a display. It is the only goroutine touching the
// estimator.
type Observer struct {
	Interval        time.Duration
	Estimator       *queue.RateEstimator
	display         display.Display
	clock           clock.Clock
	logger          *zap.Logger
	source          string
	refreshOnEvent  bool
	eventTimestamps bool
	resets          chan chan struct{}
}

type Option func(*Observer)

func NewObserver(estimator *queue.RateEstimator, options ...Option) *Observer {
	observer := &Observer{
		Interval:  DefaultInterval,
		Estimator: estimator,
		display:   &display.NullDisplay{},
		clock:     clock.New(),
		logger:    zap.NewNop(),
		resets:    make(chan chan struct{}),
	}

	for _, opt := range options {
		opt(observer)
	}

	return observer
}

func WithDisplay(disp display.Display) Option {
	return func(observer *Observer) {
		observer.display = disp
	}
}

// WithInterval sets the polling cadence. A non-positive interval disables
// polling, leaving WithRefreshOnEvent as the only refresh strategy.
func WithInterval(interval time.Duration) Option {
	return func(observer *Observer) {
		observer.Interval = interval
	}
}

func WithClock(clk clock.Clock) Option {
	return func(observer *Observer) {
		observer.clock = clk
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(observer *Observer) {
		observer.logger = logger
	}
}

// WithSource only counts events coming from the named source.
func WithSource(source string) Option {
	return func(observer *Observer) {
		observer.source = source
	}
}

func WithRefreshOnEvent() Option {
	return func(observer *Observer) {
		observer.refreshOnEvent = true
	}
}

// WithEventTimestamps records the timestamp carried by each event instead
// of the time it was received. Senders must then keep them non-decreasing.
func WithEventTimestamps() Option {
	return func(observer *Observer) {
		observer.eventTimestamps = true
	}
}
