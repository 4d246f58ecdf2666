package queue

import (
	"errors"
	"math"
)

const (
	DefaultCapacity = 25
	DefaultWindowMs = 5000

	// NoData is returned by CurrentRate when no sample is left in the window.
	NoData int64 = 0

	msPerMinute = 60000
)

var ErrInvalidWindow = errors.New("rate window must be a positive number of milliseconds")

// RateEstimator extrapolates an events-per-minute rate from the samples it
// holds and the age of the oldest one. The caller supplies every timestamp
// and must keep them non-decreasing; out-of-order input yields a meaningless
// but finite rate. A RateEstimator is not safe for concurrent use.
type RateEstimator struct {
	samples  *BoundedQueue[int64]
	windowMs int64
	capacity int
}

type Option func(*RateEstimator)

func NewRateEstimator(options ...Option) (*RateEstimator, error) {
	estimator := &RateEstimator{
		windowMs: DefaultWindowMs,
		capacity: DefaultCapacity,
	}

	for _, option := range options {
		option(estimator)
	}

	if estimator.windowMs <= 0 {
		return nil, ErrInvalidWindow
	}

	estimator.samples = NewBoundedQueue[int64](estimator.capacity)

	return estimator, nil
}

// WithCapacity caps the number of retained samples. Pass Unbounded to rely
// on the window alone.
func WithCapacity(capacity int) Option {
	return func(estimator *RateEstimator) {
		estimator.capacity = capacity
	}
}

func WithWindow(windowMs int64) Option {
	return func(estimator *RateEstimator) {
		estimator.windowMs = windowMs
	}
}

func (r *RateEstimator) RecordEvent(timestampMs int64) {
	r.samples.Enqueue(timestampMs)
}

// CurrentRate purges samples older than the window and returns the
// extrapolated rate at nowMs. A sample whose age equals the window is kept.
func (r *RateEstimator) CurrentRate(nowMs int64) int64 {
	for {
		first, ok := r.samples.First()
		if !ok || nowMs-first <= r.windowMs {
			break
		}
		r.samples.Dequeue()
	}

	first, ok := r.samples.First()
	if !ok {
		return NoData
	}

	diff := nowMs - first
	if diff <= 0 {
		diff = 1
	}

	return int64(math.Round(msPerMinute * float64(r.samples.Size()) / float64(diff)))
}

func (r *RateEstimator) Clear() {
	r.samples.Clear()
}

func (r *RateEstimator) Samples() int {
	return r.samples.Size()
}

func (r *RateEstimator) Window() int64 {
	return r.windowMs
}

func (r *RateEstimator) Capacity() int {
	return r.samples.Capacity()
}
