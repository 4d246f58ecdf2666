package observer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pako-23/typing-rate/internal/observer"
	"github.com/pako-23/typing-rate/internal/queue"
	"github.com/pako-23/typing-rate/internal/receiver"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	zapobserver "go.uber.org/zap/zaptest/observer"
	"gotest.tools/v3/assert"
)

var errDisplay = errors.New("display unavailable")

type testDisplay struct {
	rates chan int64
	fail  bool
}

func newTestDisplay() *testDisplay {
	return &testDisplay{rates: make(chan int64, 16)}
}

func (d *testDisplay) Render(rate int64) error {
	d.rates <- rate
	if d.fail {
		return errDisplay
	}

	return nil
}

func (d *testDisplay) next(t *testing.T) int64 {
	t.Helper()

	select {
	case rate := <-d.rates:
		return rate
	case <-time.After(time.Second):
		t.Fatal("no rate was rendered")
	}

	return 0
}

func (d *testDisplay) idle(t *testing.T) {
	t.Helper()

	select {
	case rate := <-d.rates:
		t.Fatalf("unexpected render of %d", rate)
	case <-time.After(50 * time.Millisecond):
	}
}

type run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func observe(obs *observer.Observer, ch <-chan *receiver.Event) *run {
	ctx, cancel := context.WithCancel(context.Background())
	r := &run{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(r.done)
		obs.Observe(ctx, ch)
	}()

	return r
}

func (r *run) stop() {
	r.cancel()
	<-r.done
}

func TestObserveInitialRender(t *testing.T) {
	t.Parallel()

	disp := newTestDisplay()
	obs := observer.NewObserver(newEstimator(t),
		observer.WithClock(clock.NewMock()),
		observer.WithDisplay(disp))

	r := observe(obs, make(chan *receiver.Event))
	assert.Equal(t, disp.next(t), queue.NoData)
	r.stop()
}

func TestObservePolling(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	disp := newTestDisplay()
	obs := observer.NewObserver(newEstimator(t),
		observer.WithClock(mock),
		observer.WithDisplay(disp),
		observer.WithInterval(500*time.Millisecond),
		observer.WithRefreshOnEvent(),
		observer.WithLogger(zaptest.NewLogger(t)))
	ch := make(chan *receiver.Event)

	r := observe(obs, ch)
	defer r.stop()
	assert.Equal(t, disp.next(t), queue.NoData)

	// The render after the event means it was stamped before the clock moves.
	ch <- &receiver.Event{Kind: "edit"}
	assert.Equal(t, disp.next(t), int64(60000))
	disp.idle(t)

	mock.Add(500 * time.Millisecond)
	assert.Equal(t, disp.next(t), int64(120))

	mock.Add(500 * time.Millisecond)
	assert.Equal(t, disp.next(t), int64(60))
}

func TestObservePollingAgeOut(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	disp := newTestDisplay()
	estimator := newEstimator(t)
	obs := observer.NewObserver(estimator,
		observer.WithClock(mock),
		observer.WithDisplay(disp),
		observer.WithInterval(6*time.Second),
		observer.WithRefreshOnEvent())
	ch := make(chan *receiver.Event)

	r := observe(obs, ch)
	assert.Equal(t, disp.next(t), queue.NoData)

	ch <- &receiver.Event{Kind: "edit"}
	assert.Equal(t, disp.next(t), int64(60000))

	// The single sample is 6s old at the first tick and leaves the window.
	mock.Add(6 * time.Second)
	assert.Equal(t, disp.next(t), queue.NoData)

	r.stop()
	assert.Equal(t, estimator.Samples(), 0)
}

func TestObserveRefreshOnEvent(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	disp := newTestDisplay()
	estimator := newEstimator(t)
	obs := observer.NewObserver(estimator,
		observer.WithClock(mock),
		observer.WithDisplay(disp),
		observer.WithInterval(0),
		observer.WithRefreshOnEvent())
	ch := make(chan *receiver.Event)

	r := observe(obs, ch)
	assert.Equal(t, disp.next(t), queue.NoData)

	expected := []int64{60000, 120, 90, 80, 75}
	for i, rate := range expected {
		if i > 0 {
			mock.Add(time.Second)
		}
		ch <- &receiver.Event{Kind: "edit"}
		assert.Equal(t, disp.next(t), rate)
	}

	mock.Add(2 * time.Second)
	ch <- &receiver.Event{Kind: "selection"}
	assert.Equal(t, disp.next(t), int64(60))

	r.stop()
	assert.Equal(t, estimator.Samples(), 5)
}

func TestObserveSourceFilter(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	disp := newTestDisplay()
	estimator := newEstimator(t)
	obs := observer.NewObserver(estimator,
		observer.WithClock(mock),
		observer.WithDisplay(disp),
		observer.WithInterval(0),
		observer.WithRefreshOnEvent(),
		observer.WithSource("editor"))
	ch := make(chan *receiver.Event)

	r := observe(obs, ch)
	assert.Equal(t, disp.next(t), queue.NoData)

	ch <- &receiver.Event{Kind: "edit", Source: "terminal"}
	ch <- &receiver.Event{Kind: "edit", Source: ""}
	disp.idle(t)

	mock.Add(time.Second)
	ch <- &receiver.Event{Kind: "edit", Source: "editor"}
	assert.Equal(t, disp.next(t), int64(60000))

	r.stop()
	assert.Equal(t, estimator.Samples(), 1)
}

func TestObserveEventTimestamps(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	mock.Add(4 * time.Second)
	disp := newTestDisplay()
	obs := observer.NewObserver(newEstimator(t),
		observer.WithClock(mock),
		observer.WithDisplay(disp),
		observer.WithInterval(0),
		observer.WithRefreshOnEvent(),
		observer.WithEventTimestamps())
	ch := make(chan *receiver.Event)

	r := observe(obs, ch)
	defer r.stop()
	assert.Equal(t, disp.next(t), queue.NoData)

	expected := []int64{15, 30, 45, 60, 75}
	for i, rate := range expected {
		ch <- &receiver.Event{Kind: "edit", TimestampMs: int64(i) * 1000}
		assert.Equal(t, disp.next(t), rate)
	}
}

func TestObserveRenderFailure(t *testing.T) {
	t.Parallel()

	core, logs := zapobserver.New(zap.WarnLevel)
	mock := clock.NewMock()
	disp := newTestDisplay()
	disp.fail = true
	obs := observer.NewObserver(newEstimator(t),
		observer.WithClock(mock),
		observer.WithDisplay(disp),
		observer.WithInterval(time.Second),
		observer.WithRefreshOnEvent(),
		observer.WithLogger(zap.New(core)))
	ch := make(chan *receiver.Event)

	r := observe(obs, ch)
	assert.Equal(t, disp.next(t), queue.NoData)

	ch <- &receiver.Event{Kind: "edit"}
	assert.Equal(t, disp.next(t), int64(60000))

	mock.Add(time.Second)
	assert.Equal(t, disp.next(t), int64(60))

	r.stop()
	assert.Equal(t, logs.FilterMessage("failed to render rate").Len(), 3,
		"initial, event and tick renders all fail and the loop keeps going")
}

func TestObserveClosedChannel(t *testing.T) {
	t.Parallel()

	obs := observer.NewObserver(newEstimator(t), observer.WithClock(clock.NewMock()))
	ch := make(chan *receiver.Event)
	close(ch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		obs.Observe(context.Background(), ch)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("observer kept running after its channel was closed")
	}
}

func TestObserveReset(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	disp := newTestDisplay()
	estimator := newEstimator(t)
	obs := observer.NewObserver(estimator,
		observer.WithClock(mock),
		observer.WithDisplay(disp),
		observer.WithInterval(0),
		observer.WithRefreshOnEvent())
	ch := make(chan *receiver.Event)

	r := observe(obs, ch)
	assert.Equal(t, disp.next(t), queue.NoData)

	ch <- &receiver.Event{Kind: "edit"}
	assert.Equal(t, disp.next(t), int64(60000))

	assert.NilError(t, obs.Reset(context.Background()))
	assert.Equal(t, disp.next(t), queue.NoData)

	mock.Add(time.Second)
	ch <- &receiver.Event{Kind: "edit"}
	assert.Equal(t, disp.next(t), int64(60000), "only the sample after the reset is held")

	r.stop()
	assert.Equal(t, estimator.Samples(), 1)
}

func TestResetWithoutObserve(t *testing.T) {
	t.Parallel()

	obs := observer.NewObserver(newEstimator(t), observer.WithClock(clock.NewMock()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := obs.Reset(ctx)
	assert.Assert(t, errors.Is(err, context.DeadlineExceeded))
}
