package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pako-23/typing-rate/internal/config"
	"github.com/pako-23/typing-rate/internal/display"
	"github.com/pako-23/typing-rate/internal/observability"
	"github.com/pako-23/typing-rate/internal/observer"
	"github.com/pako-23/typing-rate/internal/queue"
	"github.com/pako-23/typing-rate/internal/receiver"
)

const serviceName = "typingrate"

type resetter interface {
	Reset(ctx context.Context) error
}

func newMux(bar *display.StatusBar, reg *prometheus.Registry, obs resetter) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, bar.Text())
	})
	mux.HandleFunc("/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if err := obs.Reset(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return mux
}

func observerOptions(cfg *config.Config, disp display.Display, logger *zap.Logger) []observer.Option {
	options := []observer.Option{
		observer.WithDisplay(disp),
		observer.WithInterval(cfg.Observer.PollInterval),
		observer.WithSource(cfg.Observer.Source),
		observer.WithLogger(logger.Named("observer")),
	}

	if cfg.Observer.RefreshOnEvent {
		options = append(options, observer.WithRefreshOnEvent())
	}
	if cfg.Observer.EventTimestamps {
		options = append(options, observer.WithEventTimestamps())
	}

	return options
}

func runServe(parent context.Context, v *viper.Viper) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(serviceName, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	estimator, err := queue.NewRateEstimator(cfg.EstimatorOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create estimator: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	gauge, err := display.NewGaugeDisplay(reg)
	if err != nil {
		return err
	}
	bar := display.NewStatusBar(cfg.Display.Unit)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	var wg sync.WaitGroup

	ch := make(chan *receiver.Event)
	recv := receiver.NewOLTPReceiver(
		receiver.WithChannel(ch),
		receiver.WithAddress(cfg.Receiver.Address),
		receiver.WithLogger(logger.Named("receiver")))

	obs := observer.NewObserver(estimator,
		observerOptions(cfg, display.Multi(bar, gauge), logger)...)

	httpErr := make(chan error, 1)
	server := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newMux(bar, reg, obs),
	}

	_, recvErr := recv.Start()

	logger.Info("starting",
		zap.Int("capacity", estimator.Capacity()),
		zap.Int64("window_ms", estimator.Window()),
		zap.Duration("poll_interval", cfg.Observer.PollInterval),
		zap.Bool("refresh_on_event", cfg.Observer.RefreshOnEvent),
		zap.String("http_addr", cfg.HTTP.Address))

	observerCtx, stopObserver := context.WithCancel(ctx)
	defer stopObserver()

	wg.Add(2)
	go func() {
		defer wg.Done()
		obs.Observe(observerCtx, ch)
	}()
	go func() {
		defer wg.Done()
		httpErr <- server.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-recvErr:
		if err != nil {
			runErr = fmt.Errorf("otlp receiver failed: %w", err)
		}
		shutdown(server, cfg, logger)

	case err := <-httpErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
		recv.Stop()

	case <-ctx.Done():
		logger.Info("shutting down")
		recv.Stop()
		shutdown(server, cfg, logger)
	}

	stopObserver()
	wg.Wait()

	return runErr
}

func shutdown(server *http.Server, cfg *config.Config, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("http server shutdown failed", zap.Error(err))
	}
}
