package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/pako-23/typing-rate/internal/queue"
	"github.com/pako-23/typing-rate/internal/receiver"
)

const EnvPrefix = "TYPINGRATE"

var (
	ErrInvalidWindow       = errors.New("estimator.window must be at least 1ms")
	ErrInvalidPollInterval = errors.New("observer.poll_interval must be positive unless observer.refresh_on_event is set")
	ErrMissingAddress      = errors.New("listen address must not be empty")
	ErrInvalidLogLevel     = errors.New("unknown logging.level")
	ErrInvalidShutdown     = errors.New("http.shutdown_timeout must be positive")
)

// SetDefaults installs the default value of every key, which also makes
// each key visible to the environment lookup.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("estimator.capacity", queue.DefaultCapacity)
	v.SetDefault("estimator.window", time.Duration(queue.DefaultWindowMs)*time.Millisecond)
	v.SetDefault("observer.poll_interval", 500*time.Millisecond)
	v.SetDefault("observer.refresh_on_event", false)
	v.SetDefault("observer.event_timestamps", false)
	v.SetDefault("observer.source", "")
	v.SetDefault("display.unit", queue.DefaultUnit)
	v.SetDefault("receiver.address", receiver.DefaultAddress)
	v.SetDefault("http.address", ":8080")
	v.SetDefault("http.shutdown_timeout", 5*time.Second)
	v.SetDefault("logging.level", "info")
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error

	if c.Estimator.Window.Milliseconds() <= 0 {
		err = multierr.Append(err, ErrInvalidWindow)
	}

	if c.Observer.PollInterval <= 0 && !c.Observer.RefreshOnEvent {
		err = multierr.Append(err, ErrInvalidPollInterval)
	}

	if strings.TrimSpace(c.Receiver.Address) == "" {
		err = multierr.Append(err, fmt.Errorf("receiver.address: %w", ErrMissingAddress))
	}

	if strings.TrimSpace(c.HTTP.Address) == "" {
		err = multierr.Append(err, fmt.Errorf("http.address: %w", ErrMissingAddress))
	}

	if c.HTTP.ShutdownTimeout <= 0 {
		err = multierr.Append(err, ErrInvalidShutdown)
	}

	if _, parseErr := zapcore.ParseLevel(c.Logging.Level); parseErr != nil {
		err = multierr.Append(err, fmt.Errorf("%w %q", ErrInvalidLogLevel, c.Logging.Level))
	}

	return err
}

// EstimatorOptions translates the estimator section into estimator options.
func (c *Config) EstimatorOptions() []queue.Option {
	return []queue.Option{
		queue.WithCapacity(c.Estimator.Capacity),
		queue.WithWindow(c.Estimator.Window.Milliseconds()),
	}
}
