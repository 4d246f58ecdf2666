// Package config loads the daemon configuration from defaults, an optional
// config file, TYPINGRATE_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import "time"

type Config struct {
	Estimator EstimatorConfig `mapstructure:"estimator"`
	Observer  ObserverConfig  `mapstructure:"observer"`
	Display   DisplayConfig   `mapstructure:"display"`
	Receiver  ReceiverConfig  `mapstructure:"receiver"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// EstimatorConfig sizes the sliding window. A negative capacity means the
// window duration is the only bound.
type EstimatorConfig struct {
	Capacity int           `mapstructure:"capacity"`
	Window   time.Duration `mapstructure:"window"`
}

type ObserverConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	RefreshOnEvent  bool          `mapstructure:"refresh_on_event"`
	EventTimestamps bool          `mapstructure:"event_timestamps"`
	Source          string        `mapstructure:"source"`
}

type DisplayConfig struct {
	Unit string `mapstructure:"unit"`
}

type ReceiverConfig struct {
	Address string `mapstructure:"address"`
}

type HTTPConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}
