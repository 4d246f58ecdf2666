package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pako-23/typing-rate/internal/config"
)

var flagKeys = map[string]string{
	"capacity":         "estimator.capacity",
	"window":           "estimator.window",
	"poll-interval":    "observer.poll_interval",
	"refresh-on-event": "observer.refresh_on_event",
	"event-timestamps": "observer.event_timestamps",
	"source":           "observer.source",
	"unit":             "display.unit",
	"otlp-address":     "receiver.address",
	"http-address":     "http.address",
	"log-level":        "logging.level",
}

func newRootCommand() *cobra.Command {
	v := config.New()
	var cfgFile string

	root := &cobra.Command{
		Use:           "typingrate",
		Short:         "Report the rate of editor activity events per minute",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				return nil
			}

			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")

	flags := root.Flags()
	flags.Int("capacity", 0, "maximum number of retained samples, negative for no cap")
	flags.Duration("window", 0, "sliding window duration")
	flags.Duration("poll-interval", 0, "status refresh cadence, 0 to refresh on events only")
	flags.Bool("refresh-on-event", false, "refresh the status after every recorded event")
	flags.Bool("event-timestamps", false, "use the timestamps carried by events instead of the receive time")
	flags.String("source", "", "only count events whose service.name matches")
	flags.String("unit", "", "unit appended to the rendered rate")
	flags.String("otlp-address", "", "OTLP gRPC listen address")
	flags.String("http-address", "", "HTTP listen address for the status text and metrics")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	for name, key := range flagKeys {
		// BindPFlag only fails for a nil flag.
		_ = v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(newVersionCommand())

	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
