package display

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const gaugeName = "typingrate_events_per_minute"

type GaugeDisplay struct {
	gauge prometheus.Gauge
}

// NewGaugeDisplay registers the rate gauge on reg.
func NewGaugeDisplay(reg prometheus.Registerer) (*GaugeDisplay, error) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: gaugeName,
		Help: "Activity events per minute over the sliding window.",
	})

	if err := reg.Register(gauge); err != nil {
		return nil, fmt.Errorf("register %s: %w", gaugeName, err)
	}

	return &GaugeDisplay{gauge: gauge}, nil
}

func (g *GaugeDisplay) Render(rate int64) error {
	g.gauge.Set(float64(rate))
	return nil
}
