// Package metrics exposes sampling-run metrics through a Prometheus registry.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the sampling metrics. A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	ChartsComputed    prometheus.Counter
	ChartDuration     prometheus.Histogram
	PositionsRecorded *prometheus.CounterVec
	PositionFailures  *prometheus.CounterVec
	InstantsPlanned   prometheus.Gauge
}

// NewCollector registers the sampling metrics on reg, or on a fresh registry when reg is nil.
func NewCollector(reg *prometheus.Registry) (*Collector, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Collector{registry: reg}

	var err error
	c.ChartsComputed, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "astromaps_charts_total",
		Help: "Number of charts computed by sampling runs.",
	}))
	if err != nil {
		return nil, err
	}

	c.ChartDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "astromaps_chart_duration_seconds",
		Help:    "Time spent placing every body of one chart.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}))
	if err != nil {
		return nil, err
	}

	c.PositionsRecorded, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "astromaps_positions_recorded_total",
		Help: "Longitudes written to the position history, by body.",
	}, []string{"body"}))
	if err != nil {
		return nil, err
	}

	c.PositionFailures, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "astromaps_position_failures_total",
		Help: "Bodies that could not be placed, by body.",
	}, []string{"body"}))
	if err != nil {
		return nil, err
	}

	c.InstantsPlanned, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "astromaps_instants_planned",
		Help: "Number of instants in the current sampling run.",
	}))
	if err != nil {
		return nil, err
	}

	return c, nil
}

// register adds col to reg, reusing an identical collector registered earlier.
func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return col, err
		}
		existing, ok := are.ExistingCollector.(T)
		if !ok {
			return col, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		return existing, nil
	}
	return col, nil
}

// Gatherer returns the registry backing the collector.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveChart records one computed chart.
func (c *Collector) ObserveChart(d time.Duration) {
	if c == nil {
		return
	}
	c.ChartsComputed.Inc()
	c.ChartDuration.Observe(d.Seconds())
}

// IncRecorded counts a longitude written for body.
func (c *Collector) IncRecorded(body string) {
	if c == nil {
		return
	}
	c.PositionsRecorded.WithLabelValues(body).Inc()
}

// IncFailure counts a failed placement of body.
func (c *Collector) IncFailure(body string) {
	if c == nil {
		return
	}
	c.PositionFailures.WithLabelValues(body).Inc()
}

// SetInstants sets the planned instant count.
func (c *Collector) SetInstants(n int) {
	if c == nil {
		return
	}
	c.InstantsPlanned.Set(float64(n))
}

// WriteTextfile writes the current metrics in the node-exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
