// Package prommetrics exports container metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc, _ := prommetrics.New(reg)
//	c, _ := soa.New(ctx, schema, records, soa.WithMetricsCollector(mc))
package prommetrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/soa"
)

const namespace = "soa"

// Collector implements soa.MetricsCollector with Prometheus metrics.
type Collector struct {
	builds        *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	records       prometheus.Counter
	bytes         prometheus.Counter
	lastBytes     prometheus.Gauge
	outOfRange    prometheus.Counter
}

var _ soa.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Container builds by status.",
		}, []string{"status"}),
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Container build latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_built_total",
			Help:      "Records transposed by successful builds.",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_bytes_allocated_total",
			Help:      "Storage bytes allocated by successful builds.",
		}),
		lastBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_build_storage_bytes",
			Help:      "Storage size of the most recent successful build.",
		}),
		outOfRange: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "out_of_range_accesses_total",
			Help:      "Checked accesses rejected with an out-of-range index.",
		}),
	}

	var errs []error
	for _, m := range []prometheus.Collector{c.builds, c.buildDuration, c.records, c.bytes, c.lastBytes, c.outOfRange} {
		errs = append(errs, reg.Register(m))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(reg prometheus.Registerer) *Collector {
	c, err := New(reg)
	if err != nil {
		panic(err)
	}
	return c
}

// RecordBuild implements soa.MetricsCollector.
func (c *Collector) RecordBuild(records, bytes int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.builds.WithLabelValues(status).Inc()
	c.buildDuration.WithLabelValues(status).Observe(d.Seconds())
	if err != nil {
		return
	}
	c.records.Add(float64(records))
	c.bytes.Add(float64(bytes))
	c.lastBytes.Set(float64(bytes))
}

// RecordOutOfRange implements soa.MetricsCollector.
func (c *Collector) RecordOutOfRange() {
	c.outOfRange.Inc()
}
