package soa

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// prommetrics package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordBuild is called after each build.
	// records is the batch size, bytes the storage size (0 on failure),
	// err is nil if successful.
	RecordBuild(records, bytes int, duration time.Duration, err error)

	// RecordOutOfRange is called when a checked access is rejected.
	RecordOutOfRange()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordOutOfRange()                          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and tests without external dependencies.
type BasicMetricsCollector struct {
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildTotalNanos atomic.Int64
	RecordsBuilt    atomic.Int64
	BytesAllocated  atomic.Int64
	OutOfRange      atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(records, bytes int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.RecordsBuilt.Add(int64(records))
	b.BytesAllocated.Add(int64(bytes))
}

// RecordOutOfRange implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOutOfRange() {
	b.OutOfRange.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:     b.BuildCount.Load(),
		BuildErrors:    b.BuildErrors.Load(),
		BuildAvgNanos:  b.getAvgBuildNanos(),
		RecordsBuilt:   b.RecordsBuilt.Load(),
		BytesAllocated: b.BytesAllocated.Load(),
		OutOfRange:     b.OutOfRange.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgBuildNanos() int64 {
	count := b.BuildCount.Load()
	if count == 0 {
		return 0
	}
	return b.BuildTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount     int64
	BuildErrors    int64
	BuildAvgNanos  int64
	RecordsBuilt   int64
	BytesAllocated int64
	OutOfRange     int64
}
