package soa

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	b := &BasicMetricsCollector{}

	b.RecordBuild(10, 640, 2*time.Millisecond, nil)
	b.RecordBuild(5, 0, 4*time.Millisecond, errors.New("fail"))
	b.RecordOutOfRange()

	stats := b.GetStats()
	assert.Equal(t, int64(2), stats.BuildCount)
	assert.Equal(t, int64(1), stats.BuildErrors)
	assert.Equal(t, int64(10), stats.RecordsBuilt)
	assert.Equal(t, int64(640), stats.BytesAllocated)
	assert.Equal(t, int64(1), stats.OutOfRange)
	assert.Equal(t, (3 * time.Millisecond).Nanoseconds(), stats.BuildAvgNanos)
}

func TestEmptyMetrics(t *testing.T) {
	b := &BasicMetricsCollector{}
	assert.Zero(t, b.GetStats().BuildAvgNanos)

	var noop MetricsCollector = NoopMetricsCollector{}
	noop.RecordBuild(1, 1, time.Second, nil)
	noop.RecordOutOfRange()
}
