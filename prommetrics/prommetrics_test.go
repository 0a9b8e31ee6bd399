package prommetrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/soa"
	"github.com/hupe1980/soa/testutil"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func counterValue(mf *dto.MetricFamily, status string) float64 {
	for _, m := range mf.GetMetric() {
		if status == "" {
			return m.GetCounter().GetValue()
		}
		for _, l := range m.GetLabel() {
			if l.GetName() == "status" && l.GetValue() == status {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	mc, err := New(reg)
	require.NoError(t, err)

	c, err := soa.FromRecords(context.Background(), testutil.DemoBatch(),
		soa.WithAlignment(64),
		soa.WithMetricsCollector(mc),
	)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.At(3)
	require.Error(t, err)

	_, err = soa.FromRecords(context.Background(), testutil.DemoBatch(),
		soa.WithAlignment(3),
		soa.WithMetricsCollector(mc),
	)
	require.Error(t, err)

	mfs := gather(t, reg)
	assert.Equal(t, 1.0, counterValue(mfs["soa_builds_total"], "success"))
	assert.Equal(t, 1.0, counterValue(mfs["soa_builds_total"], "error"))
	assert.Equal(t, 3.0, counterValue(mfs["soa_records_built_total"], ""))
	assert.Equal(t, 192.0, counterValue(mfs["soa_storage_bytes_allocated_total"], ""))
	assert.Equal(t, 1.0, counterValue(mfs["soa_out_of_range_accesses_total"], ""))
	assert.Equal(t, 192.0, mfs["soa_last_build_storage_bytes"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, uint64(1), mfs["soa_build_duration_seconds"].GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustNew(reg)

	_, err := New(reg)
	assert.Error(t, err)
	assert.Panics(t, func() { MustNew(reg) })
}
