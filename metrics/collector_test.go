package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicCollector(t *testing.T) {
	c := &BasicCollector{}

	c.RecordGrowth("records", 64, 128, false)
	c.RecordGrowth("records", 128, 256, true)
	c.RecordAlloc("heap", 64)
	c.RecordRelease("heap", 64)
	c.RecordTask("query", 10, 4, 2*time.Millisecond, nil)
	c.RecordTask("sort", 6, 2, 4*time.Millisecond, errors.New("boom"))

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.GrowthCount)
	assert.Equal(t, int64(1), stats.GrowthOverHint)
	assert.Equal(t, int64(192), stats.GrowthBytes)
	assert.Equal(t, int64(64), stats.AllocBytes)
	assert.Equal(t, int64(64), stats.ReleaseBytes)
	assert.Equal(t, int64(2), stats.TaskCount)
	assert.Equal(t, int64(1), stats.TaskErrors)
	assert.Equal(t, int64(16), stats.TaskLeaves)
	assert.Equal(t, int64(6), stats.TaskForked)
	assert.Equal(t, (3 * time.Millisecond).Nanoseconds(), stats.TaskAvgNanos)
}

func TestOrNoop(t *testing.T) {
	assert.Equal(t, Noop{}, OrNoop(nil))

	c := &BasicCollector{}
	assert.Same(t, c, OrNoop(c))
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	p := NewPrometheusCollector("flystore", reg)

	p.RecordGrowth("records", 64, 192, true)
	p.RecordAlloc("native", 4096)
	p.RecordRelease("native", 1024)
	p.RecordTask("update", 8, 3, time.Millisecond, nil)

	assert.InDelta(t, 1, testutil.ToFloat64(p.growths.WithLabelValues("true")), 0)
	assert.InDelta(t, 128, testutil.ToFloat64(p.growthBytes), 0)
	assert.InDelta(t, 3072, testutil.ToFloat64(p.liveBytes.WithLabelValues("native")), 0)
	assert.InDelta(t, 8, testutil.ToFloat64(p.taskLeaves.WithLabelValues("update")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(p.taskForked.WithLabelValues("update")), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	latency := findFamily(families, "flystore_parallel_op_duration_seconds")
	require.NotNil(t, latency)
	require.Len(t, latency.GetMetric(), 1)
	m := latency.GetMetric()[0]
	assert.Equal(t, uint64(1), m.GetHistogram().GetSampleCount())
	assert.Equal(t, map[string]string{"op": "update", "status": "ok"}, labels(m))
}

func findFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func labels(m *dto.Metric) map[string]string {
	out := make(map[string]string)
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}
