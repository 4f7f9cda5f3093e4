package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector exports storage events as Prometheus metrics.
type PrometheusCollector struct {
	growths      *prometheus.CounterVec
	growthBytes  prometheus.Counter
	allocBytes   *prometheus.CounterVec
	releaseBytes *prometheus.CounterVec
	liveBytes    *prometheus.GaugeVec
	taskLatency  *prometheus.HistogramVec
	taskLeaves   *prometheus.CounterVec
	taskForked   *prometheus.CounterVec
}

// NewPrometheusCollector creates a collector and registers it with reg.
// A nil reg registers nothing, which is useful in tests.
func NewPrometheusCollector(namespace string, reg prometheus.Registerer) *PrometheusCollector {
	p := &PrometheusCollector{
		growths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buffer_growths_total",
			Help:      "Buffer growth events, partitioned by whether the expected maximum size was exceeded.",
		}, []string{"exceeded_hint"}),
		growthBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buffer_growth_bytes_total",
			Help:      "Bytes added by buffer growth.",
		}),
		allocBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alloc_bytes_total",
			Help:      "Bytes acquired by backing stores.",
		}, []string{"kind"}),
		releaseBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "release_bytes_total",
			Help:      "Bytes returned by backing stores.",
		}, []string{"kind"}),
		liveBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_bytes",
			Help:      "Bytes currently held by backing stores.",
		}, []string{"kind"}),
		taskLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parallel_op_duration_seconds",
			Help:      "Latency of parallel update, query and sort operators.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		taskLeaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parallel_leaves_total",
			Help:      "Leaf partitions executed by parallel operators.",
		}, []string{"op"}),
		taskForked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parallel_forked_total",
			Help:      "Partitions executed on a forked goroutine.",
		}, []string{"op"}),
	}

	if reg != nil {
		reg.MustRegister(p.Collectors()...)
	}
	return p
}

// Collectors returns the underlying Prometheus collectors.
func (p *PrometheusCollector) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		p.growths, p.growthBytes, p.allocBytes, p.releaseBytes,
		p.liveBytes, p.taskLatency, p.taskLeaves, p.taskForked,
	}
}

// RecordGrowth implements Collector.
func (p *PrometheusCollector) RecordGrowth(_ string, oldSize, newSize int64, exceededHint bool) {
	label := "false"
	if exceededHint {
		label = "true"
	}
	p.growths.WithLabelValues(label).Inc()
	if newSize > oldSize {
		p.growthBytes.Add(float64(newSize - oldSize))
	}
}

// RecordAlloc implements Collector.
func (p *PrometheusCollector) RecordAlloc(kind string, bytes int64) {
	p.allocBytes.WithLabelValues(kind).Add(float64(bytes))
	p.liveBytes.WithLabelValues(kind).Add(float64(bytes))
}

// RecordRelease implements Collector.
func (p *PrometheusCollector) RecordRelease(kind string, bytes int64) {
	p.releaseBytes.WithLabelValues(kind).Add(float64(bytes))
	p.liveBytes.WithLabelValues(kind).Sub(float64(bytes))
}

// RecordTask implements Collector.
func (p *PrometheusCollector) RecordTask(op string, leaves, forked int64, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.taskLatency.WithLabelValues(op, status).Observe(duration.Seconds())
	p.taskLeaves.WithLabelValues(op).Add(float64(leaves))
	p.taskForked.WithLabelValues(op).Add(float64(forked))
}
