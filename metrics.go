package flystore

import "github.com/hupe1980/flystore/metrics"

// MetricsCollector receives growth, allocation and operator events from
// every object a Store creates. metrics.NewPrometheusCollector returns a
// Prometheus-backed implementation.
type MetricsCollector = metrics.Collector

// NoopMetricsCollector discards all events.
type NoopMetricsCollector = metrics.Noop

// BasicMetricsCollector counts events in memory with atomics.
type BasicMetricsCollector = metrics.BasicCollector

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats = metrics.BasicStats
