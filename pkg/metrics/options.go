package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace overrides the "parley" namespace. Empty keeps the default.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem overrides the "scoring" subsystem used by report, range and
// store metrics. System gauges always use "system".
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets the buckets shared by the latency histograms.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithMetricsEnabled turns the package-level recorders into no-ops when false.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) { m.enabled = enabled }
}

// WithCustomLabels attaches constant labels (deployment, region) to every series.
func WithCustomLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if labels != nil {
			m.customLabels = labels
		}
	}
}

// WithMetricPrefix prepends prefix_ to every metric name.
func WithMetricPrefix(prefix string) Option {
	return func(m *Manager) {
		if prefix != "" {
			m.metricPrefix = prefix
		}
	}
}

// WithPrometheusRegistry registers the collectors on registry instead of the
// default registerer.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
