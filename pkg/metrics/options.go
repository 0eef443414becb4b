package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager.
type Option func(*Manager)

// WithPrefix replaces the folio_site_ prefix of every metric name. Empty
// parts keep their default.
func WithPrefix(namespace, subsystem string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithLatencyBuckets sets the millisecond buckets of every latency
// histogram. Unsorted or duplicate bounds are ignored.
func WithLatencyBuckets(bounds ...float64) Option {
	return func(m *Manager) {
		if len(bounds) == 0 || !sort.Float64sAreSorted(bounds) {
			return
		}
		for i := 1; i < len(bounds); i++ {
			if bounds[i] == bounds[i-1] {
				return
			}
		}
		m.histogramBuckets = append([]float64(nil), bounds...)
	}
}

// WithConstLabel adds a label carried by every series, e.g. the deploy
// environment.
func WithConstLabel(name, value string) Option {
	return func(m *Manager) {
		if name == "" {
			return
		}
		if m.constLabels == nil {
			m.constLabels = map[string]string{}
		}
		m.constLabels[name] = value
	}
}

// WithRegisterer registers the collectors on r instead of the default
// registerer.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}
