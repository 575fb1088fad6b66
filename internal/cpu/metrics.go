package cpu

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	resolveHits     prometheus.Counter
	resolveMisses   prometheus.Counter
	declareFailures prometheus.Counter
	defineFailures  prometheus.Counter
	defined         prometheus.Counter
	executeFailures prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		resolveHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vortex",
			Subsystem: "cpu",
			Name:      "resolve_hits_total",
			Help:      "Resolutions satisfied from the entry table.",
		}),
		resolveMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vortex",
			Subsystem: "cpu",
			Name:      "resolve_misses_total",
			Help:      "Resolutions that claimed a new entry.",
		}),
		declareFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vortex",
			Subsystem: "cpu",
			Name:      "declare_failures_total",
			Help:      "Frontend declare failures.",
		}),
		defineFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vortex",
			Subsystem: "cpu",
			Name:      "define_failures_total",
			Help:      "Frontend define failures.",
		}),
		defined: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vortex",
			Subsystem: "cpu",
			Name:      "functions_defined_total",
			Help:      "Functions successfully compiled.",
		}),
		executeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vortex",
			Subsystem: "cpu",
			Name:      "execute_failures_total",
			Help:      "Execute calls that failed to resolve a target.",
		}),
	}
}
