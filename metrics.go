package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// metrics owns a private registry so tests can build many handlers without
// duplicate-registration panics.
type metrics struct {
	registry     *prometheus.Registry
	calculations *prometheus.CounterVec
	validations  *prometheus.CounterVec
	floorApplied prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kbju",
			Name:      "calculations_total",
			Help:      "KBJU calculations by outcome (ok or the error kind).",
		}, []string{"outcome"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kbju",
			Name:      "validations_total",
			Help:      "Consistency validations by result status.",
		}, []string{"status"}),
		floorApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kbju",
			Name:      "calorie_floor_applied_total",
			Help:      "Calculations whose target was raised to the safe minimum.",
		}),
	}
	m.registry.MustRegister(
		m.calculations, m.validations, m.floorApplied,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
