package persist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lize",
		Subsystem: "persist",
		Name:      "jobs_total",
		Help:      "Persistence jobs completed, by operation.",
	}, []string{"op"})

	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lize",
		Subsystem: "persist",
		Name:      "failures_total",
		Help:      "Persistence jobs that failed for good, by operation.",
	}, []string{"op"})
)
