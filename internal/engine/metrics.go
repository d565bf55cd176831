package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "answerd",
			Subsystem: "engine",
			Name:      "generations_total",
			Help:      "Total generations by outcome",
		},
		[]string{"status"},
	)

	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "answerd",
			Subsystem: "engine",
			Name:      "generation_duration_seconds",
			Help:      "Wall time spent inside the backend per generation",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"status"},
	)

	queueRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "answerd",
			Subsystem: "engine",
			Name:      "queue_rejections_total",
			Help:      "Generations rejected because the admission queue was full or the wait timed out",
		},
	)
)

func init() {
	prometheus.MustRegister(generationsTotal, generationDuration, queueRejectionsTotal)
}
