package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	SpeechQueryTime prometheus.Histogram
	SpeechErrors    *prometheus.CounterVec
	SpeechRetries   prometheus.Counter

	Conversions  *prometheus.CounterVec
	ChunksPerDoc prometheus.Histogram
}

var metrics = &Metrics{
	SpeechQueryTime: prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bookly",
		Subsystem: "speech",
		Name:      "request_seconds",
	}),
	SpeechErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookly",
		Subsystem: "speech",
		Name:      "errors_total",
	}, []string{"err_code"}),
	SpeechRetries: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bookly",
		Subsystem: "speech",
		Name:      "retries_total",
	}),
	Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookly",
		Subsystem: "convert",
		Name:      "requests_total",
	}, []string{"kind", "outcome"}),
	ChunksPerDoc: prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bookly",
		Subsystem: "convert",
		Name:      "chunks_per_document",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	}),
}

var (
	SpeechQueryTime = metrics.SpeechQueryTime
	SpeechErrors    = metrics.SpeechErrors
	SpeechRetries   = metrics.SpeechRetries
	Conversions     = metrics.Conversions
	ChunksPerDoc    = metrics.ChunksPerDoc
)

func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(metrics.SpeechQueryTime)
	reg.MustRegister(metrics.SpeechErrors)
	reg.MustRegister(metrics.SpeechRetries)
	reg.MustRegister(metrics.Conversions)
	reg.MustRegister(metrics.ChunksPerDoc)
}
