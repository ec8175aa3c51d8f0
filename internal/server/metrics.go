package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtrans_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subtrans_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Translation Metrics
	TranslationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtrans_translations_total",
			Help: "Total number of document translations",
		},
		[]string{"status"},
	)

	TranslationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "subtrans_translation_duration_seconds",
			Help:    "Document translation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~1 hour
		},
	)

	ChunksTranslatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subtrans_chunks_translated_total",
			Help: "Total number of translated subtitle chunks",
		},
	)

	TranslationWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subtrans_translation_warnings_total",
			Help: "Total number of formatting and alignment warnings",
		},
	)
)
