package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyteller_ai_requests_total",
			Help: "Total number of requests to the AI API.",
		},
		[]string{"model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyteller_ai_request_duration_seconds",
			Help:    "Histogram of AI API request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyteller_generations_total",
			Help: "Total number of story generation requests, partitioned by outcome.",
		},
		[]string{"status"},
	)
	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storyteller_generation_duration_seconds",
			Help:    "Histogram of end-to-end story generation durations.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s .. ~4m
		},
	)
	ttsDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storyteller_tts_duration_seconds",
			Help:    "Histogram of speech synthesis durations.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)
	ttsFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storyteller_tts_failures_total",
			Help: "Total number of failed speech synthesis invocations.",
		},
	)
)
