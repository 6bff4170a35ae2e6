package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var (
	// Global logger instance
	Logger *zap.Logger

	// Metrics
	moderationActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_actions_total",
			Help: "Total number of moderation actions carried out",
		},
		[]string{"action"},
	)

	llmFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "llm_fallbacks_total",
			Help: "Total number of replies served from the canned pools",
		},
	)

	messageProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "message_processing_duration_seconds",
			Help:    "Time spent processing messages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

func Init(ctx context.Context, metricsAddr string) error {
	// Initialize logger
	var err error
	Logger, err = zap.NewProduction()
	if err != nil {
		return err
	}

	// Register metrics
	prometheus.MustRegister(moderationActionsTotal)
	prometheus.MustRegister(llmFallbacksTotal)
	prometheus.MustRegister(messageProcessingDuration)

	// Setup OpenTelemetry (simplified setup)
	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	// Start Prometheus metrics endpoint
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(metricsAddr, nil); err != nil {
			log.WithError(err).Error("metrics server failed")
		}
	}()

	return nil
}

// RecordModerationAction records a carried-out moderation action
func RecordModerationAction(action string) {
	moderationActionsTotal.WithLabelValues(action).Inc()
}

// RecordLLMFallback records a reply served from the canned pools
func RecordLLMFallback() {
	llmFallbacksTotal.Inc()
}

// StartMessageProcessing returns a function to record message processing duration
func StartMessageProcessing() func(status string) {
	start := prometheus.NewTimer(messageProcessingDuration.WithLabelValues("processing"))
	return func(status string) {
		start.ObserveDuration()
	}
}
