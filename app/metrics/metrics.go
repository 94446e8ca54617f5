// Package metrics exposes prometheus collectors for the bot.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sambhram1/tele-bot/core/logger"
	"log/slog"
)

var (
	// OperationCounter counts image operations by name and status.
	OperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_image_operations_total",
			Help: "Count of processed image operations",
		},
		[]string{"op", "status"},
	)
	// OperationDuration observes how long each image operation takes.
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_image_operation_duration_seconds",
			Help:    "Time taken to apply an image operation",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"op"},
	)
	// Downloads counts inbound image downloads by status.
	Downloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_image_downloads_total",
			Help: "Count of inbound image downloads",
		},
		[]string{"status"},
	)
	// ActiveSessions tracks the number of live editing sessions.
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_active_sessions",
			Help: "Current number of editing sessions",
		},
	)
	// SweptArtifacts counts stale artifacts removed by the sweeper.
	SweptArtifacts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_swept_artifacts_total",
			Help: "Count of stale artifacts removed by the periodic sweep",
		},
	)
)

// Init registers all collectors with the default registry.
func Init() {
	prometheus.MustRegister(
		OperationCounter,
		OperationDuration,
		Downloads,
		ActiveSessions,
		SweptArtifacts,
	)
}

// ObserveOperation records one finished operation.
func ObserveOperation(op string, err error, took time.Duration) {
	status := "ok"
	if err != nil {
		status = "fail"
	}
	OperationCounter.WithLabelValues(op, status).Inc()
	OperationDuration.WithLabelValues(op).Observe(took.Seconds())
}

// Serve exposes /metrics on addr until the server is shut down. The returned
// function performs graceful shutdown.
func Serve(addr string) func() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(logger.Background(), "metrics", "listen.failed",
				slog.String("listen", addr),
				slog.String("err", err.Error()),
			)
		}
	}()
	logger.Info(logger.Background(), "metrics", "listen",
		slog.String("listen", addr),
	)

	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
