package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AgentQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoscan_agent_queries_total",
			Help: "Total number of simulated search-agent queries executed",
		},
		[]string{"outcome"},
	)

	AgentQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geoscan_agent_query_duration_seconds",
			Help:    "Duration of individual agent queries in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	QuestionGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoscan_question_generations_total",
			Help: "Total number of question generation calls",
		},
		[]string{"outcome"},
	)

	OptimizationIterationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geoscan_optimization_iterations_total",
			Help: "Total number of optimization iterations run",
		},
	)

	PageInspectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoscan_page_inspections_total",
			Help: "Total number of competitor page inspections",
		},
		[]string{"mode", "outcome"},
	)
)

// RecordAgentQuery updates the per-query counters given the outcome of
// one agent call.
func RecordAgentQuery(duration time.Duration, failed bool) {
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	AgentQueriesTotal.WithLabelValues(outcome).Inc()
	AgentQueryDuration.Observe(duration.Seconds())
}

// Server encapsulates the HTTP server exposing Prometheus metrics on a
// side port.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
