// Package server exposes the analysis pipeline over HTTP: company
// analysis, question optimization and domain comparison, plus the
// embedded single-page UI that drives them.
package server

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/tbessen/geoscan/internal/agents"
	"github.com/tbessen/geoscan/internal/brandfetch"
	"github.com/tbessen/geoscan/internal/compare"
	"github.com/tbessen/geoscan/internal/inspect"
	"github.com/tbessen/geoscan/internal/optimize"
	"github.com/tbessen/geoscan/internal/questions"
)

//go:embed static
var staticFiles embed.FS

// BrandSource fetches company metadata. Satisfied by
// *brandfetch.Client.
type BrandSource interface {
	Brand(ctx context.Context, domain string) (*brandfetch.Brand, error)
}

// QuestionSource generates the initial and optimized question batches.
// Satisfied by *questions.Generator.
type QuestionSource interface {
	Generate(ctx context.Context, brand *brandfetch.Brand, locale string) ([]agents.Question, error)
	GenerateOptimized(ctx context.Context, oc questions.OptimizeContext) ([]agents.Question, error)
}

// AgentQuerier fans questions out to the agents. Satisfied by
// *agents.Orchestrator.
type AgentQuerier interface {
	QueryAll(ctx context.Context, qs []agents.Question) []agents.Response
}

// DomainComparer produces the LLM comparison. Satisfied by
// *compare.Comparer.
type DomainComparer interface {
	Compare(ctx context.Context, analyzed inspect.Report, competitors []inspect.Report) (compare.Result, error)
}

// Config tunes the HTTP listener and request defaults.
type Config struct {
	Port          int
	DefaultLocale string
	// MaxIterations is handed to each optimization session's
	// controller.
	MaxIterations int
}

// Server owns the HTTP listener and the in-memory optimization
// sessions.
type Server struct {
	cfg       Config
	brands    BrandSource
	gen       QuestionSource
	agents    AgentQuerier
	inspector inspect.Inspector
	comparer  DomainComparer
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*optimize.Controller
	// Last analyze-company run, kept for the operator report endpoint.
	lastTarget    string
	lastResponses []agents.Response

	httpServer *http.Server
}

// New wires the server. All collaborators are required except the
// inspector and comparer, which may be nil when domain comparison is
// not configured.
func New(cfg Config, brands BrandSource, gen QuestionSource, querier AgentQuerier, inspector inspect.Inspector, comparer DomainComparer, logger *slog.Logger) *Server {
	if cfg.Port == 0 {
		cfg.Port = 3001
	}
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = questions.LocaleInternational
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:       cfg,
		brands:    brands,
		gen:       gen,
		agents:    querier,
		inspector: inspector,
		comparer:  comparer,
		logger:    logger.With("component", "server"),
		sessions:  make(map[string]*optimize.Controller),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/analyze-company", s.handleAnalyzeCompany)
	mux.HandleFunc("POST /api/question-optimization/optimize", s.handleOptimize)
	mux.HandleFunc("POST /api/domain-comparison/analyze", s.handleDomainComparison)
	mux.HandleFunc("GET /api/report", s.handleReport)

	static, err := fs.Sub(staticFiles, "static")
	if err == nil {
		mux.Handle("GET /", http.FileServerFS(static))
	}

	return mux
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("http server starting", "port", s.cfg.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("http server stopping")
	return s.httpServer.Shutdown(ctx)
}
