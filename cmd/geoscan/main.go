package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tbessen/geoscan/internal/agents"
	"github.com/tbessen/geoscan/internal/brandfetch"
	"github.com/tbessen/geoscan/internal/compare"
	"github.com/tbessen/geoscan/internal/config"
	"github.com/tbessen/geoscan/internal/inspect"
	"github.com/tbessen/geoscan/internal/llm"
	"github.com/tbessen/geoscan/internal/metrics"
	"github.com/tbessen/geoscan/internal/questions"
	"github.com/tbessen/geoscan/internal/server"
	"github.com/tbessen/geoscan/pkg/httpclient"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if cfg.OpenAI.APIKey == "" {
		logger.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	if cfg.Brandfetch.APIKey == "" {
		logger.Error("BRANDFETCH_API_KEY is required")
		os.Exit(1)
	}

	chat := llm.NewClient(llm.Config{
		BaseURL:     cfg.OpenAI.BaseURL,
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Timeout:     cfg.OpenAI.Timeout(),
	}, logger)

	brands := brandfetch.NewClient(brandfetch.Config{
		BaseURL: cfg.Brandfetch.BaseURL,
		APIKey:  cfg.Brandfetch.APIKey,
	}, logger)

	generator := questions.NewGenerator(chat, logger)
	orchestrator := agents.NewOrchestrator(chat, agents.Config{
		MinRecommendations: cfg.Analysis.MinRecommendations,
		MaxRecommendations: cfg.Analysis.MaxRecommendations,
	}, logger)
	comparer := compare.New(chat, logger)

	var inspector inspect.Inspector
	var browserInspector *inspect.BrowserInspector
	if cfg.Browser.Enabled {
		browserInspector = inspect.NewBrowserInspector(inspect.BrowserConfig{
			DebuggerURL: cfg.Browser.ChromeURL,
		}, logger)
		inspector = browserInspector
	} else {
		inspector = inspect.NewStaticInspector(httpclient.New(httpclient.Config{
			Timeout:   30 * time.Second,
			UserAgent: "geoscan/1.0",
		}), logger)
	}

	srv := server.New(server.Config{
		Port:          cfg.Server.Port,
		DefaultLocale: cfg.Analysis.DefaultLocale,
		MaxIterations: cfg.Optimization.MaxIterations,
	}, brands, generator, orchestrator, inspector, comparer, logger)

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.Start(cfg.Metrics.Port)
		logger.Info("metrics server started", "port", cfg.Metrics.Port)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(ctx); err != nil {
			logger.Error("metrics shutdown failed", "error", err)
		}
	}
	if browserInspector != nil {
		if err := browserInspector.Close(); err != nil {
			logger.Error("browser shutdown failed", "error", err)
		}
	}
}
