package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tbessen/geoscan/internal/llm"
	"github.com/tbessen/geoscan/internal/metrics"
)

// Config tunes the per-question agent prompt. Temperature and reply
// length are owned by the llm client configuration, not settable here.
type Config struct {
	// MinRecommendations..MaxRecommendations is the company count the
	// agent is asked for per question. Defaults to 3..5.
	MinRecommendations int
	MaxRecommendations int
}

// Orchestrator fans a batch of questions out to independent simulated
// search agents, one LLM call per question.
type Orchestrator struct {
	chat   llm.Chat
	cfg    Config
	logger *slog.Logger
}

// NewOrchestrator wires an orchestrator over the given chat transport.
func NewOrchestrator(chat llm.Chat, cfg Config, logger *slog.Logger) *Orchestrator {
	if cfg.MinRecommendations <= 0 {
		cfg.MinRecommendations = 3
	}
	if cfg.MaxRecommendations < cfg.MinRecommendations {
		cfg.MaxRecommendations = cfg.MinRecommendations + 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{chat: chat, cfg: cfg, logger: logger}
}

// QueryAll dispatches one agent query per question concurrently and
// blocks until every one has settled. The returned slice always has the
// same length and order as the input; a failed query yields a Response
// with Err set and no recommendations. The batch itself never fails.
func (o *Orchestrator) QueryAll(ctx context.Context, questions []Question) []Response {
	results := make([]Response, len(questions))

	// Each goroutine writes only its own slot, so no locking is needed.
	// Errors are captured inside queryOne; the group never sees one and
	// therefore never cancels sibling queries.
	var g errgroup.Group
	for i, q := range questions {
		g.Go(func() error {
			results[i] = o.queryOne(ctx, q)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

type recommendationList struct {
	Recommendations []Recommendation `json:"recommendations"`
}

func (o *Orchestrator) queryOne(ctx context.Context, question Question) Response {
	start := time.Now()

	content, err := o.chat.Complete(ctx, o.systemPrompt(), o.userPrompt(question))
	if err != nil {
		metrics.RecordAgentQuery(time.Since(start), true)
		o.logger.Warn("agent query failed", "question", question, "err", err)
		return Response{Question: question, Recommendations: []Recommendation{}, Err: err.Error()}
	}

	var parsed recommendationList
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		metrics.RecordAgentQuery(time.Since(start), true)
		o.logger.Warn("agent reply not parseable", "question", question, "err", err)
		return Response{
			Question:        question,
			Recommendations: []Recommendation{},
			Err:             fmt.Sprintf("parse agent reply: %v", err),
		}
	}

	metrics.RecordAgentQuery(time.Since(start), false)

	recs := parsed.Recommendations
	if recs == nil {
		recs = []Recommendation{}
	}
	return Response{Question: question, Recommendations: recs}
}

func (o *Orchestrator) systemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert business analyst specializing in company research and recommendations. Your task is to provide a list of %d-%d companies that best match the user's search query.

IMPORTANT RULES:
1. Focus on companies that are relevant to the search query
2. Provide diverse recommendations across different company sizes and types
3. Include both well-known and emerging companies

Response Format (JSON):
{
  "recommendations": [
    {
      "companyName": "Company Name",
      "domain": "company.com"
    }
  ]
}`, o.cfg.MinRecommendations, o.cfg.MaxRecommendations)
	return b.String()
}

func (o *Orchestrator) userPrompt(question Question) string {
	return fmt.Sprintf("Search Query: %q\n\nPlease provide %d-%d company recommendations that best match this search query.",
		question, o.cfg.MinRecommendations, o.cfg.MaxRecommendations)
}
