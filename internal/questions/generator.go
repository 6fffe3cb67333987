// Package questions generates the simulated search questions that
// drive the agent fan-out, both the initial batch and the optimization
// variants.
package questions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tbessen/geoscan/internal/agents"
	"github.com/tbessen/geoscan/internal/brandfetch"
	"github.com/tbessen/geoscan/internal/llm"
	"github.com/tbessen/geoscan/internal/metrics"
)

// LocaleInternational is the neutral locale: no market qualifier is
// added to the prompt. Any other locale string is passed through as a
// market focus; the set is open.
const LocaleInternational = "international"

// Generator produces search questions via single LLM calls.
type Generator struct {
	chat   llm.Chat
	logger *slog.Logger
}

// NewGenerator wires a generator over the given chat transport.
func NewGenerator(chat llm.Chat, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{chat: chat, logger: logger}
}

const generateSystemPrompt = `You are an expert in search engine optimization and competitive analysis. Your task is to generate 10-15 search questions that users might ask when looking for services similar to the provided company, WITHOUT mentioning the company name directly.

The questions should be:
- Natural and conversational
- Focused on the company's industry and services
- Generic enough to not directly mention the company
- Varied in intent (informational, transactional, navigational)
- Optimized for search engines

For example, if the company is a car marketplace like AutoScout24, generate questions like:
- "best car buying app"
- "where to find used cars online"
- "car listings website"
- "how to sell my car online"
- "car marketplace Germany"

Return ONLY a JSON array of strings, no additional text or explanation.`

// Generate asks the LLM for a batch of search questions for the given
// company profile. The company name must never appear in the questions;
// the point is to discover who else the model recommends. Locale only
// shapes the prompt, never the parsing.
func (g *Generator) Generate(ctx context.Context, brand *brandfetch.Brand, locale string) ([]agents.Question, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate search questions for this company:\n\n")
	fmt.Fprintf(&b, "Company Name: %s\n", brand.Name)
	fmt.Fprintf(&b, "Domain: %s\n", brand.Domain)
	fmt.Fprintf(&b, "Description: %s\n", brand.Description)
	fmt.Fprintf(&b, "Industries: %s\n\n", strings.Join(brand.IndustryNames(), ", "))
	fmt.Fprintf(&b, "Generate 10-15 search questions that users might ask when looking for similar services.")
	if qualifier := localeQualifier(locale); qualifier != "" {
		fmt.Fprintf(&b, "\n\n%s", qualifier)
	}

	content, err := g.chat.Complete(ctx, generateSystemPrompt, b.String())
	if err != nil {
		metrics.QuestionGenerationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	qs, err := decodeQuestions(content)
	if err != nil {
		metrics.QuestionGenerationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.QuestionGenerationsTotal.WithLabelValues("ok").Inc()
	g.logger.Info("generated search questions", "count", len(qs), "locale", locale)
	return qs, nil
}

// OptimizeContext carries everything the optimized-question prompt
// needs: what was asked before and how the previous round scored.
type OptimizeContext struct {
	TargetDomain      string
	OriginalQuestions []agents.Question
	UsedQuestions     []agents.Question
	// Previous-round aggregate stats; HasPrevious is false on the
	// first pass when no baseline exists.
	HasPrevious        bool
	PrevTotalMentions  int
	PrevTargetMentions int
	Iteration          int
}

const optimizeSystemPrompt = "You are an expert in search optimization. Generate optimized search questions in JSON format."

// GenerateOptimized asks for question variations aimed at increasing
// the target domain's visibility, avoiding already-used questions.
func (g *Generator) GenerateOptimized(ctx context.Context, oc OptimizeContext) ([]agents.Question, error) {
	content, err := g.chat.Complete(ctx, optimizeSystemPrompt, optimizePrompt(oc))
	if err != nil {
		metrics.QuestionGenerationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("generate optimized questions: %w", err)
	}

	qs, err := decodeQuestions(content)
	if err != nil {
		metrics.QuestionGenerationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.QuestionGenerationsTotal.WithLabelValues("ok").Inc()
	g.logger.Info("generated optimized questions", "count", len(qs), "iteration", oc.Iteration)
	return qs, nil
}

func optimizePrompt(oc OptimizeContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert in search optimization and question generation. Your task is to generate 10 new search questions that are variations of the original questions, but optimized to increase visibility for the target domain: %s

Original Questions:
%s

Already Used Questions (avoid these):
%s

Current Results Analysis:
%s

Iteration: %d

Instructions:
1. Generate 10 NEW questions that are variations of the original questions
2. Focus on questions that would likely mention %s or similar services
3. Avoid any questions already in the "used questions" list
4. If iteration > 1 and we got more hits, focus on the context that worked
5. If iteration > 1 and we got fewer hits, try different approaches
6. Make questions natural and conversational
7. Vary the intent (informational, transactional, navigational)

Return ONLY a JSON array of strings, no additional text or explanation.`,
		oc.TargetDomain,
		numberedList(oc.OriginalQuestions),
		numberedList(oc.UsedQuestions),
		formatResults(oc),
		oc.Iteration,
		oc.TargetDomain)
	return b.String()
}

func numberedList(items []agents.Question) string {
	if len(items) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatResults(oc OptimizeContext) string {
	if !oc.HasPrevious {
		return "No previous results available."
	}
	hitRate := 0.0
	if oc.PrevTotalMentions > 0 {
		hitRate = float64(oc.PrevTargetMentions) / float64(oc.PrevTotalMentions) * 100
	}
	return fmt.Sprintf("Total mentions across all questions: %d\nTarget domain mentions: %d\nHit rate: %.1f%%",
		oc.PrevTotalMentions, oc.PrevTargetMentions, hitRate)
}

func localeQualifier(locale string) string {
	locale = strings.TrimSpace(strings.ToLower(locale))
	if locale == "" || locale == LocaleInternational {
		return ""
	}
	return fmt.Sprintf("Focus on the %s market: phrase the questions the way users searching in that market would.", locale)
}
