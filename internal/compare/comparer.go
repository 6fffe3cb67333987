// Package compare turns inspected page data for a domain and its
// competitors into an LLM-written SEO comparison.
package compare

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tbessen/geoscan/internal/inspect"
	"github.com/tbessen/geoscan/internal/llm"
)

// DomainAnalysis is the LLM's assessment of the analyzed domain.
type DomainAnalysis struct {
	ContentStrengths       []string `json:"contentStrengths"`
	ContentWeaknesses      []string `json:"contentWeaknesses"`
	PerformanceAnalysis    string   `json:"performanceAnalysis"`
	SEORecommendations     []string `json:"seoRecommendations"`
	ContentRecommendations []string `json:"contentRecommendations"`
}

// CompetitorAnalysis is the LLM's assessment of one competitor.
type CompetitorAnalysis struct {
	Domain         string   `json:"domain"`
	KeyDifferences []string `json:"keyDifferences"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	LessonsLearned []string `json:"lessonsLearned"`
}

// Result pairs each inspected page with its analysis.
type Result struct {
	AnalyzedDomain struct {
		inspect.Report
		Analysis DomainAnalysis `json:"analysis"`
	} `json:"analyzedDomain"`
	CompetitorAnalyses []struct {
		inspect.Report
		Analysis CompetitorAnalysis `json:"analysis"`
	} `json:"competitorAnalyses"`
	OverallInsights string `json:"overallInsights"`
}

// Comparer asks the LLM to contrast the analyzed domain's page against
// its competitors'.
type Comparer struct {
	chat   llm.Chat
	logger *slog.Logger
}

// New wires a comparer over the given chat transport.
func New(chat llm.Chat, logger *slog.Logger) *Comparer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comparer{chat: chat, logger: logger.With("component", "compare")}
}

const compareSystemPrompt = "You are an expert SEO and content analyst. Provide detailed analysis in JSON format."

// llmAnalysis mirrors the JSON shape the comparison prompt requests.
type llmAnalysis struct {
	OurDomainAnalysis  DomainAnalysis       `json:"ourDomainAnalysis"`
	CompetitorAnalyses []CompetitorAnalysis `json:"competitorAnalyses"`
	OverallInsights    string               `json:"overallInsights"`
}

// Compare builds the comparison for the analyzed domain against its
// competitors. An unparseable LLM reply degrades to a placeholder
// analysis rather than failing the whole comparison; only transport
// errors propagate.
func (c *Comparer) Compare(ctx context.Context, analyzed inspect.Report, competitors []inspect.Report) (Result, error) {
	content, err := c.chat.Complete(ctx, compareSystemPrompt, comparePrompt(analyzed, competitors))
	if err != nil {
		return Result{}, fmt.Errorf("domain comparison: %w", err)
	}

	var analysis llmAnalysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		c.logger.Warn("comparison reply unparseable, using placeholder analysis", "error", err)
		analysis = placeholderAnalysis(competitors)
	}

	var result Result
	result.AnalyzedDomain.Report = analyzed
	result.AnalyzedDomain.Analysis = analysis.OurDomainAnalysis
	result.OverallInsights = analysis.OverallInsights

	for i, comp := range competitors {
		entry := struct {
			inspect.Report
			Analysis CompetitorAnalysis `json:"analysis"`
		}{Report: comp}
		if i < len(analysis.CompetitorAnalyses) {
			entry.Analysis = analysis.CompetitorAnalyses[i]
		} else {
			entry.Analysis = CompetitorAnalysis{Domain: comp.Domain}
		}
		result.CompetitorAnalyses = append(result.CompetitorAnalyses, entry)
	}

	c.logger.Info("domain comparison finished",
		"domain", analyzed.Domain,
		"competitors", len(competitors))
	return result, nil
}

func comparePrompt(analyzed inspect.Report, competitors []inspect.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert SEO and content analyst. Analyze the following domain data and provide detailed insights.

Our Domain: %s
Title: %s
Description: %s
Content Length: %d characters
Performance: %.0fms load time
Resources: %d scripts, %d images

Competitor Domains:
`,
		analyzed.Domain, analyzed.Title, analyzed.Description, len(analyzed.Content),
		analyzed.Performance.LoadTime, analyzed.Resources.Scripts, analyzed.Resources.Images)

	for i, comp := range competitors {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, `%s:
- Title: %s
- Description: %s
- Content Length: %d characters
- Performance: %.0fms load time
- Resources: %d scripts, %d images
`,
			comp.Domain, comp.Title, comp.Description, len(comp.Content),
			comp.Performance.LoadTime, comp.Resources.Scripts, comp.Resources.Images)
	}

	b.WriteString(`
Please provide a detailed analysis in the following JSON format:

{
  "ourDomainAnalysis": {
    "contentStrengths": ["List 3-5 strengths of our content"],
    "contentWeaknesses": ["List 3-5 areas where our content can improve"],
    "performanceAnalysis": "Analysis of our performance metrics",
    "seoRecommendations": ["List 5-8 specific SEO improvements"],
    "contentRecommendations": ["List 5-8 specific content improvements"]
  },
  "competitorAnalyses": [
    {
      "domain": "competitor-domain.com",
      "keyDifferences": ["List 3-5 key differences from our domain"],
      "strengths": ["List 3-5 strengths of this competitor"],
      "weaknesses": ["List 3-5 weaknesses of this competitor"],
      "lessonsLearned": ["List 3-5 lessons we can learn from this competitor"]
    }
  ],
  "overallInsights": "A comprehensive summary of the analysis with actionable insights"
}

Focus on:
1. Content quality and relevance
2. SEO optimization opportunities
3. Performance differences
4. User experience factors
5. Specific actionable recommendations

Provide practical, implementable advice.`)

	return b.String()
}

func placeholderAnalysis(competitors []inspect.Report) llmAnalysis {
	analysis := llmAnalysis{
		OurDomainAnalysis: DomainAnalysis{
			ContentStrengths:       []string{"Content analysis available"},
			ContentWeaknesses:      []string{"Content analysis available"},
			PerformanceAnalysis:    "Performance analysis available",
			SEORecommendations:     []string{"SEO analysis available"},
			ContentRecommendations: []string{"Content analysis available"},
		},
		OverallInsights: "Analysis completed successfully",
	}
	for _, comp := range competitors {
		analysis.CompetitorAnalyses = append(analysis.CompetitorAnalyses, CompetitorAnalysis{
			Domain:         comp.Domain,
			KeyDifferences: []string{"Analysis available"},
			Strengths:      []string{"Analysis available"},
			Weaknesses:     []string{"Analysis available"},
			LessonsLearned: []string{"Analysis available"},
		})
	}
	return analysis
}
