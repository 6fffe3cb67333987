// Package report renders a visibility analysis run as JSON, plain text
// or HTML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/tbessen/geoscan/internal/agents"
	"github.com/tbessen/geoscan/internal/ranking"
)

// Summary contains aggregated metrics about one analysis run.
type Summary struct {
	TargetDomain      string
	QuestionsAsked    int
	FailedQuestions   int
	TotalMentions     int
	TargetMentions    int
	TargetHitRate     float64
	DistinctCompanies int
	TopCompanies      []ranking.RankedCompany
}

// topCompanyCount caps how many ranked entries the summary keeps.
const topCompanyCount = 10

// GenerateSummary folds a run's agent responses into summary metrics.
func GenerateSummary(targetDomain string, responses []agents.Response) Summary {
	s := Summary{
		TargetDomain:   targetDomain,
		QuestionsAsked: len(responses),
		TotalMentions:  ranking.TotalMentions(responses),
		TargetMentions: ranking.TargetMentions(responses, targetDomain),
	}

	for _, r := range responses {
		if r.Err != "" {
			s.FailedQuestions++
		}
	}

	ranked := ranking.Aggregate(responses)
	s.DistinctCompanies = len(ranked)
	if len(ranked) > topCompanyCount {
		ranked = ranked[:topCompanyCount]
	}
	s.TopCompanies = ranked

	if s.TotalMentions > 0 {
		s.TargetHitRate = float64(s.TargetMentions) / float64(s.TotalMentions) * 100
	}
	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Visibility Summary
------------------
Target:          {{.TargetDomain}}
Questions:       {{.QuestionsAsked}} asked, {{.FailedQuestions}} failed
Total Mentions:  {{.TotalMentions}}
Target Mentions: {{.TargetMentions}} ({{printf "%.1f" .TargetHitRate}}%)
Companies:       {{.DistinctCompanies}}

Top Companies:
{{- range .TopCompanies}}
  {{.CompanyName}} ({{.Domain}}): {{.MentionCount}} mentions, {{printf "%.1f" .PercentageMentions}}%
{{- else}}
  None
{{- end}}
`

	t, err := template.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("parse text template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("render text summary: %w", err)
	}

	return nil
}

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Visibility Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>Visibility Report: {{.TargetDomain}}</h1>

  <div class="stat-card">
    <div>Questions</div>
    <div class="stat-val">{{.QuestionsAsked}}</div>
  </div>
  <div class="stat-card">
    <div>Failed</div>
    <div class="stat-val">{{.FailedQuestions}}</div>
  </div>
  <div class="stat-card">
    <div>Target Mentions</div>
    <div class="stat-val" style="color: {{if gt .TargetMentions 0}}green{{else}}red{{end}};">{{.TargetMentions}}</div>
  </div>
  <div class="stat-card">
    <div>Hit Rate</div>
    <div class="stat-val">{{printf "%.1f" .TargetHitRate}}%</div>
  </div>

  <h3>Top Companies</h3>
  <table>
    <tr><th>Company</th><th>Domain</th><th>Mentions</th><th>Share</th></tr>
    {{- range .TopCompanies}}
    <tr><td>{{.CompanyName}}</td><td>{{.Domain}}</td><td>{{.MentionCount}}</td><td>{{printf "%.1f" .PercentageMentions}}%</td></tr>
    {{- else}}
    <tr><td colspan="4">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`
	t, err := template.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("parse html template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("render html summary: %w", err)
	}

	return nil
}
