package inspect

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tbessen/geoscan/internal/metrics"
	"github.com/tbessen/geoscan/pkg/httpclient"
)

// StaticInspector fetches pages over plain HTTP and parses the served
// HTML. It misses script-rendered content but needs no Chrome, which
// makes it the default when no debugger endpoint is configured.
type StaticInspector struct {
	client  *httpclient.Client
	logger  *slog.Logger
	baseURL func(domain string) string
}

// NewStaticInspector builds an inspector over the shared HTTP client.
func NewStaticInspector(client *httpclient.Client, logger *slog.Logger) *StaticInspector {
	if logger == nil {
		logger = slog.Default()
	}
	return &StaticInspector{
		client:  client,
		logger:  logger.With("component", "inspector"),
		baseURL: func(domain string) string { return "https://" + domain },
	}
}

// Inspect fetches and parses the domain's landing page. Failures are
// captured in the report, never returned.
func (s *StaticInspector) Inspect(ctx context.Context, domain string) Report {
	report, err := s.inspect(ctx, domain)
	if err != nil {
		metrics.PageInspectionsTotal.WithLabelValues("static", "error").Inc()
		s.logger.Warn("page inspection failed", "domain", domain, "error", err)
		return failedReport(domain, err)
	}
	metrics.PageInspectionsTotal.WithLabelValues("static", "ok").Inc()
	return report
}

func (s *StaticInspector) inspect(ctx context.Context, domain string) (Report, error) {
	url := s.baseURL(domain)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return Report{}, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return Report{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	loadTime := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		return Report{}, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Report{}, fmt.Errorf("parse %s: %w", url, err)
	}

	report := Report{
		Domain:   domain,
		URL:      url,
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		MetaTags: map[string]string{},
		Errors:   []string{},
	}
	report.Performance.LoadTime = float64(loadTime.Milliseconds())

	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("name")
		if !ok || name == "" {
			name, _ = sel.Attr("property")
		}
		content, _ := sel.Attr("content")
		if name != "" && content != "" {
			report.MetaTags[name] = content
		}
	})
	report.Description = report.MetaTags["description"]

	report.Content = collapseText(doc.Find("body").Text())

	report.Resources = Resources{
		Scripts:     doc.Find("script").Length(),
		Stylesheets: doc.Find(`link[rel="stylesheet"]`).Length(),
		Images:      doc.Find("img").Length(),
		Fonts:       doc.Find(`link[rel="preload"][as="font"], link[rel="font"]`).Length(),
	}

	return report, nil
}

// collapseText squashes whitespace runs and truncates to the content
// cap, matching what the in-browser extraction produces.
func collapseText(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if len(collapsed) > maxContentLen {
		collapsed = collapsed[:maxContentLen]
	}
	return collapsed
}
