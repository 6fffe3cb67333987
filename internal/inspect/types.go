// Package inspect fetches competitor pages and extracts the on-page
// signals the comparison prompt feeds on: title, description, meta
// tags, visible text, load timings and resource counts.
package inspect

import "context"

// Performance holds the page load timings in milliseconds.
type Performance struct {
	LoadTime         float64 `json:"loadTime"`
	DOMContentLoaded float64 `json:"domContentLoaded"`
}

// Resources counts the page's external asset references.
type Resources struct {
	Scripts     int `json:"scripts"`
	Stylesheets int `json:"stylesheets"`
	Images      int `json:"images"`
	Fonts       int `json:"fonts"`
}

// Report is the inspection result for one domain. A failed inspection
// still yields a Report with zeroed fields and the failure recorded in
// Errors, so a batch over several domains never loses its shape.
type Report struct {
	Domain      string            `json:"domain"`
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Content     string            `json:"content"`
	MetaTags    map[string]string `json:"metaTags"`
	Performance Performance       `json:"performance"`
	Resources   Resources         `json:"resources"`
	Errors      []string          `json:"errors"`
}

// maxContentLen caps the extracted visible text per page.
const maxContentLen = 10000

// Inspector inspects a single domain's landing page.
type Inspector interface {
	Inspect(ctx context.Context, domain string) Report
}

// failedReport builds the zeroed-but-shaped report for a domain that
// could not be inspected.
func failedReport(domain string, err error) Report {
	return Report{
		Domain:   domain,
		URL:      "https://" + domain,
		MetaTags: map[string]string{},
		Errors:   []string{err.Error()},
	}
}

// InspectAll runs the inspector over every domain in order. Individual
// failures are captured inside the corresponding Report; the returned
// slice always has one entry per input domain.
func InspectAll(ctx context.Context, ins Inspector, domains []string) []Report {
	reports := make([]Report, 0, len(domains))
	for _, d := range domains {
		reports = append(reports, ins.Inspect(ctx, d))
	}
	return reports
}
