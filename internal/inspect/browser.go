package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/tbessen/geoscan/internal/metrics"
)

// BrowserConfig tunes the headless-Chrome inspector.
type BrowserConfig struct {
	// DebuggerURL points at a remote Chrome devtools endpoint
	// (http://host:9222). Empty means launch a local headless Chrome.
	DebuggerURL       string
	ViewportWidth     int
	ViewportHeight    int
	NavigationTimeout time.Duration
}

// BrowserInspector renders pages in Chrome, so script-driven sites
// report their real title, meta tags and resource counts.
type BrowserInspector struct {
	cfg    BrowserConfig
	logger *slog.Logger

	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowserInspector builds an unconnected inspector. The browser is
// dialed lazily on first Inspect.
func NewBrowserInspector(cfg BrowserConfig, logger *slog.Logger) *BrowserInspector {
	if cfg.ViewportWidth == 0 {
		cfg.ViewportWidth = 1280
	}
	if cfg.ViewportHeight == 0 {
		cfg.ViewportHeight = 720
	}
	if cfg.NavigationTimeout == 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserInspector{cfg: cfg, logger: logger.With("component", "inspector")}
}

// connect attaches to the configured remote Chrome, falling back to a
// locally launched headless instance when the remote is unreachable.
func (b *BrowserInspector) connect(ctx context.Context) (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		if _, err := b.browser.Version(); err == nil {
			return b.browser, nil
		}
		_ = b.browser.Close()
		b.browser = nil
	}

	var controlURL string
	if b.cfg.DebuggerURL != "" {
		resolved, err := launcher.ResolveURL(b.cfg.DebuggerURL)
		if err != nil {
			b.logger.Warn("remote chrome unreachable, launching local", "url", b.cfg.DebuggerURL, "error", err)
		} else {
			controlURL = resolved
		}
	}
	if controlURL == "" {
		url, err := launcher.New().Headless(true).Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	b.browser = browser
	b.logger.Info("connected to chrome")
	return browser, nil
}

// Close shuts the browser down. Safe to call on an unconnected
// inspector.
func (b *BrowserInspector) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	return err
}

// pageData mirrors the in-page extraction script's return value.
type pageData struct {
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	MetaTags         map[string]string `json:"metaTags"`
	Content          string            `json:"content"`
	DOMContentLoaded float64           `json:"domContentLoaded"`
	Resources        Resources         `json:"resources"`
}

const extractScript = `
() => {
	const title = document.title;
	const description = document.querySelector('meta[name="description"]')?.getAttribute('content') || '';

	const metaTags = {};
	document.querySelectorAll('meta').forEach((meta) => {
		const name = meta.getAttribute('name') || meta.getAttribute('property') || '';
		const content = meta.getAttribute('content') || '';
		if (name && content) {
			metaTags[name] = content;
		}
	});

	const bodyText = document.body ? document.body.textContent || '' : '';
	const content = bodyText.replace(/\s+/g, ' ').trim().substring(0, 10000);

	const nav = performance.getEntriesByType('navigation')[0];
	const domContentLoaded = nav ? nav.domContentLoadedEventEnd - nav.domContentLoadedEventStart : 0;

	return {
		title,
		description,
		metaTags,
		content,
		domContentLoaded,
		resources: {
			scripts: document.querySelectorAll('script').length,
			stylesheets: document.querySelectorAll('link[rel="stylesheet"]').length,
			images: document.querySelectorAll('img').length,
			fonts: document.querySelectorAll('link[rel="preload"][as="font"], link[rel="font"]').length,
		},
	};
}
`

// Inspect renders https://<domain> and extracts the page signals. A
// failure never propagates as an error: the report carries it so a
// multi-domain batch keeps one entry per domain.
func (b *BrowserInspector) Inspect(ctx context.Context, domain string) Report {
	report, err := b.inspect(ctx, domain)
	if err != nil {
		metrics.PageInspectionsTotal.WithLabelValues("browser", "error").Inc()
		b.logger.Warn("page inspection failed", "domain", domain, "error", err)
		return failedReport(domain, err)
	}
	metrics.PageInspectionsTotal.WithLabelValues("browser", "ok").Inc()
	return report
}

func (b *BrowserInspector) inspect(ctx context.Context, domain string) (Report, error) {
	browser, err := b.connect(ctx)
	if err != nil {
		return Report{}, err
	}

	url := "https://" + domain
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return Report{}, fmt.Errorf("create page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             b.cfg.ViewportWidth,
		Height:            b.cfg.ViewportHeight,
		DeviceScaleFactor: 1.0,
	}).Call(page); err != nil {
		b.logger.Warn("set viewport failed", "domain", domain, "error", err)
	}

	page = page.Context(ctx).Timeout(b.cfg.NavigationTimeout)

	start := time.Now()
	if err := page.Navigate(url); err != nil {
		return Report{}, fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return Report{}, fmt.Errorf("wait load %s: %w", url, err)
	}
	loadTime := time.Since(start)

	res, err := page.Evaluate(&rod.EvalOptions{JS: extractScript, ByValue: true})
	if err != nil {
		return Report{}, fmt.Errorf("extract page data: %w", err)
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return Report{}, fmt.Errorf("marshal page data: %w", err)
	}
	var data pageData
	if err := json.Unmarshal(raw, &data); err != nil {
		return Report{}, fmt.Errorf("decode page data: %w", err)
	}
	if data.MetaTags == nil {
		data.MetaTags = map[string]string{}
	}

	return Report{
		Domain:      domain,
		URL:         url,
		Title:       data.Title,
		Description: data.Description,
		Content:     data.Content,
		MetaTags:    data.MetaTags,
		Performance: Performance{
			LoadTime:         float64(loadTime.Milliseconds()),
			DOMContentLoaded: data.DOMContentLoaded,
		},
		Resources: data.Resources,
		Errors:    []string{},
	}, nil
}
