// Package brandfetch is a thin client for the Brandfetch brand
// metadata API.
package brandfetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tbessen/geoscan/pkg/httpclient"
)

// Industry is one industry classification attached to a brand.
type Industry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Logo is a single brand asset reference.
type Logo struct {
	Theme   string `json:"theme"`
	Type    string `json:"type"`
	Formats []struct {
		Src    string `json:"src"`
		Format string `json:"format"`
	} `json:"formats"`
}

// Brand is the subset of the Brandfetch payload the analyzer uses.
type Brand struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Domain          string  `json:"domain"`
	Claimed         bool    `json:"claimed"`
	Description     string  `json:"description"`
	LongDescription string  `json:"longDescription"`
	QualityScore    float64 `json:"qualityScore"`
	Logos           []Logo  `json:"logos"`
	Company         struct {
		Industries []Industry `json:"industries"`
	} `json:"company"`
}

// IndustryNames returns the flat list of industry names for prompts.
func (b Brand) IndustryNames() []string {
	names := make([]string, 0, len(b.Company.Industries))
	for _, ind := range b.Company.Industries {
		names = append(names, ind.Name)
	}
	return names
}

// Config wires the Brandfetch API.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client looks up company metadata by domain.
type Client struct {
	cfg    Config
	http   *httpclient.Client
	logger *slog.Logger
}

// NewClient builds a client, applying defaults for anything unset.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.brandfetch.io/v2"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   httpclient.New(httpclient.Config{Timeout: cfg.Timeout}),
		logger: logger,
	}
}

// Brand fetches metadata for a domain. The direct brands lookup is
// tried first; if it fails, the search endpoint resolves the domain to
// a brand ID which is then fetched.
func (c *Client) Brand(ctx context.Context, domain string) (*Brand, error) {
	brand, err := c.getBrand(ctx, domain)
	if err == nil {
		return brand, nil
	}

	c.logger.Debug("direct brand lookup failed, trying search", "domain", domain, "err", err)

	id, serr := c.searchBrandID(ctx, domain)
	if serr != nil {
		return nil, fmt.Errorf("brand lookup for %s: %w (search fallback: %v)", domain, err, serr)
	}
	return c.getBrand(ctx, id)
}

func (c *Client) getBrand(ctx context.Context, idOrDomain string) (*Brand, error) {
	reqURL := fmt.Sprintf("%s/brands/%s", strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(idOrDomain))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var brand Brand
	if err := json.Unmarshal(body, &brand); err != nil {
		return nil, fmt.Errorf("decode brand: %w", err)
	}
	return &brand, nil
}

func (c *Client) searchBrandID(ctx context.Context, domain string) (string, error) {
	reqURL := fmt.Sprintf("%s/search?q=%s", strings.TrimRight(c.cfg.BaseURL, "/"), url.QueryEscape(domain))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return "", err
	}

	var hits []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &hits); err != nil {
		return "", fmt.Errorf("decode search results: %w", err)
	}
	if len(hits) == 0 {
		return "", fmt.Errorf("no company found for domain %s", domain)
	}
	return hits[0].ID, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("brandfetch %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return io.ReadAll(resp.Body)
}
