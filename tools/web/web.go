// Package web provides the browsing tools: page text, link extraction, and a
// placeholder search. Pages are fetched over plain HTTP GET and parsed with
// golang.org/x/net/html.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/tailored-agentic-units/webagent/tools"
)

const (
	// UserAgent is sent with every page request; some sites refuse the Go default.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	DefaultTimeout  = 10 * time.Second
	DefaultMaxText  = 8000
	DefaultMaxLinks = 20

	maxBodyBytes = 5 << 20
	truncated    = "... [Content truncated]"
)

// Config tunes the browsing tools. Zero values select the defaults.
type Config struct {
	TimeoutMs int `json:"timeout_ms,omitempty"`
	MaxText   int `json:"max_text,omitempty"`
	MaxLinks  int `json:"max_links,omitempty"`
}

// DefaultConfig returns the browsing defaults.
func DefaultConfig() Config {
	return Config{
		TimeoutMs: int(DefaultTimeout / time.Millisecond),
		MaxText:   DefaultMaxText,
		MaxLinks:  DefaultMaxLinks,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.TimeoutMs > 0 {
		c.TimeoutMs = source.TimeoutMs
	}
	if source.MaxText > 0 {
		c.MaxText = source.MaxText
	}
	if source.MaxLinks > 0 {
		c.MaxLinks = source.MaxLinks
	}
}

// Browser fetches pages for the browse_website and extract_links tools.
type Browser struct {
	client   *http.Client
	maxText  int
	maxLinks int
}

// NewBrowser creates a Browser. A nil client gets one with cfg.TimeoutMs.
func NewBrowser(cfg Config, client *http.Client) *Browser {
	merged := DefaultConfig()
	merged.Merge(&cfg)

	if client == nil {
		client = &http.Client{Timeout: time.Duration(merged.TimeoutMs) * time.Millisecond}
	}
	return &Browser{
		client:   client,
		maxText:  merged.MaxText,
		maxLinks: merged.MaxLinks,
	}
}

// Descriptors returns the web tools in the order they are advertised.
func (b *Browser) Descriptors() []tools.Descriptor {
	return []tools.Descriptor{
		{
			Name:        "browse_website",
			Description: "useful for browsing websites and getting their content. Input should be a URL.",
			Parameters:  urlParameters,
			Invoke:      b.Browse,
		},
		{
			Name:        "search_web",
			Description: "useful for searching the web for information. Input should be a search query.",
			Invoke:      Search,
		},
		{
			Name:        "extract_links",
			Description: "useful for extracting all links from a website. Input should be a URL.",
			Parameters:  urlParameters,
			Invoke:      b.ExtractLinks,
		},
	}
}

var urlParameters = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"input": map[string]any{
			"type":        "string",
			"description": "The URL of the website.",
		},
	},
	"required": []string{"input"},
}

// NormalizeURL adds an https scheme to bare host names ("example.com").
func NormalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url %q has no host", raw)
	}
	return u, nil
}

// fetch GETs the page and returns a UTF-8 reader over at most maxBodyBytes.
// The caller closes the returned body.
func (b *Browser) fetch(ctx context.Context, target *url.URL) (io.Reader, io.Closer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var r io.Reader = io.LimitReader(resp.Body, maxBodyBytes)
	ctype := resp.Header.Get("Content-Type")
	if ur, err := charset.NewReader(r, ctype); err == nil {
		r = ur
	}
	return r, resp.Body, nil
}
