package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	fetchTimeout = 15 * time.Second
	maxRedirects = 10
	maxPageBytes = 10 << 20
	userAgent    = "tabnav/0.1 (terminal tab browser)"
	acceptHeader = "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8"
	searchURL    = "https://html.duckduckgo.com/html/?q="
)

// SharedTransport is reused by every Fetcher built with NewFetcher so that
// tabs loading from the same host share connections.
var SharedTransport http.RoundTripper = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          50,
	MaxIdleConnsPerHost:   8,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ResponseHeaderTimeout: fetchTimeout,
}

var errTooManyRedirects = errors.New("too many redirects")

// FetchResult is the raw outcome of a page load.
type FetchResult struct {
	URL         string // as requested
	FinalURL    string // after redirects
	ContentType string
	Body        []byte
	Truncated   bool
}

// Fetcher downloads pages for tabs.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher on SharedTransport.
func NewFetcher() *Fetcher {
	return NewFetcherWithClient(&http.Client{
		Transport:     SharedTransport,
		Timeout:       fetchTimeout,
		CheckRedirect: limitRedirects,
	})
}

// NewFetcherWithClient returns a Fetcher that sends requests through c.
func NewFetcherWithClient(c *http.Client) *Fetcher {
	return &Fetcher{client: c}
}

func limitRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errTooManyRedirects
	}
	return nil
}

// Fetch downloads rawURL after normalizing it. A status of 400 or above is
// an error. Bodies over the size cap are cut short and marked Truncated.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	target := NormalizeURL(rawURL)
	if target == "" {
		return nil, errors.New("empty URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetching %s: %s", target, resp.Status)
	}

	// One byte past the cap tells a full page from a cut one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}
	result := &FetchResult{
		URL:         target,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
	if len(body) > maxPageBytes {
		result.Body, result.Truncated = body[:maxPageBytes], true
	}
	if result.ContentType == "" {
		result.ContentType = http.DetectContentType(result.Body)
	}
	return result, nil
}

// NormalizeURL turns what a user typed into something fetchable. Input with
// a scheme is kept, a bare host gets https://, and anything else becomes a
// search.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return raw
	case looksLikeHost(raw):
		return "https://" + raw
	default:
		return searchURL + url.QueryEscape(raw)
	}
}

func looksLikeHost(s string) bool {
	return strings.Contains(s, ".") && !strings.ContainsAny(s, " \t")
}

// IsHTML reports whether contentType names an HTML document.
func IsHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
