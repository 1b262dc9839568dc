package webfetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/flexfinder/backend/internal/domain"
)

// DefaultUserAgent is the browser identity presented on every outbound call.
// The catalog site serves stripped-down pages to clients it does not
// recognize as a browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/125.0 Safari/537.36"

const (
	acceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptImage    = "image/avif,image/webp,image/apng,image/*,*/*;q=0.8"
	acceptLanguage = "en-US,en;q=0.9"
)

// defaultMaxBodyBytes caps how much of any response body is read
const defaultMaxBodyBytes = 10 << 20 // 10 MB

// ClientConfig holds configuration for the fetch client
type ClientConfig struct {
	UserAgent    string
	ProbeTimeout time.Duration
	EmbedTimeout time.Duration
	RateLimitRPS float64
	RateBurst    int
	MaxBodyBytes int64
}

// Client performs content-type-aware HTTP calls against the catalog site,
// its image CDN, and search engines. It never returns Go errors: every call
// yields a FetchResult whose Outcome records what happened, and the fallback
// chains above this layer are the retry mechanism. No retries, no caching
// here.
type Client struct {
	httpClient   *http.Client
	userAgent    string
	rateLimiter  *rate.Limiter
	probeTimeout time.Duration
	embedTimeout time.Duration
	maxBodyBytes int64
}

// NewClient creates a new fetch client, applying defaults for any zero
// config values.
func NewClient(cfg ClientConfig) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = 8 * time.Second
	}
	if cfg.EmbedTimeout == 0 {
		cfg.EmbedTimeout = 12 * time.Second
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 2
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 4
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}

	transport := &http.Transport{
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		// Timeouts are enforced per call through the context, not here
		httpClient:   &http.Client{Transport: transport},
		userAgent:    cfg.UserAgent,
		rateLimiter:  rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateBurst),
		probeTimeout: cfg.ProbeTimeout,
		embedTimeout: cfg.EmbedTimeout,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

// FetchPage GETs an HTML page with redirects followed, returning its body
// and final URL. The timeout is per call because scrape and search fetches
// get a longer budget than plain URL probes; zero means the probe timeout.
func (c *Client) FetchPage(ctx context.Context, pageURL, referer string, timeout time.Duration) *domain.FetchResult {
	if timeout == 0 {
		timeout = c.probeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return &domain.FetchResult{Outcome: domain.FetchNetworkError}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return &domain.FetchResult{Outcome: domain.FetchNetworkError}
	}
	c.setHeaders(req, acceptHTML, referer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.Debugf("[FETCH] GET %s failed: %v", pageURL, err)
		return &domain.FetchResult{Outcome: domain.FetchNetworkError}
	}
	defer resp.Body.Close()

	result := &domain.FetchResult{
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
	}

	if !statusOK(resp.StatusCode) {
		logrus.Debugf("[FETCH] GET %s -> status %d", pageURL, resp.StatusCode)
		result.Outcome = domain.FetchBadStatus
		return result
	}
	if !strings.Contains(result.ContentType, "text/html") {
		result.Outcome = domain.FetchWrongContentType
		return result
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		result.Outcome = domain.FetchNetworkError
		return result
	}

	result.Outcome = domain.FetchOK
	result.Body = body
	return result
}

// ProbeImage verifies that a URL serves an image without downloading it.
// HEAD first; several CDNs reject HEAD, so a failed probe is repeated once
// as a GET with the body discarded.
func (c *Client) ProbeImage(ctx context.Context, imageURL, referer string) *domain.FetchResult {
	if res := c.probeOnce(ctx, http.MethodHead, imageURL, referer); res.OK() {
		return res
	}
	return c.probeOnce(ctx, http.MethodGet, imageURL, referer)
}

func (c *Client) probeOnce(ctx context.Context, method, imageURL, referer string) *domain.FetchResult {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return &domain.FetchResult{Outcome: domain.FetchNetworkError}
	}

	req, err := http.NewRequestWithContext(ctx, method, imageURL, nil)
	if err != nil {
		return &domain.FetchResult{Outcome: domain.FetchNetworkError}
	}
	c.setHeaders(req, acceptImage, referer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.Debugf("[FETCH] %s %s failed: %v", method, imageURL, err)
		return &domain.FetchResult{Outcome: domain.FetchNetworkError}
	}
	defer resp.Body.Close()

	result := &domain.FetchResult{
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
	}

	switch {
	case !statusOK(resp.StatusCode):
		result.Outcome = domain.FetchBadStatus
	case !strings.Contains(result.ContentType, "image/"):
		result.Outcome = domain.FetchWrongContentType
	default:
		result.Outcome = domain.FetchOK
	}
	return result
}

// DownloadImage GETs an image's raw bytes for embedding.
func (c *Client) DownloadImage(ctx context.Context, imageURL, referer string) *domain.FetchResult {
	ctx, cancel := context.WithTimeout(ctx, c.embedTimeout)
	defer cancel()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return &domain.FetchResult{Outcome: domain.FetchNetworkError}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return &domain.FetchResult{Outcome: domain.FetchNetworkError}
	}
	c.setHeaders(req, acceptImage, referer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.Debugf("[FETCH] GET %s failed: %v", imageURL, err)
		return &domain.FetchResult{Outcome: domain.FetchNetworkError}
	}
	defer resp.Body.Close()

	result := &domain.FetchResult{
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
	}

	if !statusOK(resp.StatusCode) {
		result.Outcome = domain.FetchBadStatus
		return result
	}
	if !strings.Contains(result.ContentType, "image/") {
		result.Outcome = domain.FetchWrongContentType
		return result
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		result.Outcome = domain.FetchNetworkError
		return result
	}

	result.Outcome = domain.FetchOK
	result.Body = body
	return result
}

func (c *Client) setHeaders(req *http.Request, accept, referer string) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", acceptLanguage)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
}

func statusOK(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}
