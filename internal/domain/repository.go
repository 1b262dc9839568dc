package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations. A TTL of zero
// means the entry never expires.
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// PageFetcher defines the interface for outbound catalog and search-engine
// HTTP calls. Implementations never return Go errors: every call yields a
// FetchResult whose Outcome says what happened, and the engines treat
// anything but FetchOK as "try the next strategy".
type PageFetcher interface {
	// FetchPage GETs an HTML page with redirects followed, returning its
	// body and final URL.
	FetchPage(ctx context.Context, pageURL, referer string, timeout time.Duration) *FetchResult

	// ProbeImage checks that a URL serves an image, via HEAD with a GET
	// fallback for hosts that reject HEAD. No body is retained.
	ProbeImage(ctx context.Context, imageURL, referer string) *FetchResult

	// DownloadImage GETs an image's raw bytes.
	DownloadImage(ctx context.Context, imageURL, referer string) *FetchResult
}

// HTMLExtractor defines the interface for pulling structured hints out of
// fetched HTML without executing scripts.
type HTMLExtractor interface {
	// ExtractPreviewImage returns the page's preview image from its meta
	// tags, resolved absolute, or "" when none is present.
	ExtractPreviewImage(html []byte, pageURL string) string

	// ExtractCDNCandidates returns trusted-CDN image URLs referenced by the
	// page, in document order, deduplicated.
	ExtractCDNCandidates(html []byte, pageURL string) []string

	// ExtractCatalogAnchors returns every anchor href on the page resolved
	// absolute, in document order.
	ExtractCatalogAnchors(html []byte, baseURL string) []string

	// ExtractPageMeta returns OpenGraph metadata, or nil when none parses.
	ExtractPageMeta(html []byte) *PageMeta
}

// RecommendationClient defines the interface for the generative product
// recommendation call.
type RecommendationClient interface {
	Recommend(ctx context.Context, roomType, platform, needs string) (*Recommendation, error)
}

// LeadStore defines the interface for persisting captured leads. Append
// assigns LeadID and CreatedAt before writing.
type LeadStore interface {
	Append(lead *Lead) error
}

// QuoteRenderer defines the interface for producing the downloadable quote
// document.
type QuoteRenderer interface {
	Render(ctx context.Context, req *QuoteRequest) ([]byte, error)
}
