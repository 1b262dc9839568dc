package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flexfinder/backend/internal/domain"
)

const (
	catalogHost    = "crestron.com"
	catalogReferer = "https://www.crestron.com/"

	searchPageURL       = "https://www.crestron.com/en-US/Search"
	legacySearchPageURL = "https://www.crestron.com/Search"

	discontinuedBase = "https://www.crestron.com/Products/Catalog/Inactive/Discontinued"

	duckDuckGoHTML    = "https://duckduckgo.com/html/"
	duckDuckGoReferer = "https://duckduckgo.com/"

	// genericQuery seeds the terminal search fallback when neither a SKU nor
	// a product name is available.
	genericQuery = "Crestron"
)

// catalogProbeBases are catalog URL prefixes tried directly against an
// extracted SKU, current site taxonomy first, classic catalog paths second.
// The catalog's URL shape is only partially stable; this list encodes where
// Flex product pages have been observed to live.
var catalogProbeBases = []string{
	"https://www.crestron.com/Products/Workspace-Solutions/Unified-Communications/Crestron-Flex-Integrator-Kits/",
	"https://www.crestron.com/Products/Workspace-Solutions/Unified-Communications/Crestron-Flex-Tabletop-Conferencing-Systems/",
	"https://www.crestron.com/Products/Workspace-Solutions/Unified-Communications/Crestron-Flex-Wall-Mount-Conferencing-Systems/",
	"https://www.crestron.com/Products/Workspace-Solutions/Unified-Communications/Intelligent-Audio/",
	"https://www.crestron.com/Products/Catalog/Unified-Communications/Flex-Conferencing/Integrator-Kit/",
	"https://www.crestron.com/Products/Catalog/Unified-Communications/Flex-Conferencing/Tabletop/",
	"https://www.crestron.com/Products/Catalog/Unified-Communications/Flex-Conferencing/Wall-Mount/",
	"https://www.crestron.com/Products/Catalog/Unified-Communications/Intelligent-Audio/Distributed/",
	"https://www.crestron.com/Products/Catalog/Unified-Communications/Intelligent-Audio/USB/",
}

// URLResolverConfig holds configuration for the URL resolution engine
type URLResolverConfig struct {
	ProbeTimeout  time.Duration
	SearchTimeout time.Duration
	CacheTTL      time.Duration
}

// URLResolver turns a product stub into a navigable catalog page URL via a
// layered fallback chain. ResolveProductURL never fails: the terminal
// fallback is a catalog search URL built from the best available query term.
type URLResolver struct {
	cache     domain.CacheRepository
	fetcher   domain.PageFetcher
	extractor domain.HTMLExtractor

	probeTimeout  time.Duration
	searchTimeout time.Duration
	cacheTTL      time.Duration
}

// NewURLResolver creates a new URL resolver with dependencies
func NewURLResolver(cache domain.CacheRepository, fetcher domain.PageFetcher, extractor domain.HTMLExtractor, cfg URLResolverConfig) *URLResolver {
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = 8 * time.Second
	}
	if cfg.SearchTimeout == 0 {
		cfg.SearchTimeout = 12 * time.Second
	}
	// CacheTTL zero stays zero: resolved URLs are kept for the process lifetime.

	return &URLResolver{
		cache:         cache,
		fetcher:       fetcher,
		extractor:     extractor,
		probeTimeout:  cfg.ProbeTimeout,
		searchTimeout: cfg.SearchTimeout,
		cacheTTL:      cfg.CacheTTL,
	}
}

// ResolveProductURL resolves the page URL for one product stub, consulting
// the cache first so repeated stubs cost a single network pass.
func (r *URLResolver) ResolveProductURL(ctx context.Context, name, proposedURL string) string {
	cacheKey := name + "||" + proposedURL
	if cached, err := r.cache.Get(ctx, cacheKey); err == nil {
		if resolved, ok := cached.(string); ok && resolved != "" {
			logrus.Debugf("[RESOLVE] cache hit for %q", cacheKey)
			return resolved
		}
	}

	resolved := r.resolve(ctx, name, proposedURL)

	if err := r.cache.Set(ctx, cacheKey, resolved, r.cacheTTL); err != nil {
		logrus.Warnf("[RESOLVE] cache store failed for %q: %v", cacheKey, err)
	}
	return resolved
}

// resolve runs the fallback chain. Order matters: each step is cheaper or
// more trustworthy than the next, and the first success wins.
func (r *URLResolver) resolve(ctx context.Context, name, proposedURL string) string {
	// 1) Accept the proposed URL when it leads to a live page
	if proposedURL != "" {
		if final := r.probePage(ctx, proposedURL); final != "" {
			logrus.Infof("[RESOLVE] %q: proposed URL verified", name)
			return final
		}
	}

	// 2) Probe known catalog paths for the extracted SKU
	sku := ExtractSKU(name)
	if sku != "" {
		if direct := r.probeCatalogPaths(ctx, sku); direct != "" {
			logrus.Infof("[RESOLVE] %q: catalog path hit %s", name, direct)
			return direct
		}
	}

	// 3) Scan search-engine results for a catalog product link
	query := sku
	if query == "" {
		query = name
	}
	if strings.TrimSpace(query) != "" {
		if hit := r.searchViaDuckDuckGo(ctx, query, sku); hit != "" {
			logrus.Infof("[RESOLVE] %q: search engine hit %s", name, hit)
			return hit
		}
	}

	// 4) Ask the catalog site's own search pages
	if sku != "" {
		if hit := r.searchCatalog(ctx, sku); hit != "" {
			logrus.Infof("[RESOLVE] %q: catalog search hit %s", name, hit)
			return hit
		}
	}

	// 5) Terminal fallback: a search results link always loads
	logrus.Infof("[RESOLVE] %q: falling back to search URL", name)
	return searchFallbackURL(query)
}

// probePage GETs a candidate URL and returns the post-redirect final URL when
// it looks like a real product page: a successful HTML response that did not
// land on a 404 page.
func (r *URLResolver) probePage(ctx context.Context, candidate string) string {
	res := r.fetcher.FetchPage(ctx, candidate, "", r.probeTimeout)
	if res.OK() && !strings.Contains(res.FinalURL, "404") {
		return res.FinalURL
	}
	return ""
}

// probeCatalogPaths tries every known catalog prefix with the SKU appended,
// then the discontinued-products shard.
func (r *URLResolver) probeCatalogPaths(ctx context.Context, sku string) string {
	for _, base := range catalogProbeBases {
		if final := r.probePage(ctx, base+sku); final != "" {
			return final
		}
	}

	// Discontinued products are sharded by the SKU's first character.
	first := "U"
	if sku != "" {
		first = strings.ToUpper(sku[:1])
	}
	return r.probePage(ctx, fmt.Sprintf("%s/%s/%s", discontinuedBase, first, sku))
}

// searchViaDuckDuckGo scans the HTML results of an external search engine for
// a catalog product link. Two query forms are tried, most specific first.
func (r *URLResolver) searchViaDuckDuckGo(ctx context.Context, query, sku string) string {
	queries := []string{
		"site:crestron.com Products/Catalog " + query,
		"site:crestron.com " + query,
	}

	for _, q := range queries {
		searchURL := duckDuckGoHTML + "?q=" + url.QueryEscape(q)
		res := r.fetcher.FetchPage(ctx, searchURL, duckDuckGoReferer, r.searchTimeout)
		if !res.OK() {
			continue
		}
		for _, href := range r.extractor.ExtractCatalogAnchors(res.Body, searchURL) {
			if isCatalogProductLink(href, sku) {
				return href
			}
		}
	}
	return ""
}

// searchCatalog falls back to the catalog's own search pages; the two path
// variants answer for different generations of the site.
func (r *URLResolver) searchCatalog(ctx context.Context, sku string) string {
	pages := []string{
		searchPageURL + "?q=" + url.QueryEscape(sku),
		legacySearchPageURL + "?q=" + url.QueryEscape(sku),
	}
	skuUpper := strings.ToUpper(sku)

	for _, page := range pages {
		res := r.fetcher.FetchPage(ctx, page, "", r.searchTimeout)
		if !res.OK() {
			continue
		}
		for _, href := range r.extractor.ExtractCatalogAnchors(res.Body, page) {
			if strings.Contains(href, "/Products/") && strings.Contains(href, "/Catalog") &&
				strings.Contains(strings.ToUpper(href), skuUpper) {
				return href
			}
		}
	}
	return ""
}

// isCatalogProductLink applies the anchor filter for search-engine results:
// the link must point into the catalog's product taxonomy and, when a SKU is
// known, mention it.
func isCatalogProductLink(href, sku string) bool {
	if !strings.Contains(href, catalogHost) || !strings.Contains(href, "/Products/") {
		return false
	}
	if !strings.Contains(href, "/Catalog/") && !strings.Contains(href, "/Workspace-Solutions/") {
		return false
	}
	if sku != "" && !strings.Contains(strings.ToUpper(href), strings.ToUpper(sku)) {
		return false
	}
	return true
}

// searchFallbackURL builds the terminal fallback link. It never fails to
// produce a URL, even for an empty query.
func searchFallbackURL(query string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		q = genericQuery
	}
	return searchPageURL + "?q=" + url.QueryEscape(q)
}
