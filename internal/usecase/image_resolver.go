package usecase

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flexfinder/backend/internal/domain"
)

// logoKeywords disqualify image URLs that are site furniture rather than
// product photography.
var logoKeywords = []string{"logo", "favicon", "ogimage", "social", "icon"}

// sizeSegmentPattern matches the resolution segment embedded in trusted-CDN
// image paths, e.g. /640px@1x/.
var sizeSegmentPattern = regexp.MustCompile(`/(\d+)px@1x/`)

// highResSegment is the resolution segment requested for product imagery.
const highResSegment = "/1000px@1x/"

// ImageResolverConfig holds configuration for the image resolution engine
type ImageResolverConfig struct {
	PageTimeout time.Duration
	MetaTimeout time.Duration
}

// ImageResolver picks a representative product image for a resolved page:
// the proposed image when it checks out, else the best trusted-CDN candidate
// scraped from the page, else the page's preview-image meta tag. A miss is a
// valid terminal outcome; the embedding layer substitutes a placeholder
// downstream.
type ImageResolver struct {
	fetcher   domain.PageFetcher
	extractor domain.HTMLExtractor

	pageTimeout time.Duration
	metaTimeout time.Duration
}

// NewImageResolver creates a new image resolver with dependencies
func NewImageResolver(fetcher domain.PageFetcher, extractor domain.HTMLExtractor, cfg ImageResolverConfig) *ImageResolver {
	if cfg.PageTimeout == 0 {
		cfg.PageTimeout = 12 * time.Second
	}
	if cfg.MetaTimeout == 0 {
		cfg.MetaTimeout = 10 * time.Second
	}

	return &ImageResolver{
		fetcher:     fetcher,
		extractor:   extractor,
		pageTimeout: cfg.PageTimeout,
		metaTimeout: cfg.MetaTimeout,
	}
}

// ResolveImageURL picks the image to show for a product. The second return
// value is false when no candidate validated.
func (r *ImageResolver) ResolveImageURL(ctx context.Context, proposedImage, productPageURL string) (string, bool) {
	// 1) The proposed image, when it is live and not a logo
	if proposedImage != "" {
		candidate := normalizeProposedImage(proposedImage, productPageURL)
		if looksLikeLogo(candidate) {
			logrus.Debugf("[IMAGE] proposed image rejected as logo: %s", candidate)
		} else if r.fetcher.ProbeImage(ctx, candidate, productPageURL).OK() {
			return candidate, true
		}
	}

	if productPageURL == "" {
		return "", false
	}

	// 2) Scrape the product page for trusted-CDN photography
	if onCatalogHost(productPageURL) {
		if best := r.bestPageImage(ctx, productPageURL); best != "" {
			return best, true
		}
	}

	// 3) Preview-image meta fallback
	if preview := r.previewImage(ctx, productPageURL); preview != "" {
		return preview, true
	}

	return "", false
}

// bestPageImage fetches the product page once and works through its CDN
// candidates: first at upgraded resolution, then exactly as scraped.
func (r *ImageResolver) bestPageImage(ctx context.Context, pageURL string) string {
	res := r.fetcher.FetchPage(ctx, pageURL, catalogReferer, r.pageTimeout)
	if !res.OK() {
		return ""
	}

	candidates := r.extractor.ExtractCDNCandidates(res.Body, pageURL)

	for _, candidate := range candidates {
		if looksLikeLogo(candidate) {
			continue
		}
		upgraded := upgradeImageSize(candidate)
		if r.fetcher.ProbeImage(ctx, upgraded, pageURL).OK() {
			return upgraded
		}
	}

	// The upgraded size is not published for every asset; retry as scraped.
	for _, candidate := range candidates {
		if looksLikeLogo(candidate) {
			continue
		}
		if r.fetcher.ProbeImage(ctx, candidate, pageURL).OK() {
			return candidate
		}
	}

	return ""
}

// previewImage extracts the page's social preview image and validates it the
// same way as any other candidate.
func (r *ImageResolver) previewImage(ctx context.Context, pageURL string) string {
	res := r.fetcher.FetchPage(ctx, pageURL, catalogReferer, r.metaTimeout)
	if !res.OK() {
		return ""
	}

	preview := r.extractor.ExtractPreviewImage(res.Body, pageURL)
	if preview == "" || looksLikeLogo(preview) {
		return ""
	}
	if !r.fetcher.ProbeImage(ctx, preview, pageURL).OK() {
		return ""
	}
	return preview
}

// normalizeProposedImage resolves protocol-relative and root-relative
// proposed images against the product page URL.
func normalizeProposedImage(imageURL, productPageURL string) string {
	if productPageURL == "" {
		return imageURL
	}
	if !strings.HasPrefix(imageURL, "//") && !strings.HasPrefix(imageURL, "/") {
		return imageURL
	}

	base := productPageURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return resolveAgainst(base, imageURL)
}

// upgradeImageSize rewrites the resolution segment of a trusted-CDN URL up to
// the high-resolution variant. URLs without a size segment pass through
// unchanged, and the rewrite is idempotent.
func upgradeImageSize(imageURL string) string {
	return sizeSegmentPattern.ReplaceAllString(imageURL, highResSegment)
}

// looksLikeLogo reports whether an image URL smells like site furniture
// (logos, favicons, social preview art) rather than product photography.
func looksLikeLogo(imageURL string) bool {
	lower := strings.ToLower(imageURL)
	for _, kw := range logoKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// onCatalogHost reports whether a page lives on the catalog domain; only
// those pages are worth scraping for CDN candidates.
func onCatalogHost(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Host), catalogHost)
}

func resolveAgainst(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
