package webfetch

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"

	"github.com/flexfinder/backend/internal/domain"
)

// TrustedImageCDN is the path substring identifying genuine product
// photography on the catalog's image CDN. Anything else on a product page
// (nav sprites, banners, partner logos) is not worth validating.
const TrustedImageCDN = "embed.widencdn.net/img/crestron"

// previewImageKeys are the meta keys scanned for a page preview image, in
// priority order.
var previewImageKeys = []string{"og:image", "twitter:image", "og:image:url"}

// Extractor pulls structured hints out of fetched HTML. It never executes
// scripts and never returns errors: unparseable input yields empty results,
// which the engines treat like any other dead end.
type Extractor struct{}

// NewExtractor creates a new HTML extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractPreviewImage returns the page's preview image from its meta tags,
// resolved against pageURL, or "" when none is present. For each key a
// property= match is preferred over name=; the first key whose tag carries
// content wins.
func (e *Extractor) ExtractPreviewImage(html []byte, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return ""
	}

	for _, key := range previewImageKeys {
		content, found := metaContent(doc, "property", key)
		if !found {
			content, _ = metaContent(doc, "name", key)
		}
		if content != "" {
			return resolveRef(pageURL, content)
		}
	}
	return ""
}

// metaContent returns the content attribute of the first meta tag whose
// attr equals key, and whether such a tag exists at all.
func metaContent(doc *goquery.Document, attr, key string) (string, bool) {
	sel := doc.Find(fmt.Sprintf(`meta[%s=%q]`, attr, key))
	if sel.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(sel.First().AttrOr("content", "")), true
}

// ExtractCDNCandidates returns trusted-CDN image URLs referenced by the
// page: <img> src/data-src first, then <source> srcset entries, each entry's
// first whitespace-delimited token. Document order, deduplicated with the
// first occurrence kept.
func (e *Extractor) ExtractCDNCandidates(html []byte, pageURL string) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	var candidates []string

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"src", "data-src"} {
			src := strings.TrimSpace(s.AttrOr(attr, ""))
			if src == "" {
				continue
			}
			if abs := resolveRef(pageURL, src); strings.Contains(abs, TrustedImageCDN) {
				candidates = append(candidates, abs)
			}
		}
	})

	doc.Find("source").Each(func(_ int, s *goquery.Selection) {
		srcset := s.AttrOr("srcset", "")
		if srcset == "" {
			return
		}
		for _, entry := range strings.Split(srcset, ",") {
			fields := strings.Fields(entry)
			if len(fields) == 0 {
				continue
			}
			if abs := resolveRef(pageURL, fields[0]); strings.Contains(abs, TrustedImageCDN) {
				candidates = append(candidates, abs)
			}
		}
	})

	return dedupe(candidates)
}

// ExtractCatalogAnchors returns every anchor href on the page resolved
// against baseURL, in document order. The engines apply their own filters on
// top.
func (e *Extractor) ExtractCatalogAnchors(html []byte, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	var anchors []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		anchors = append(anchors, resolveRef(baseURL, href))
	})
	return anchors
}

// ExtractPageMeta returns the page's OpenGraph metadata, or nil when nothing
// useful parses.
func (e *Extractor) ExtractPageMeta(html []byte) *domain.PageMeta {
	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(bytes.NewReader(html)); err != nil {
		return nil
	}
	if og.Title == "" && og.SiteName == "" && og.Description == "" {
		return nil
	}
	return &domain.PageMeta{
		Title:       og.Title,
		SiteName:    og.SiteName,
		Description: og.Description,
	}
}

// resolveRef resolves a possibly-relative ref against base, falling back to
// the raw ref when either side does not parse.
func resolveRef(base, ref string) string {
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

// dedupe removes duplicate URLs, keeping the first occurrence of each.
func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	uniq := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		uniq = append(uniq, u)
	}
	return uniq
}
