package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/flexfinder/backend/internal/domain"
)

// PlaceholderImageURL is the generic product image used when no real image
// survives resolution.
const PlaceholderImageURL = "https://upload.wikimedia.org/wikipedia/commons/3/3f/Placeholder_view_vector.svg"

// Embedder turns resolved image URLs into self-contained data URIs so
// rendered product cards never depend on hotlinking.
type Embedder struct {
	fetcher domain.PageFetcher
}

// NewEmbedder creates a new image embedder
func NewEmbedder(fetcher domain.PageFetcher) *Embedder {
	return &Embedder{fetcher: fetcher}
}

// Embed downloads imageURL and encodes it as a data URI. It never fails:
// when the image cannot be fetched the placeholder is inlined instead, and
// when even that fails the placeholder's plain remote URL is returned.
func (e *Embedder) Embed(ctx context.Context, imageURL, referer string) string {
	if imageURL != "" {
		res := e.fetcher.DownloadImage(ctx, imageURL, referer)
		if res.OK() && len(res.Body) > 0 {
			return dataURI(res.Body, contentTypeOrDefault(res.ContentType, "image/jpeg"))
		}
		logrus.Debugf("[EMBED] could not inline %s, using placeholder", imageURL)
	}

	res := e.fetcher.DownloadImage(ctx, PlaceholderImageURL, "")
	if res.OK() && len(res.Body) > 0 {
		return dataURI(res.Body, contentTypeOrDefault(res.ContentType, "image/svg+xml"))
	}
	return PlaceholderImageURL
}

// dataURI encodes raw image bytes for inline transport.
func dataURI(content []byte, contentType string) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(content))
}

// contentTypeOrDefault strips parameters from a content-type header value,
// falling back when the header is absent.
func contentTypeOrDefault(header, fallback string) string {
	ct := strings.TrimSpace(strings.Split(header, ";")[0])
	if ct == "" {
		return fallback
	}
	return ct
}
