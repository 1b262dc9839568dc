package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flexfinder/backend/internal/domain"
)

// RecommendServiceConfig holds configuration for the recommendation flow
type RecommendServiceConfig struct {
	ProbeTimeout  time.Duration
	SearchTimeout time.Duration
	PageTimeout   time.Duration
	MetaTimeout   time.Duration
	CacheTTL      time.Duration
}

// RecommendService runs the guided-selling flow end to end: ask the model
// for product stubs, then resolve, verify, and inline-embed each one so the
// response renders without any client-side fetches.
type RecommendService struct {
	recommender domain.RecommendationClient
	fetcher     domain.PageFetcher
	extractor   domain.HTMLExtractor

	urlResolver   *URLResolver
	imageResolver *ImageResolver
	embedder      *Embedder

	metaTimeout time.Duration
}

// NewRecommendService creates a new recommendation service with dependencies
func NewRecommendService(cache domain.CacheRepository, fetcher domain.PageFetcher, extractor domain.HTMLExtractor, recommender domain.RecommendationClient, cfg RecommendServiceConfig) *RecommendService {
	if cfg.MetaTimeout == 0 {
		cfg.MetaTimeout = 10 * time.Second
	}

	return &RecommendService{
		recommender: recommender,
		fetcher:     fetcher,
		extractor:   extractor,
		urlResolver: NewURLResolver(cache, fetcher, extractor, URLResolverConfig{
			ProbeTimeout:  cfg.ProbeTimeout,
			SearchTimeout: cfg.SearchTimeout,
			CacheTTL:      cfg.CacheTTL,
		}),
		imageResolver: NewImageResolver(fetcher, extractor, ImageResolverConfig{
			PageTimeout: cfg.PageTimeout,
			MetaTimeout: cfg.MetaTimeout,
		}),
		embedder:    NewEmbedder(fetcher),
		metaTimeout: cfg.MetaTimeout,
	}
}

// Recommend asks the model for recommendations and resolves every returned
// stub. The raw recommendation is returned alongside the resolved products
// so callers can round-trip it into leads and quotes.
func (s *RecommendService) Recommend(ctx context.Context, roomType, platform, needs string) (*domain.Recommendation, []domain.ResolvedProduct, error) {
	reco, err := s.recommender.Recommend(ctx, roomType, platform, needs)
	if err != nil {
		return nil, nil, err
	}

	logrus.Infof("[RECOMMEND] model returned %d products for %s/%s", len(reco.Products), roomType, platform)
	return reco, s.ResolveAll(ctx, reco.Products), nil
}

// ResolveAll resolves every stub sequentially. Resolution work for repeated
// stubs is absorbed by the URL cache.
func (s *RecommendService) ResolveAll(ctx context.Context, stubs []domain.ProductStub) []domain.ResolvedProduct {
	resolved := make([]domain.ResolvedProduct, 0, len(stubs))
	for _, stub := range stubs {
		resolved = append(resolved, s.Resolve(ctx, stub))
	}
	return resolved
}

// Resolve runs one stub through the whole pipeline: page URL, then image,
// then inline embedding, plus page metadata for display. It never fails;
// every step degrades to a usable fallback.
func (s *RecommendService) Resolve(ctx context.Context, stub domain.ProductStub) domain.ResolvedProduct {
	productURL := s.urlResolver.ResolveProductURL(ctx, stub.Name, stub.ProposedProductURL)

	imageSource, _ := s.imageResolver.ResolveImageURL(ctx, stub.ProposedImageURL, productURL)
	embedded := s.embedder.Embed(ctx, imageSource, productURL)

	return domain.ResolvedProduct{
		ProductStub:         stub,
		ResolvedProductURL:  productURL,
		ResolvedImageSource: imageSource,
		EmbeddedImage:       embedded,
		PageMeta:            s.pageMeta(ctx, productURL),
	}
}

// pageMeta fetches OpenGraph metadata for the resolved page, best effort.
func (s *RecommendService) pageMeta(ctx context.Context, pageURL string) *domain.PageMeta {
	if pageURL == "" {
		return nil
	}
	res := s.fetcher.FetchPage(ctx, pageURL, "", s.metaTimeout)
	if !res.OK() {
		return nil
	}
	return s.extractor.ExtractPageMeta(res.Body)
}
