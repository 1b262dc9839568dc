package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/flexfinder/backend/config"
	httpDelivery "github.com/flexfinder/backend/internal/delivery/http"
	"github.com/flexfinder/backend/internal/infrastructure/cache"
	"github.com/flexfinder/backend/internal/infrastructure/leadstore"
	"github.com/flexfinder/backend/internal/infrastructure/llm"
	"github.com/flexfinder/backend/internal/infrastructure/pdfgen"
	"github.com/flexfinder/backend/internal/infrastructure/webfetch"
	"github.com/flexfinder/backend/internal/usecase"
)

const version = "1.0.0"

func main() {
	// A local .env is optional; deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging.Level)

	logrus.Infof("Starting FlexFinder Backend v%s", version)
	logrus.Infof("Environment: %s", cfg.Server.Environment)
	logrus.Infof("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()

	fetcher := webfetch.NewClient(webfetch.ClientConfig{
		UserAgent:    cfg.Resolver.UserAgent,
		ProbeTimeout: cfg.Resolver.ProbeTimeout,
		EmbedTimeout: cfg.Resolver.EmbedTimeout,
		RateLimitRPS: cfg.Resolver.RateLimitRPS,
		RateBurst:    cfg.Resolver.RateBurst,
	})
	extractor := webfetch.NewExtractor()

	recommender := llm.NewClient(llm.ClientConfig{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
	})
	if cfg.OpenAI.APIKey != "" {
		logrus.Infof("Recommendation model: %s", cfg.OpenAI.Model)
	} else {
		logrus.Warn("OPENAI_API_KEY is not set - recommendation requests will fail")
	}

	leads := leadstore.NewCSVStore(cfg.Leads.CSVPath)
	logrus.Infof("Lead log: %s", cfg.Leads.CSVPath)

	quotes := pdfgen.NewRenderer(fetcher, pdfgen.RendererConfig{
		MaxProducts: cfg.PDF.MaxProducts,
	})

	// Initialize usecase layer
	service := usecase.NewRecommendService(
		memoryCache,
		fetcher,
		extractor,
		recommender,
		usecase.RecommendServiceConfig{
			ProbeTimeout:  cfg.Resolver.ProbeTimeout,
			SearchTimeout: cfg.Resolver.SearchTimeout,
			PageTimeout:   cfg.Resolver.PageTimeout,
			MetaTimeout:   cfg.Resolver.MetaTimeout,
			CacheTTL:      cfg.Resolver.CacheTTL,
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(service, leads, quotes, version)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logrus.Infof("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}

// setupLogging configures the process-wide logger from config
func setupLogging(level string) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", level)
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}
