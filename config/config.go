package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	OpenAI   OpenAIConfig
	Resolver ResolverConfig
	Leads    LeadsConfig
	PDF      PDFConfig
	Logging  LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OpenAIConfig holds the recommendation model configuration. An empty APIKey
// is allowed: the service still answers resolution, lead, and quote requests,
// and recommendation calls fail with a clear error.
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int64   `mapstructure:"max_tokens"`
}

// ResolverConfig holds outbound-fetch budgets for URL and image resolution
type ResolverConfig struct {
	UserAgent     string        `mapstructure:"user_agent"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
	SearchTimeout time.Duration `mapstructure:"search_timeout"`
	PageTimeout   time.Duration `mapstructure:"page_timeout"`
	MetaTimeout   time.Duration `mapstructure:"meta_timeout"`
	EmbedTimeout  time.Duration `mapstructure:"embed_timeout"`
	RateLimitRPS  float64       `mapstructure:"rate_limit_rps"`
	RateBurst     int           `mapstructure:"rate_burst"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

// LeadsConfig holds lead capture configuration
type LeadsConfig struct {
	CSVPath string `mapstructure:"csv_path"`
}

// PDFConfig holds quote rendering configuration
type PDFConfig struct {
	MaxProducts int `mapstructure:"max_products"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/flexfinder/")

	// Environment variable settings
	v.SetEnvPrefix("FLEXFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Accept the conventional OPENAI_API_KEY name as well
	_ = v.BindEnv("openai.api_key", "FLEXFINDER_OPENAI_API_KEY", "OPENAI_API_KEY")

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Model defaults
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.temperature", 0.4)
	v.SetDefault("openai.max_tokens", 900)

	// Resolver defaults
	v.SetDefault("resolver.probe_timeout", "8s")
	v.SetDefault("resolver.search_timeout", "12s")
	v.SetDefault("resolver.page_timeout", "12s")
	v.SetDefault("resolver.meta_timeout", "10s")
	v.SetDefault("resolver.embed_timeout", "12s")
	v.SetDefault("resolver.rate_limit_rps", 2.0)
	v.SetDefault("resolver.rate_burst", 4)
	v.SetDefault("resolver.cache_ttl", "0") // resolved URLs never expire

	// Lead capture defaults
	v.SetDefault("leads.csv_path", "leads_demo.csv")

	// Quote defaults
	v.SetDefault("pdf.max_products", 4)

	// Logging defaults
	v.SetDefault("logging.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port must not be empty")
	}

	if config.Resolver.RateLimitRPS <= 0 {
		return fmt.Errorf("resolver rate limit must be positive, got: %v", config.Resolver.RateLimitRPS)
	}

	if config.PDF.MaxProducts < 1 {
		return fmt.Errorf("pdf max products must be at least 1, got: %d", config.PDF.MaxProducts)
	}

	return nil
}
