package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the BrandBeacon server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Providers ProvidersConfig
	Analysis  AnalysisConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// ProvidersConfig configures the answer providers. A provider is enabled when
// its API key is set; at least one must be enabled.
type ProvidersConfig struct {
	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	Gemini     GeminiConfig
	Perplexity PerplexityConfig
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type PerplexityConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// AnalysisConfig tunes the job pipeline.
type AnalysisConfig struct {
	DefaultQueryCount int
	BatchSize         int
	BatchTimeout      time.Duration
	MaxConcurrent     int
	QueryCacheTTL     time.Duration
	ResultCacheTTL    time.Duration
	ArtifactCacheTTL  time.Duration
}

// Load reads configuration from environment variables and returns a validated
// Config. Returns an error with a descriptive message if any required value
// is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("BRANDBEACON_PORT", 8080),
			Env:  envString("BRANDBEACON_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				Model:   envString("OPENAI_MODEL", "gpt-4-turbo-preview"),
				Timeout: envDurationSecs("OPENAI_TIMEOUT_SECS", 15*time.Second),
			},
			Anthropic: AnthropicConfig{
				APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
				BaseURL: envString("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
				Model:   envString("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
				Timeout: envDurationSecs("ANTHROPIC_TIMEOUT_SECS", 15*time.Second),
			},
			Gemini: GeminiConfig{
				APIKey:  os.Getenv("GOOGLE_API_KEY"),
				BaseURL: envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1"),
				Model:   envString("GEMINI_MODEL", "gemini-pro"),
				Timeout: envDurationSecs("GEMINI_TIMEOUT_SECS", 12*time.Second),
			},
			Perplexity: PerplexityConfig{
				APIKey:  os.Getenv("PERPLEXITY_API_KEY"),
				BaseURL: envString("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
				Model:   envString("PERPLEXITY_MODEL", "llama-3.1-sonar-large-128k-online"),
				Timeout: envDurationSecs("PERPLEXITY_TIMEOUT_SECS", 12*time.Second),
			},
		},
		Analysis: AnalysisConfig{
			DefaultQueryCount: envInt("ANALYSIS_DEFAULT_QUERY_COUNT", 60),
			BatchSize:         envInt("ANALYSIS_BATCH_SIZE", 5),
			BatchTimeout:      envDurationSecs("ANALYSIS_BATCH_TIMEOUT_SECS", 20*time.Second),
			MaxConcurrent:     envInt("ANALYSIS_MAX_CONCURRENT", 16),
			QueryCacheTTL:     envDuration("ANALYSIS_QUERY_CACHE_TTL", 24*time.Hour),
			ResultCacheTTL:    envDuration("ANALYSIS_RESULT_CACHE_TTL", 24*time.Hour),
			ArtifactCacheTTL:  envDuration("ANALYSIS_ARTIFACT_CACHE_TTL", time.Hour),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	p := c.Providers
	if p.OpenAI.APIKey == "" && p.Anthropic.APIKey == "" && p.Gemini.APIKey == "" && p.Perplexity.APIKey == "" {
		return fmt.Errorf("at least one provider API key is required (OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY, PERPLEXITY_API_KEY)")
	}

	if c.Analysis.BatchSize <= 0 {
		return fmt.Errorf("ANALYSIS_BATCH_SIZE must be positive, got %d", c.Analysis.BatchSize)
	}
	if c.Analysis.BatchTimeout <= 0 {
		return fmt.Errorf("ANALYSIS_BATCH_TIMEOUT_SECS must be positive")
	}
	if c.Analysis.DefaultQueryCount <= 0 {
		return fmt.Errorf("ANALYSIS_DEFAULT_QUERY_COUNT must be positive, got %d", c.Analysis.DefaultQueryCount)
	}

	return nil
}

// Enabled reports which provider names have API keys configured.
func (p ProvidersConfig) Enabled() []string {
	var names []string
	if p.OpenAI.APIKey != "" {
		names = append(names, "openai")
	}
	if p.Anthropic.APIKey != "" {
		names = append(names, "anthropic")
	}
	if p.Gemini.APIKey != "" {
		names = append(names, "gemini")
	}
	if p.Perplexity.APIKey != "" {
		names = append(names, "perplexity")
	}
	return names
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
