package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"delphi/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	AI            AIConfig
	MarketData    MarketDataConfig
	Pipeline      PipelineConfig
	Cache         CacheConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"delphi"`
	Version  string `envconfig:"APP_VERSION" default:"0.1.0"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8000"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AIConfig struct {
	GeminiKey       string        `envconfig:"GEMINI_API_KEY"`
	OpenAIKey       string        `envconfig:"OPENAI_API_KEY"`
	ClaudeKey       string        `envconfig:"CLAUDE_API_KEY"`
	DeepSeekKey     string        `envconfig:"DEEPSEEK_API_KEY"`
	DefaultProvider string        `envconfig:"DEFAULT_AI_PROVIDER" default:"gemini"`
	FastModel       string        `envconfig:"AI_FAST_MODEL" default:"gemini-2.5-flash"`
	DeepModel       string        `envconfig:"AI_DEEP_MODEL" default:"gemini-2.5-pro"`
	RequestTimeout  time.Duration `envconfig:"AI_REQUEST_TIMEOUT" default:"120s"`
	RequestsPerMin  int           `envconfig:"AI_REQUESTS_PER_MINUTE" default:"60"`
}

type MarketDataConfig struct {
	FMPAPIKey          string        `envconfig:"FMP_API_KEY"`
	FMPBaseURL         string        `envconfig:"FMP_BASE_URL" default:"https://financialmodelingprep.com"`
	AlphaVantageAPIKey string        `envconfig:"ALPHA_VANTAGE_API_KEY"`
	AlphaVantageURL    string        `envconfig:"ALPHA_VANTAGE_BASE_URL" default:"https://www.alphavantage.co/query"`
	RequestTimeout     time.Duration `envconfig:"MARKET_DATA_TIMEOUT" default:"30s"`
	RequestsPerMin     int           `envconfig:"MARKET_DATA_REQUESTS_PER_MINUTE" default:"30"`
	CandleLookbackDays int           `envconfig:"MARKET_DATA_CANDLE_LOOKBACK_DAYS" default:"90"`
	NewsLookbackDays   int           `envconfig:"MARKET_DATA_NEWS_LOOKBACK_DAYS" default:"7"`
	NewsArticleLimit   int           `envconfig:"MARKET_DATA_NEWS_ARTICLE_LIMIT" default:"50"`
}

type PipelineConfig struct {
	RunTimeout time.Duration `envconfig:"PIPELINE_RUN_TIMEOUT" default:"300s"`
}

type CacheConfig struct {
	Directory string `envconfig:"CACHE_DIRECTORY" default:"analysis_cache"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
