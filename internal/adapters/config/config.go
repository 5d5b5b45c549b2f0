package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"stocksent/pkg/errors"
)

type Config struct {
	App           AppConfig
	Reddit        RedditConfig
	Scrape        ScrapeConfig
	Retry         RetryConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"stocksent"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// Timeout for outbound HTTP calls to market data and tweet search
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
}

// RedditConfig holds the API credentials for the Reddit adapter. All three
// values must be present; the adapter refuses to construct without them.
type RedditConfig struct {
	ClientID     string        `envconfig:"REDDIT_CLIENT_ID"`
	ClientSecret string        `envconfig:"REDDIT_CLIENT_SECRET"`
	UserAgent    string        `envconfig:"REDDIT_USER_AGENT"`
	BaseURL      string        `envconfig:"REDDIT_BASE_URL" default:"https://oauth.reddit.com"`
	AuthURL      string        `envconfig:"REDDIT_AUTH_URL" default:"https://www.reddit.com/api/v1/access_token"`
	Timeout      time.Duration `envconfig:"REDDIT_HTTP_TIMEOUT" default:"30s"`
	// Requests per second against the Reddit API
	RequestRate float64 `envconfig:"REDDIT_REQUEST_RATE" default:"1"`
}

// Validate checks the credential triple required by the Reddit API
func (c RedditConfig) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" || c.UserAgent == "" {
		return errors.Wrap(errors.ErrMissingCredentials,
			"REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET and REDDIT_USER_AGENT must be set")
	}
	return nil
}

// ScrapeConfig holds pipeline run defaults; CLI flags override these
type ScrapeConfig struct {
	Subreddit    string `envconfig:"SCRAPE_SUBREDDIT" default:"wallstreetbets"`
	PostCount    int    `envconfig:"SCRAPE_POST_COUNT" default:"50"`
	CommentCount int    `envconfig:"SCRAPE_COMMENT_COUNT" default:"20"`
	MinScore     int    `envconfig:"SCRAPE_MIN_SCORE" default:"10"`
	TweetCount   int    `envconfig:"SCRAPE_TWEET_COUNT" default:"1000"`
	OutputDir    string `envconfig:"SCRAPE_OUTPUT_DIR" default:"data"`
}

type RetryConfig struct {
	MaxAttempts int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"5"`
	MinBackoff  time.Duration `envconfig:"RETRY_MIN_BACKOFF" default:"1s"`
	MaxBackoff  time.Duration `envconfig:"RETRY_MAX_BACKOFF" default:"60s"`
	Multiplier  float64       `envconfig:"RETRY_MULTIPLIER" default:"2.0"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
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
