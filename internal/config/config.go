package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Port      int
	LogLevel  string
	LogFormat string
	APIToken  string

	TikAPIBaseURL    string
	TikAPIKey        string
	TikAPIAccountKey string

	ExploreCount        int
	CommentLimit        int
	SubtitleLanguage    string
	ListingTimeout      time.Duration
	FetchTimeout        time.Duration
	// RecheckWithHashtags defaults to false: first successful source wins.
	RecheckWithHashtags bool

	LLMProvider     string
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string

	DatabaseURL string
	NatsURL     string
	NatsToken   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	HarvestSchedule string
}

func Load() Config {
	return Config{
		Port:      envInt("PROMPTPIN_PORT", 8760),
		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "json"),
		APIToken:  envStr("PROMPTPIN_API_TOKEN", ""),

		TikAPIBaseURL:    envStr("TIKAPI_BASE_URL", "https://api.tikapi.io"),
		TikAPIKey:        envStr("TIKAPI_KEY", envStr("NEXT_PUBLIC_TIKAPI_KEY", "")),
		TikAPIAccountKey: envStr("TIKAPI_ACCOUNT_KEY", ""),

		ExploreCount:        envInt("EXPLORE_COUNT", 20),
		CommentLimit:        envInt("COMMENT_LIMIT", 20),
		SubtitleLanguage:    envStr("SUBTITLE_LANGUAGE", "eng-US"),
		ListingTimeout:      envDuration("LISTING_TIMEOUT", 30*time.Second),
		FetchTimeout:        envDuration("FETCH_TIMEOUT", 10*time.Second),
		RecheckWithHashtags: envBool("RECHECK_WITH_HASHTAGS", false),

		LLMProvider:     strings.ToLower(envStr("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", ""),
		OpenAIModel:     envStr("OPENAI_MODEL", "gpt-3.5-turbo"),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  envStr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),

		DatabaseURL: envStr("DATABASE_URL", ""),
		NatsURL:     envStr("NATS_URL", ""),
		NatsToken:   envStr("NATS_TOKEN", ""),

		RedisAddr:     envStr("REDIS_ADDR", ""),
		RedisPassword: envStr("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),
		CacheTTL:      envDuration("CACHE_TTL", 10*time.Minute),

		HarvestSchedule: envStr("HARVEST_SCHEDULE", ""),
	}
}

// LoadDotEnv loads the given env files, earlier files taking precedence.
// Variables already in the environment are never overridden and missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ValidationError lists required keys that are unset.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}

// Validate checks the keys a harvest cannot run without: both TikAPI keys
// and the key of the selected LLM provider.
func (c Config) Validate() error {
	var missing []string
	if c.TikAPIKey == "" {
		missing = append(missing, "TIKAPI_KEY")
	}
	if c.TikAPIAccountKey == "" {
		missing = append(missing, "TIKAPI_ACCOUNT_KEY")
	}
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	default:
		missing = append(missing, fmt.Sprintf("LLM_PROVIDER (unknown %q)", c.LLMProvider))
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
