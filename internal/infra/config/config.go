package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/config.yaml"

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	SerpAPI   SerpAPIConfig   `yaml:"serpapi"`
	Trip      TripConfig      `yaml:"trip"`
	Itinerary ItineraryConfig `yaml:"itinerary"`
	Cache     CacheConfig     `yaml:"cache"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort replays of POST requests answered with one of Statuses
// (503 when empty). Paths in Exclude are never replayed.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Statuses    []int         `yaml:"statuses"`
	Exclude     []string      `yaml:"exclude"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	ImageModel  string        `yaml:"imageModel"`
	ImageSize   string        `yaml:"imageSize"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// SerpAPIConfig configures flight and hotel lookups.
type SerpAPIConfig struct {
	APIKey   string        `yaml:"apiKey"`
	BaseURL  string        `yaml:"baseUrl"`
	Currency string        `yaml:"currency"`
	Timeout  time.Duration `yaml:"timeout"`
}

// TripConfig controls destination suggestions.
type TripConfig struct {
	Origin           string `yaml:"origin"`
	DestinationCount int    `yaml:"destinationCount"`
	Prompt           string `yaml:"prompt"`
	Concurrency      int    `yaml:"concurrency"`
}

// ItineraryConfig controls daily plan generation.
type ItineraryConfig struct {
	Prompt           string `yaml:"prompt"`
	ImageConcurrency int    `yaml:"imageConcurrency"`
}

// CacheConfig controls the provider quote cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	TTL     time.Duration `yaml:"ttl"`
}

// Load reads configuration from CONFIG_PATH (or configs/config.yaml when present) and
// applies environment overrides. A .env file in the working directory seeds the
// environment without replacing variables that are already set.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(defaultConfigPath); err == nil {
		if err := hydrateFromFile(cfg, defaultConfigPath); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if data, err = tomlToYAML(data); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// tomlToYAML re-encodes a TOML document so both formats share the yaml tags and
// duration strings such as "20s".
func tomlToYAML(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_IMAGE_MODEL"); v != "" {
		cfg.LLM.ImageModel = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("SERPAPI_API_KEY"); v != "" {
		cfg.SerpAPI.APIKey = v
	}
	if v := os.Getenv("SERPAPI_BASE_URL"); v != "" {
		cfg.SerpAPI.BaseURL = v
	}
	if v := os.Getenv("SERPAPI_CURRENCY"); v != "" {
		cfg.SerpAPI.Currency = v
	}
	if v := os.Getenv("TRIP_ORIGIN"); v != "" {
		cfg.Trip.Origin = v
	}
	if v := os.Getenv("TRIP_DESTINATION_COUNT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Trip.DestinationCount = parsed
		}
	}
	if v := os.Getenv("TRIP_CONCURRENCY"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Trip.Concurrency = parsed
		}
	}
	if v := os.Getenv("ITINERARY_IMAGE_CONCURRENCY"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Itinerary.ImageConcurrency = parsed
		}
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = parsed
		}
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address: ":8080",
			// pricing fans out to the flight and hotel providers per candidate
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   120 * time.Second,
			AllowedOrigins: []string{"http://localhost:3000"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 30,
				Burst:             10,
			},
			Retry: RetryConfig{
				Enabled:     false,
				MaxAttempts: 2,
				BaseBackoff: 250 * time.Millisecond,
				Statuses:    []int{503},
				// each of these runs an LLM call and a provider fan-out
				Exclude: []string{
					"/api/v1/trips/suggestions",
					"/api/v1/trips/daily-plan",
					"/get-travel-suggestions/",
					"/generate-daily-plan/",
				},
			},
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			ImageModel:  "dall-e-3",
			ImageSize:   "1024x1024",
			Temperature: 0.7,
			Timeout:     60 * time.Second,
		},
		SerpAPI: SerpAPIConfig{
			BaseURL:  "https://serpapi.com/search",
			Currency: "USD",
			Timeout:  20 * time.Second,
		},
		Trip: TripConfig{
			Origin:           "TLV",
			DestinationCount: 5,
			Prompt:           "You are a travel advisor.",
			Concurrency:      4,
		},
		Itinerary: ItineraryConfig{
			Prompt:           "You are a travel guide and a creative advisor for visual content.",
			ImageConcurrency: 4,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     time.Hour,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
		for _, status := range c.HTTP.Retry.Statuses {
			if status < 500 || status > 599 {
				return fmt.Errorf("http.retry.statuses: %d is not a 5xx status", status)
			}
		}
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if len(strings.TrimSpace(c.Trip.Origin)) != 3 {
		return errors.New("trip.origin must be a three letter airport code")
	}
	if c.Trip.DestinationCount <= 0 {
		return errors.New("trip.destinationCount must be positive")
	}
	if c.Trip.Concurrency <= 0 {
		return errors.New("trip.concurrency must be positive")
	}
	if c.Itinerary.ImageConcurrency <= 0 {
		return errors.New("itinerary.imageConcurrency must be positive")
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Addr) == "" {
		return errors.New("cache.addr cannot be empty when the cache is enabled")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}
	return nil
}
