package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/trip-planner/internal/domain/itinerary"
	"github.com/yanqian/trip-planner/internal/domain/trip"
	"github.com/yanqian/trip-planner/internal/infra/config"
	"github.com/yanqian/trip-planner/internal/infra/llm/chatgpt"
	"github.com/yanqian/trip-planner/internal/infra/quotecache"
	"github.com/yanqian/trip-planner/internal/infra/serpapi"
)

func provideTripConfig(cfg *config.Config) trip.Config {
	return trip.Config{
		Model:            cfg.LLM.Model,
		Temperature:      cfg.LLM.Temperature,
		Prompt:           cfg.Trip.Prompt,
		DestinationCount: cfg.Trip.DestinationCount,
		Origin:           strings.ToUpper(strings.TrimSpace(cfg.Trip.Origin)),
		Currency:         cfg.SerpAPI.Currency,
		Concurrency:      cfg.Trip.Concurrency,
	}
}

func provideItineraryConfig(cfg *config.Config) itinerary.Config {
	return itinerary.Config{
		Model:            cfg.LLM.Model,
		Temperature:      cfg.LLM.Temperature,
		Prompt:           cfg.Itinerary.Prompt,
		ImageModel:       cfg.LLM.ImageModel,
		ImageSize:        cfg.LLM.ImageSize,
		ImageConcurrency: cfg.Itinerary.ImageConcurrency,
	}
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
}

func provideSerpAPIClient(cfg *config.Config) (*serpapi.Client, error) {
	return serpapi.NewClient(cfg.SerpAPI.APIKey, cfg.SerpAPI.BaseURL, cfg.SerpAPI.Currency, cfg.SerpAPI.Timeout)
}

// provideQuoteUpstream puts the quote cache in front of SerpAPI when enabled. Valkey is
// preferred; an unreachable instance falls back to process memory.
func provideQuoteUpstream(cfg *config.Config, client *serpapi.Client, logger *slog.Logger) (serpapi.Upstream, func()) {
	noop := func() {}
	if !cfg.Cache.Enabled {
		return client, noop
	}

	opt, err := buildValkeyOptions(cfg.Cache.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return serpapi.NewCachedClient(client, quotecache.NewMemoryCache(), cfg.Cache.TTL, logger), noop
	}
	vk, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return serpapi.NewCachedClient(client, quotecache.NewMemoryCache(), cfg.Cache.TTL, logger), noop
	}

	cache := quotecache.NewValkeyCache(vk, "trip-planner:quotes")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.Ping(ctx); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		vk.Close()
		return serpapi.NewCachedClient(client, quotecache.NewMemoryCache(), cfg.Cache.TTL, logger), noop
	}

	logger.Info("quote cache valkey store enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL)
	return serpapi.NewCachedClient(client, cache, cfg.Cache.TTL, logger), vk.Close
}

func provideFlightClient(upstream serpapi.Upstream) trip.FlightClient {
	return upstream
}

func provideHotelClient(upstream serpapi.Upstream) trip.HotelClient {
	return upstream
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
