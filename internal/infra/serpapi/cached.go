package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/trip-planner/internal/domain/trip"
)

// Cache stores serialized provider responses with a TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Upstream is the pair of lookups the cache sits in front of.
type Upstream interface {
	trip.FlightClient
	trip.HotelClient
}

// CachedClient answers repeated lookups from a cache. Only successful responses are
// stored; failures and flights without a price always reach the provider again.
type CachedClient struct {
	next   Upstream
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedClient decorates next with cache.
func NewCachedClient(next Upstream, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedClient {
	return &CachedClient{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "serpapi.cache"),
	}
}

// CheapestFlight implements trip.FlightClient.
func (c *CachedClient) CheapestFlight(ctx context.Context, origin string, dest trip.Candidate, start, end time.Time) (trip.FlightQuote, error) {
	key := flightKey(origin, dest.AirportCode, start, end)
	var cached trip.FlightQuote
	if c.load(ctx, key, &cached) {
		cached.DestinationLabel = dest.Label()
		return cached, nil
	}

	quote, err := c.next.CheapestFlight(ctx, origin, dest, start, end)
	if err != nil || quote.Price == nil {
		return quote, err
	}
	c.store(ctx, key, quote)
	return quote, nil
}

// SearchHotels implements trip.HotelClient.
func (c *CachedClient) SearchHotels(ctx context.Context, q trip.HotelQuery) ([]trip.HotelOffer, error) {
	key := hotelKey(q)
	var cached []trip.HotelOffer
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	offers, err := c.next.SearchHotels(ctx, q)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, offers)
	return offers, nil
}

func (c *CachedClient) load(ctx context.Context, key string, dst any) bool {
	payload, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("quote cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		c.logger.Warn("quote cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *CachedClient) store(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, payload, c.ttl); err != nil {
		c.logger.Warn("quote cache write failed", "key", key, "error", err)
	}
}

func flightKey(origin, airport string, start, end time.Time) string {
	return fmt.Sprintf("flight:%s:%s:%s:%s",
		strings.ToUpper(origin), strings.ToUpper(airport), start.Format(dateLayout), end.Format(dateLayout))
}

func hotelKey(q trip.HotelQuery) string {
	return fmt.Sprintf("hotels:%s:%s:%s:%s:%d:%s",
		strings.ToLower(q.City), strings.ToLower(q.Country),
		q.CheckIn.Format(dateLayout), q.CheckOut.Format(dateLayout), q.MaxPrice, strings.ToUpper(q.Currency))
}

var (
	_ trip.FlightClient = (*CachedClient)(nil)
	_ trip.HotelClient  = (*CachedClient)(nil)
	_ Upstream          = (*Client)(nil)
)
