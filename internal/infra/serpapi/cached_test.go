package serpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/trip-planner/internal/domain/trip"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

type countingUpstream struct {
	flightCalls int
	hotelCalls  int
	price       *int
	flightErr   error
	hotelErr    error
	offers      []trip.HotelOffer
}

func (u *countingUpstream) CheapestFlight(_ context.Context, _ string, dest trip.Candidate, _, _ time.Time) (trip.FlightQuote, error) {
	u.flightCalls++
	if u.flightErr != nil {
		return trip.FlightQuote{}, u.flightErr
	}
	return trip.FlightQuote{DestinationLabel: dest.Label(), Price: u.price}, nil
}

func (u *countingUpstream) SearchHotels(_ context.Context, _ trip.HotelQuery) ([]trip.HotelOffer, error) {
	u.hotelCalls++
	if u.hotelErr != nil {
		return nil, u.hotelErr
	}
	return u.offers, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedClientServesRepeatFlightFromCache(t *testing.T) {
	price := 300
	upstream := &countingUpstream{price: &price}
	client := NewCachedClient(upstream, newMapCache(), time.Hour, discardLogger())
	paris := trip.Candidate{City: "Paris", Country: "France", AirportCode: "CDG"}

	for i := 0; i < 3; i++ {
		quote, err := client.CheapestFlight(context.Background(), "TLV", paris, testStart, testEnd)
		require.NoError(t, err)
		require.Equal(t, 300, *quote.Price)
		require.Equal(t, "Paris, France", quote.DestinationLabel)
	}
	require.Equal(t, 1, upstream.flightCalls)
}

func TestCachedClientDoesNotCacheFailures(t *testing.T) {
	upstream := &countingUpstream{flightErr: errors.New("boom"), hotelErr: errors.New("down")}
	client := NewCachedClient(upstream, newMapCache(), time.Hour, discardLogger())
	rome := trip.Candidate{City: "Rome", Country: "Italy", AirportCode: "FCO"}

	for i := 0; i < 2; i++ {
		_, err := client.CheapestFlight(context.Background(), "TLV", rome, testStart, testEnd)
		require.Error(t, err)
		_, err = client.SearchHotels(context.Background(), trip.HotelQuery{City: "Rome", Country: "Italy"})
		require.Error(t, err)
	}
	require.Equal(t, 2, upstream.flightCalls)
	require.Equal(t, 2, upstream.hotelCalls)
}

func TestCachedClientDoesNotCacheMissingPrice(t *testing.T) {
	upstream := &countingUpstream{}
	client := NewCachedClient(upstream, newMapCache(), time.Hour, discardLogger())
	oslo := trip.Candidate{City: "Oslo", Country: "Norway", AirportCode: "OSL"}

	for i := 0; i < 2; i++ {
		quote, err := client.CheapestFlight(context.Background(), "TLV", oslo, testStart, testEnd)
		require.NoError(t, err)
		require.Nil(t, quote.Price)
	}
	require.Equal(t, 2, upstream.flightCalls)
}

func TestCachedClientHotelsKeyedByCeiling(t *testing.T) {
	upstream := &countingUpstream{offers: []trip.HotelOffer{{Name: "A", Price: 500}}}
	client := NewCachedClient(upstream, newMapCache(), time.Hour, discardLogger())
	q := trip.HotelQuery{City: "Paris", Country: "France", MaxPrice: 700, CheckIn: testStart, CheckOut: testEnd}

	offers, err := client.SearchHotels(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, upstream.offers, offers)
	_, err = client.SearchHotels(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, 1, upstream.hotelCalls)

	q.MaxPrice = 600
	_, err = client.SearchHotels(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, 2, upstream.hotelCalls)
}

func TestCachedClientFallsThroughOnCacheError(t *testing.T) {
	price := 120
	upstream := &countingUpstream{price: &price}
	cache := newMapCache()
	cache.getErr = errors.New("connection refused")
	client := NewCachedClient(upstream, cache, time.Hour, discardLogger())

	quote, err := client.CheapestFlight(context.Background(), "TLV", trip.Candidate{City: "Athens", Country: "Greece", AirportCode: "ATH"}, testStart, testEnd)
	require.NoError(t, err)
	require.Equal(t, 120, *quote.Price)
	require.Equal(t, 1, upstream.flightCalls)
}
