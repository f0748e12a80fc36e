package trip

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// FlightClient looks up the cheapest round trip from origin to a candidate.
type FlightClient interface {
	CheapestFlight(ctx context.Context, origin string, dest Candidate, start, end time.Time) (FlightQuote, error)
}

// Pricer prices every candidate with a flight and then a hotel bounded by the remaining budget.
type Pricer struct {
	cfg     Config
	flights FlightClient
	hotels  *HotelSelector
	logger  *slog.Logger
}

// NewPricer wires the pricing orchestrator.
func NewPricer(cfg Config, flights FlightClient, hotels *HotelSelector, logger *slog.Logger) *Pricer {
	return &Pricer{
		cfg:     cfg,
		flights: flights,
		hotels:  hotels,
		logger:  logger.With("component", "trip.pricer"),
	}
}

// PriceCandidates returns one record per candidate, in input order. Candidates are priced
// concurrently; a failure for one candidate is reported inline and never aborts the others.
func (p *Pricer) PriceCandidates(ctx context.Context, candidates []Candidate, start, end time.Time, budget int) []PricedCandidate {
	results := make([]PricedCandidate, len(candidates))

	var group errgroup.Group
	group.SetLimit(p.concurrency())
	for i, candidate := range candidates {
		i, candidate := i, candidate
		group.Go(func() error {
			results[i] = p.priceCandidate(ctx, candidate, start, end, budget)
			return nil
		})
	}
	_ = group.Wait()

	return results
}

func (p *Pricer) priceCandidate(ctx context.Context, c Candidate, start, end time.Time, budget int) PricedCandidate {
	quote, err := p.flights.CheapestFlight(ctx, p.cfg.Origin, c, start, end)
	if err != nil {
		p.logger.Warn("flight lookup failed", "destination", c.Label(), "airport", c.AirportCode, "error", err)
		quote = FlightQuote{DestinationLabel: c.Label()}
	}
	if quote.Price == nil {
		return NewUnpriced(c, fmt.Sprintf("no flights found for %s", c.Label()))
	}

	flightPrice := *quote.Price
	remaining := budget - flightPrice
	hotel := p.hotels.Select(ctx, c.City, c.Country, remaining, start, end)
	if !hotel.Found() {
		return NewFlightOnly(c, flightPrice, hotel.NotFoundReason)
	}
	return NewPriced(c, flightPrice, *hotel.Offer)
}

func (p *Pricer) concurrency() int {
	if p.cfg.Concurrency > 0 {
		return p.cfg.Concurrency
	}
	return defaultConcurrency
}
