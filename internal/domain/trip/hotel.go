package trip

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const noAffordableHotelReason = "no affordable hotels found within the budget"

// HotelClient searches hotel offers for a city. Offers come back in provider order.
type HotelClient interface {
	SearchHotels(ctx context.Context, q HotelQuery) ([]HotelOffer, error)
}

// HotelSelector picks the most expensive hotel a candidate can still afford.
type HotelSelector struct {
	client   HotelClient
	currency string
	logger   *slog.Logger
}

// NewHotelSelector wires a selector on top of a hotel provider.
func NewHotelSelector(cfg Config, client HotelClient, logger *slog.Logger) *HotelSelector {
	return &HotelSelector{
		client:   client,
		currency: cfg.Currency,
		logger:   logger.With("component", "trip.hotel_selector"),
	}
}

// Select returns the most expensive offer priced at or below ceiling, or a NotFound marker.
// A negative ceiling short-circuits without calling the provider.
func (s *HotelSelector) Select(ctx context.Context, city, country string, ceiling int, start, end time.Time) HotelResult {
	if ceiling < 0 {
		return hotelNotFound(fmt.Sprintf("flight price exceeds the budget by %d, nothing left for a hotel", -ceiling))
	}

	offers, err := s.client.SearchHotels(ctx, HotelQuery{
		City:     city,
		Country:  country,
		MaxPrice: ceiling,
		CheckIn:  start,
		CheckOut: end,
		Currency: s.currency,
	})
	if err != nil {
		s.logger.Warn("hotel search failed", "city", city, "country", country, "ceiling", ceiling, "error", err)
		return hotelNotFound(fmt.Sprintf("hotel search failed: %v", err))
	}

	offer, ok := SelectHotel(offers, ceiling)
	if !ok {
		s.logger.Debug("no hotel within ceiling", "city", city, "ceiling", ceiling, "offers", len(offers))
		return hotelNotFound(noAffordableHotelReason)
	}
	return hotelFound(offer)
}

// SelectHotel maximizes price subject to price <= ceiling. The first offer reaching the
// maximum wins. Offers above the ceiling are skipped; the listing is never assumed sorted.
func SelectHotel(offers []HotelOffer, ceiling int) (HotelOffer, bool) {
	var (
		best  HotelOffer
		found bool
	)
	for _, offer := range offers {
		if offer.Price > ceiling {
			continue
		}
		if !found || offer.Price > best.Price {
			best = offer
			found = true
		}
	}
	return best, found
}
