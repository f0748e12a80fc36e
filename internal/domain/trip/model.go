package trip

import (
	"fmt"
	"time"

	"github.com/yanqian/trip-planner/pkg/metrics"
)

// Request captures the payload accepted by the suggestion endpoint.
type Request struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Budget    int    `json:"budget"`
	TripType  string `json:"tripType"`
}

// Response is serialized back to API consumers.
type Response struct {
	Suggestions []PricedCandidate   `json:"suggestions"`
	TokenUsage  *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// Candidate is a parsed, unpriced destination suggestion.
type Candidate struct {
	City        string
	Country     string
	AirportCode string
	Summary     *string
}

// Label renders the "City, Country" form used in reports and error reasons.
func (c Candidate) Label() string {
	return fmt.Sprintf("%s, %s", c.City, c.Country)
}

// FlightQuote is the cheapest round trip found for a candidate. A nil Price means no flight was found.
type FlightQuote struct {
	DestinationLabel string `json:"destination"`
	Price            *int   `json:"price,omitempty"`
}

// HotelQuery parameterizes a hotel offer search.
type HotelQuery struct {
	City     string
	Country  string
	MaxPrice int
	CheckIn  time.Time
	CheckOut time.Time
	Currency string
}

// HotelOffer is a single priced stay for the whole date range.
type HotelOffer struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// HotelResult is either an offer or a NotFound marker with a human readable reason.
type HotelResult struct {
	Offer          *HotelOffer
	NotFoundReason string
}

// Found reports whether an offer was selected.
func (r HotelResult) Found() bool {
	return r.Offer != nil
}

func hotelFound(offer HotelOffer) HotelResult {
	return HotelResult{Offer: &offer}
}

func hotelNotFound(reason string) HotelResult {
	return HotelResult{NotFoundReason: reason}
}

// Kind tags the PricedCandidate variant.
type Kind string

const (
	// KindPriced carries flight, hotel and total prices.
	KindPriced Kind = "priced"
	// KindFlightOnly has a flight price but no affordable hotel.
	KindFlightOnly Kind = "flight_only"
	// KindUnpriced has no flight price at all.
	KindUnpriced Kind = "unpriced"
)

// PricedCandidate is the per-candidate outcome of the pricing pipeline.
// Build it through NewPriced, NewFlightOnly or NewUnpriced.
type PricedCandidate struct {
	Kind        Kind    `json:"kind"`
	Destination string  `json:"destination"`
	Summary     *string `json:"summary,omitempty"`
	FlightPrice *int    `json:"flightPrice"`
	HotelName   string  `json:"hotelName,omitempty"`
	HotelPrice  *int    `json:"hotelPrice"`
	TotalPrice  *int    `json:"totalPrice"`
	FlightError string  `json:"flightError,omitempty"`
	HotelError  string  `json:"hotelError,omitempty"`
}

// NewPriced builds the fully priced variant; the total is always flight + hotel.
func NewPriced(c Candidate, flightPrice int, hotel HotelOffer) PricedCandidate {
	total := flightPrice + hotel.Price
	return PricedCandidate{
		Kind:        KindPriced,
		Destination: c.Label(),
		Summary:     c.Summary,
		FlightPrice: intPtr(flightPrice),
		HotelName:   hotel.Name,
		HotelPrice:  intPtr(hotel.Price),
		TotalPrice:  &total,
	}
}

// NewFlightOnly builds the variant where no hotel fits the remaining budget.
func NewFlightOnly(c Candidate, flightPrice int, hotelErr string) PricedCandidate {
	return PricedCandidate{
		Kind:        KindFlightOnly,
		Destination: c.Label(),
		Summary:     c.Summary,
		FlightPrice: intPtr(flightPrice),
		HotelError:  hotelErr,
	}
}

// NewUnpriced builds the variant where no flight price is available.
func NewUnpriced(c Candidate, flightErr string) PricedCandidate {
	return PricedCandidate{
		Kind:        KindUnpriced,
		Destination: c.Label(),
		Summary:     c.Summary,
		FlightError: flightErr,
	}
}

// Validate checks the shape invariant of the variant.
func (p PricedCandidate) Validate() error {
	switch p.Kind {
	case KindPriced:
		if p.FlightPrice == nil || p.HotelPrice == nil || p.TotalPrice == nil {
			return fmt.Errorf("%s: priced record is missing a price", p.Destination)
		}
		if *p.TotalPrice != *p.FlightPrice+*p.HotelPrice {
			return fmt.Errorf("%s: total %d != flight %d + hotel %d", p.Destination, *p.TotalPrice, *p.FlightPrice, *p.HotelPrice)
		}
	case KindFlightOnly:
		if p.FlightPrice == nil {
			return fmt.Errorf("%s: flight-only record without flight price", p.Destination)
		}
		if p.HotelPrice != nil || p.TotalPrice != nil {
			return fmt.Errorf("%s: flight-only record carries hotel or total price", p.Destination)
		}
	case KindUnpriced:
		if p.FlightPrice != nil || p.HotelPrice != nil || p.TotalPrice != nil {
			return fmt.Errorf("%s: unpriced record carries a price", p.Destination)
		}
	default:
		return fmt.Errorf("%s: unknown kind %q", p.Destination, p.Kind)
	}
	return nil
}

// Config wires runtime dependencies for the trip domain.
type Config struct {
	Model            string
	Temperature      float32
	Prompt           string
	DestinationCount int
	Origin           string
	Currency         string
	Concurrency      int
}

func intPtr(v int) *int {
	return &v
}
