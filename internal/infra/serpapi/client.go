package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/trip-planner/internal/domain/trip"
)

const (
	defaultBaseURL  = "https://serpapi.com/search"
	defaultCurrency = "USD"
	dateLayout      = "2006-01-02"
	// sort_by=8 orders google_hotels results by rating; price order is never assumed.
	hotelSortByRating = "8"
)

// Client queries the SerpAPI Google Flights and Google Hotels engines.
type Client struct {
	apiKey     string
	baseURL    string
	currency   string
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(apiKey, baseURL, currency string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("serpapi api key cannot be empty")
	}
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if strings.TrimSpace(currency) == "" {
		currency = defaultCurrency
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(base, "/"),
		currency: strings.ToUpper(currency),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// CheapestFlight returns the lowest round trip price Google Flights reports for the dates.
// A response without price insights yields a quote with a nil price.
func (c *Client) CheapestFlight(ctx context.Context, origin string, dest trip.Candidate, start, end time.Time) (trip.FlightQuote, error) {
	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", origin)
	params.Set("arrival_id", dest.AirportCode)
	params.Set("outbound_date", start.Format(dateLayout))
	params.Set("return_date", end.Format(dateLayout))
	params.Set("currency", c.currency)

	body, err := c.get(ctx, params)
	if err != nil {
		return trip.FlightQuote{}, err
	}

	var raw flightsResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return trip.FlightQuote{}, fmt.Errorf("decode flights response: %w", err)
	}

	quote := trip.FlightQuote{DestinationLabel: dest.Label()}
	if raw.PriceInsights != nil {
		quote.Price = wholeUnits(raw.PriceInsights.LowestPrice)
	}
	return quote, nil
}

// SearchHotels lists hotel offers in provider order, priced for the whole stay.
// Properties without a name or a total rate are dropped.
func (c *Client) SearchHotels(ctx context.Context, q trip.HotelQuery) ([]trip.HotelOffer, error) {
	currency := c.currency
	if q.Currency != "" {
		currency = strings.ToUpper(q.Currency)
	}
	params := url.Values{}
	params.Set("engine", "google_hotels")
	params.Set("q", fmt.Sprintf("hotels in %s, %s", q.City, q.Country))
	params.Set("check_in_date", q.CheckIn.Format(dateLayout))
	params.Set("check_out_date", q.CheckOut.Format(dateLayout))
	params.Set("currency", currency)
	params.Set("sort_by", hotelSortByRating)
	if q.MaxPrice > 0 {
		params.Set("max_price", strconv.Itoa(q.MaxPrice))
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var raw hotelsResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode hotels response: %w", err)
	}
	return normalizeProperties(raw.Properties), nil
}

func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("api_key", c.apiKey)
	endpoint := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build serpapi request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("serpapi request error: engine=%s status=%d body=%s", params.Get("engine"), resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read serpapi response: %w", err)
	}

	var status apiStatus
	if err := json.Unmarshal(body, &status); err == nil && status.Error != "" {
		return nil, fmt.Errorf("serpapi error: %s", status.Error)
	}
	return body, nil
}

type apiStatus struct {
	Error string `json:"error"`
}

type flightsResponse struct {
	PriceInsights *priceInsights `json:"price_insights"`
}

type priceInsights struct {
	LowestPrice *float64 `json:"lowest_price"`
}

type hotelsResponse struct {
	Properties []property `json:"properties"`
}

type property struct {
	Name      string `json:"name"`
	TotalRate *rate  `json:"total_rate"`
}

type rate struct {
	ExtractedLowest *float64 `json:"extracted_lowest"`
}

func normalizeProperties(props []property) []trip.HotelOffer {
	offers := make([]trip.HotelOffer, 0, len(props))
	for _, p := range props {
		name := strings.TrimSpace(p.Name)
		if name == "" || p.TotalRate == nil {
			continue
		}
		price := wholeUnits(p.TotalRate.ExtractedLowest)
		if price == nil {
			continue
		}
		offers = append(offers, trip.HotelOffer{Name: name, Price: *price})
	}
	return offers
}

// wholeUnits rounds a provider price to whole currency units; non-positive prices are absent.
func wholeUnits(v *float64) *int {
	if v == nil || *v <= 0 || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	rounded := int(math.Round(*v))
	return &rounded
}
