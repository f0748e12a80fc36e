package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/trip-planner/internal/domain/itinerary"
	"github.com/yanqian/trip-planner/internal/domain/trip"
	"github.com/yanqian/trip-planner/internal/infra/config"
	apperrors "github.com/yanqian/trip-planner/pkg/errors"
)

func TestRouter_SuggestSuccess(t *testing.T) {
	summary := "City of light"
	resp := trip.Response{Suggestions: []trip.PricedCandidate{
		trip.NewPriced(trip.Candidate{City: "Paris", Country: "France", AirportCode: "CDG", Summary: &summary}, 300, trip.HotelOffer{Name: "Le Grand", Price: 650}),
		trip.NewUnpriced(trip.Candidate{City: "Oslo", Country: "Norway", AirportCode: "OSL"}, "no flights found for Oslo, Norway"),
	}}
	tripSvc := &stubTripService{
		suggestFn: func(ctx context.Context, req trip.Request) (trip.Response, error) {
			require.Equal(t, trip.Request{StartDate: "2024-06-01", EndDate: "2024-06-08", Budget: 1000, TripType: "romantic"}, req)
			return resp, nil
		},
	}

	recorder := performRequest("/api/v1/trips/suggestions", `{"startDate":"2024-06-01","endDate":"2024-06-08","budget":1000,"tripType":"romantic"}`, newRouterUnderTest(t, tripSvc, &stubItineraryService{}))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotEmpty(t, recorder.Header().Get(requestIDHeader))

	var got trip.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, resp, got)
}

func TestRouter_SuggestInvalidJSON(t *testing.T) {
	recorder := performRequest("/api/v1/trips/suggestions", `{"budget":"lots"}`, newRouterUnderTest(t, &stubTripService{}, &stubItineraryService{}))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
	require.Equal(t, recorder.Header().Get(requestIDHeader), errBody["error"]["requestId"])
}

func TestRouter_DomainErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", apperrors.Wrap(apperrors.CodeInvalidInput, "budget must be positive", nil), http.StatusBadRequest, "invalid_request"},
		{"llm failure", apperrors.Wrap(apperrors.CodeLLM, "chatgpt request failed", errors.New("timeout")), http.StatusBadGateway, "llm_error"},
		{"invariant", apperrors.Wrap(apperrors.CodeInvariantViolation, "bad record", nil), http.StatusInternalServerError, "invariant_violation"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tripSvc := &stubTripService{
				suggestFn: func(ctx context.Context, req trip.Request) (trip.Response, error) {
					return trip.Response{}, tc.err
				},
			}
			recorder := performRequest("/api/v1/trips/suggestions", `{"budget":1}`, newRouterUnderTest(t, tripSvc, &stubItineraryService{}))
			require.Equal(t, tc.status, recorder.Code)
			require.Equal(t, tc.code, decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
		})
	}
}

func TestRouter_DailyPlanSuccess(t *testing.T) {
	resp := itinerary.Response{
		DailyPlan: "Day 1: Arrive.",
		Prompts:   [4]string{"a", "b", "c", "d"},
		Images: [4]itinerary.ImageResult{
			{URL: "https://img/0"}, {URL: "https://img/1"}, {Error: "URL not available: boom"}, {URL: "https://img/3"},
		},
	}
	planSvc := &stubItineraryService{
		planFn: func(ctx context.Context, req itinerary.Request) (itinerary.Response, error) {
			require.Equal(t, "Kyoto", req.Destination)
			return resp, nil
		},
	}

	recorder := performRequest("/api/v1/trips/daily-plan", `{"destination":"Kyoto","startDate":"2024-06-01","endDate":"2024-06-03"}`, newRouterUnderTest(t, &stubTripService{}, planSvc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got itinerary.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, resp, got)
}

func TestRouter_LegacySuggestions(t *testing.T) {
	summary := "Neon nights"
	tripSvc := &stubTripService{
		suggestFn: func(ctx context.Context, req trip.Request) (trip.Response, error) {
			require.Equal(t, "2024-06-01", req.StartDate)
			require.Equal(t, "adventure", req.TripType)
			return trip.Response{Suggestions: []trip.PricedCandidate{
				trip.NewFlightOnly(trip.Candidate{City: "Tokyo", Country: "Japan", AirportCode: "HND", Summary: &summary}, 900, "no affordable hotels found within the budget"),
			}}, nil
		},
	}

	recorder := performRequest("/get-travel-suggestions/", `{"start_date":"2024-06-01","end_date":"2024-06-08","budget":1000,"trip_type":"adventure"}`, newRouterUnderTest(t, tripSvc, &stubItineraryService{}))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `[{"destination":"Tokyo, Japan","flight_price":900,"hotel_price":null,"total_price":null,"summary":"Neon nights"}]`, recorder.Body.String())
}

func TestRouter_LegacyDailyPlanMarksFailedImages(t *testing.T) {
	planSvc := &stubItineraryService{
		planFn: func(ctx context.Context, req itinerary.Request) (itinerary.Response, error) {
			return itinerary.Response{
				DailyPlan: "Day 1",
				Images: [4]itinerary.ImageResult{
					{URL: "u0"}, {URL: "u1"}, {Error: "URL not available: boom"}, {URL: "u3"},
				},
			}, nil
		},
	}

	recorder := performRequest("/generate-daily-plan/", `{"destination":"Kyoto","start_date":"2024-06-01","end_date":"2024-06-03"}`, newRouterUnderTest(t, &stubTripService{}, planSvc))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"daily_plan":"Day 1","images":["u0","u1","URL not available","u3"]}`, recorder.Body.String())
}

func TestRouter_HealthAndRequestID(t *testing.T) {
	server := newRouterUnderTest(t, &stubTripService{}, &stubItineraryService{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, &stubTripService{}, &stubItineraryService{})
	req := httptest.NewRequest(http.MethodOptions, "/get-travel-suggestions/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), requestIDHeader)
	require.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Retry-After")
}

func TestRouter_CORSRejectsUnknownOrigin(t *testing.T) {
	server := newRouterUnderTest(t, &stubTripService{}, &stubItineraryService{})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/trips/suggestions", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestCORSWildcard(t *testing.T) {
	handler := corsMiddleware([]string{"*"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	c.Request.Header.Set("Origin", "https://any.example")

	handler(c)

	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	handler := NewHandler(&stubTripService{}, &stubItineraryService{}, newTestLogger())
	server := NewRouter(cfg, handler)

	first := performRequest("/api/v1/trips/suggestions", `{}`, server)
	require.Equal(t, http.StatusOK, first.Code)

	second := performRequest("/api/v1/trips/suggestions", `{}`, server)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.Equal(t, "60", second.Header().Get("Retry-After"))
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, second.Body.Bytes())["error"]["code"])
}

func TestRouter_DoesNotReplayPipelineOnUpstreamFailure(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}
	calls := 0
	planSvc := &stubItineraryService{
		planFn: func(ctx context.Context, req itinerary.Request) (itinerary.Response, error) {
			calls++
			require.Equal(t, "Kyoto", req.Destination)
			return itinerary.Response{}, apperrors.Wrap(apperrors.CodeLLM, "chatgpt request failed", errors.New("openai 503"))
		},
	}
	server := NewRouter(cfg, NewHandler(&stubTripService{}, planSvc, newTestLogger()))

	recorder := performRequest("/api/v1/trips/daily-plan", `{"destination":"Kyoto"}`, server)
	require.Equal(t, http.StatusBadGateway, recorder.Code)
	require.Equal(t, 1, calls)
	require.Equal(t, "llm_error", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func performRequest(path, body string, server *http.Server) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
}

func newRouterUnderTest(t *testing.T, tripSvc trip.Service, planSvc itinerary.Service) *http.Server {
	t.Helper()
	return NewRouter(testConfig(), NewHandler(tripSvc, planSvc, newTestLogger()))
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubTripService struct {
	suggestFn func(ctx context.Context, req trip.Request) (trip.Response, error)
}

func (s *stubTripService) Suggest(ctx context.Context, req trip.Request) (trip.Response, error) {
	if s.suggestFn != nil {
		return s.suggestFn(ctx, req)
	}
	return trip.Response{Suggestions: []trip.PricedCandidate{}}, nil
}

type stubItineraryService struct {
	planFn func(ctx context.Context, req itinerary.Request) (itinerary.Response, error)
}

func (s *stubItineraryService) Plan(ctx context.Context, req itinerary.Request) (itinerary.Response, error) {
	if s.planFn != nil {
		return s.planFn(ctx, req)
	}
	return itinerary.Response{}, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
