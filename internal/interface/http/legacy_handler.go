package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/trip-planner/internal/domain/itinerary"
	"github.com/yanqian/trip-planner/internal/domain/trip"
)

// The legacy routes keep the snake_case payloads the existing frontend sends and reads.

type legacyTripRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Budget    int    `json:"budget"`
	TripType  string `json:"trip_type"`
}

type legacyTripSuggestion struct {
	Destination string  `json:"destination"`
	FlightPrice *int    `json:"flight_price"`
	HotelPrice  *int    `json:"hotel_price"`
	TotalPrice  *int    `json:"total_price"`
	Summary     *string `json:"summary"`
}

type legacyPlanRequest struct {
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type legacyPlanResponse struct {
	DailyPlan string   `json:"daily_plan"`
	Images    []string `json:"images"`
}

// LegacySuggest serves POST /get-travel-suggestions/.
func (h *Handler) LegacySuggest(c *gin.Context) {
	var req legacyTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.tripSvc.Suggest(c.Request.Context(), trip.Request{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Budget:    req.Budget,
		TripType:  req.TripType,
	})
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}

	out := make([]legacyTripSuggestion, 0, len(resp.Suggestions))
	for _, s := range resp.Suggestions {
		out = append(out, legacyTripSuggestion{
			Destination: s.Destination,
			FlightPrice: s.FlightPrice,
			HotelPrice:  s.HotelPrice,
			TotalPrice:  s.TotalPrice,
			Summary:     s.Summary,
		})
	}
	c.JSON(http.StatusOK, out)
}

// LegacyDailyPlan serves POST /generate-daily-plan/. Failed images carry the bare failure marker.
func (h *Handler) LegacyDailyPlan(c *gin.Context) {
	var req legacyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.itinerarySvc.Plan(c.Request.Context(), itinerary.Request{
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}

	images := make([]string, 0, len(resp.Images))
	for _, img := range resp.Images {
		if img.Failed() {
			images = append(images, itinerary.FailureMarker)
			continue
		}
		images = append(images, img.URL)
	}
	c.JSON(http.StatusOK, legacyPlanResponse{DailyPlan: resp.DailyPlan, Images: images})
}
