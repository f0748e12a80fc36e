package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/trip-planner/internal/domain/itinerary"
	"github.com/yanqian/trip-planner/internal/domain/trip"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	tripSvc      trip.Service
	itinerarySvc itinerary.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(tripSvc trip.Service, itinerarySvc itinerary.Service, logger *slog.Logger) *Handler {
	return &Handler{
		tripSvc:      tripSvc,
		itinerarySvc: itinerarySvc,
		logger:       logger.With("component", "http.handler"),
	}
}

// Suggest returns priced destination suggestions for a budget.
func (h *Handler) Suggest(c *gin.Context) {
	var req trip.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.tripSvc.Suggest(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DailyPlan returns an itinerary with four rendered illustrations.
func (h *Handler) DailyPlan(c *gin.Context) {
	var req itinerary.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.itinerarySvc.Plan(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
