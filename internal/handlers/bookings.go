package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"evmapp/internal/errors"
	"evmapp/internal/models"
)

// CreateBooking - POST /api/bookings
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.NumberOfTickets < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "number_of_tickets must be >= 1"})
		return
	}

	resp, err := h.services.Bookings.Create(c.Request.Context(), &req)
	switch {
	case err == nil:
	case errors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	case errors.IsGatewayUnavailable(err):
		slog.Error("Payment gateway unavailable", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": errors.ReasonGatewayUnavailable})
		return
	default:
		slog.Error("Failed to create booking", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListBookings - GET /api/bookings
func (h *Handlers) ListBookings(c *gin.Context) {
	var eventID int64
	if raw := c.Query("event_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_id"})
			return
		}
		eventID = parsed
	}

	bookings, err := h.services.Bookings.List(c.Request.Context(), eventID)
	if err != nil {
		slog.Error("Failed to list bookings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bookings"})
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}

	c.JSON(http.StatusOK, bookings)
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := h.services.Bookings.GetByID(c.Request.Context(), id)
	if err == errors.ErrBookingNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}
	if err != nil {
		slog.Error("Failed to get booking", "booking_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get booking"})
		return
	}

	c.JSON(http.StatusOK, booking)
}
