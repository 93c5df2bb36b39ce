package handlers

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetDashboard - GET /api/dashboard
// Aggregates are expensive to compute, so the rendered response is cached
// with a short TTL when a cache client is available.
func (h *Handlers) GetDashboard(c *gin.Context) {
	if h.valkeyClient != nil {
		if rawJSON, err := h.valkeyClient.GetDashboardRaw(c.Request.Context()); err == nil {
			c.Data(http.StatusOK, "application/json", rawJSON)
			return
		}
	}

	dashboard, err := h.services.Dashboard.GetDashboard(c.Request.Context())
	if err != nil {
		slog.Error("Failed to build dashboard", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}

	if h.valkeyClient != nil {
		h.valkeyClient.SetDashboard(c.Request.Context(), dashboard)
	}

	c.JSON(http.StatusOK, dashboard)
}

// ExportParticipants - GET /api/participants/export
// Streams a CSV of all bookings, optionally scoped with ?event_id=.
func (h *Handlers) ExportParticipants(c *gin.Context) {
	var eventID int64
	if raw := c.Query("event_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_id"})
			return
		}
		eventID = parsed
	}

	rows, err := h.services.Bookings.ExportParticipants(c.Request.Context(), eventID)
	if err != nil {
		slog.Error("Failed to export participants", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export participants"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="participants.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"ticket_id", "name", "contact_number", "email", "tickets", "paid", "event", "event_date"})
	for _, row := range rows {
		paid := "no"
		if row.Paid {
			paid = "yes"
		}
		_ = w.Write([]string{
			row.TicketID,
			row.Name,
			row.ContactNumber,
			row.Email,
			fmt.Sprintf("%d", row.NumberOfTickets),
			paid,
			row.EventName,
			row.EventDate.Format("2006-01-02"),
		})
	}
	w.Flush()
}
