package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"evmapp/internal/models"
)

// CreateVolunteer - POST /api/volunteers
func (h *Handlers) CreateVolunteer(c *gin.Context) {
	var req models.CreateVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	volunteer, err := h.services.Volunteers.Create(c.Request.Context(), &req)
	if err != nil {
		slog.Error("Failed to create volunteer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create volunteer"})
		return
	}

	c.JSON(http.StatusCreated, volunteer)
}

// ListVolunteers - GET /api/volunteers
func (h *Handlers) ListVolunteers(c *gin.Context) {
	volunteers, err := h.services.Volunteers.List(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list volunteers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list volunteers"})
		return
	}
	if volunteers == nil {
		volunteers = []models.Volunteer{}
	}

	c.JSON(http.StatusOK, volunteers)
}

// ListSponsors - GET /api/sponsors
func (h *Handlers) ListSponsors(c *gin.Context) {
	sponsors, err := h.services.Sponsors.List(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list sponsors", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sponsors"})
		return
	}
	if sponsors == nil {
		sponsors = []models.Sponsor{}
	}

	c.JSON(http.StatusOK, sponsors)
}
