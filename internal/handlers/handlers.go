package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"evmapp/internal/cache"
	"evmapp/internal/database"
	"evmapp/internal/service"
)

type Handlers struct {
	services     *service.Services
	valkeyClient *cache.ValkeyClient
	db           *database.DB
}

// NewHandlers wires the HTTP layer. valkeyClient may be nil; response
// caching is then skipped.
func NewHandlers(services *service.Services, valkeyClient *cache.ValkeyClient, db *database.DB) *Handlers {
	return &Handlers{
		services:     services,
		valkeyClient: valkeyClient,
		db:           db,
	}
}

// Health - GET /health
func (h *Handlers) Health(c *gin.Context) {
	check := h.db.HealthCheck(c.Request.Context())
	status := http.StatusOK
	if check.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, check)
}
