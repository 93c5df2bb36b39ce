package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"evmapp/internal/cache"
	"evmapp/internal/config"
	"evmapp/internal/database"
	"evmapp/internal/errors"
	"evmapp/internal/external"
	"evmapp/internal/handlers"
	"evmapp/internal/logger"
	"evmapp/internal/messaging"
	"evmapp/internal/middleware"
	"evmapp/internal/repository"
	"evmapp/internal/search"
	"evmapp/internal/service"
)

// Server is the HTTP API process: database, migrations, event bus, cache,
// search and the gateway client, wired behind a gin router.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	// Cache and search are optional: the API degrades to direct SQL when
	// either is unreachable or unconfigured.
	valkeyClient, err := cache.NewValkeyClient(cfg.Cache)
	if err != nil {
		logger.Get().Warn("Valkey unavailable, caching disabled", "error", err)
		valkeyClient = nil
	}

	var searchClient *search.ElasticsearchClient
	if cfg.Search.Enabled() {
		searchClient, err = search.NewElasticsearchClient(cfg.Search)
		if err != nil {
			logger.Get().Warn("Elasticsearch unavailable, search disabled", "error", err)
			searchClient = nil
		}
	}

	razorpayClient := external.NewRazorpayClient(cfg.Razorpay)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, razorpayClient, natsClient, searchClient)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.valkey, s.db)

	RegisterRoutes(s.router, h)
}

// RegisterRoutes mounts every API route on the given engine. Split out so
// handler tests can build a router without a full server.
func RegisterRoutes(router *gin.Engine, h *handlers.Handlers) {
	api := router.Group("/api")
	{
		events := api.Group("/events")
		{
			events.POST("", h.CreateEvent)
			events.GET("", h.ListEvents)
			events.GET("/:id", h.GetEvent)
			events.PATCH("/:id", h.UpdateEvent)
			events.PATCH("/:id/status", h.UpdateEventStatus)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.GET("/:id", h.GetBooking)
		}

		payments := api.Group("/payments")
		{
			payments.POST("/confirm", h.ConfirmPayment)
			payments.POST("/webhook", h.PaymentWebhook)
			payments.GET("", h.ListPayments)
		}

		api.GET("/dashboard", h.GetDashboard)
		api.GET("/participants/export", h.ExportParticipants)

		volunteers := api.Group("/volunteers")
		{
			volunteers.POST("", h.CreateVolunteer)
			volunteers.GET("", h.ListVolunteers)
		}

		api.GET("/sponsors", h.ListSponsors)
	}

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"status": "error", "reason": errors.ReasonInvalidMethod})
	})
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter returns the router for testing.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes the server's connections.
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			logger.Get().Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
