package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/medlab-api/internal/middleware"
)

// RouterConfig carries what the router needs beyond the handlers.
type RouterConfig struct {
	Tokens       middleware.TokenVerifier
	LabLoginPath string
	CORSOrigins  []string
	Registry     *prometheus.Registry
	Logger       zerolog.Logger
}

// NewRouter wires middleware and every route onto a fresh gin engine.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(cfg.Registry)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(cfg.Logger),
		metrics.Handler(),
		middleware.Recovery(cfg.Logger),
		cors.New(corsConfig(cfg.CORSOrigins)),
	)

	generic := middleware.GenericBearer(cfg.Tokens)
	lab := middleware.LabBearer(cfg.Tokens, cfg.LabLoginPath)

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))

	r.POST("/register", h.RegisterPatient)
	r.POST("/login", h.LoginPatient)

	api := r.Group("/api")

	labRoutes := api.Group("/lab")
	{
		labRoutes.POST("/register", h.RegisterLab)
		labRoutes.POST("/login", h.LoginLab)

		protected := labRoutes.Group("", lab.Required())
		protected.GET("/me", h.GetLabProfile)
		protected.PUT("/me", h.UpdateLabProfile)
		protected.GET("/orders", h.ListLabOrders)
		protected.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", generic.Optional(), h.CreateCategory)
		categories.GET("/:id", h.GetCategory)
		categories.DELETE("/:id", generic.Optional(), h.DeleteCategory)
		categories.GET("/:id/tests", h.ListTests)
		categories.POST("/:id/tests", generic.Optional(), h.CreateTest)
		categories.DELETE("/:id/tests/:testId", generic.Optional(), h.DeleteTest)
	}

	patient := api.Group("/patient", generic.Required())
	patient.GET("/me", h.GetCurrentPatient)
	patient.PUT("/me", h.UpdateCurrentPatient)

	orders := api.Group("/orders", generic.Required())
	orders.POST("", h.CreateOrder)
	orders.GET("", h.ListOrders)
	orders.GET("/:id", h.GetOrder)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.LabTokenHeader, middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
