package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lg/diet-funnel-go-api/internal/checkout"
	"lg/diet-funnel-go-api/internal/funnel"
	"lg/diet-funnel-go-api/internal/plans"
)

// entryPoint is where visitors are sent when upstream funnel state is gone.
const entryPoint = "/"

// Handler holds shared dependencies for all route handlers.
type Handler struct {
	carrier  *funnel.Carrier
	checkout *checkout.Client
	catalog  plans.Catalog
	sessions *sessionIssuer
	metrics  *metrics
	log      *zap.Logger

	adminUser         string
	adminPasswordHash string
	allowedOrigin     string

	now func() time.Time
}

/* ─── Response helpers ────────────────────────────────────────────────── */

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// funnelStateError answers a request whose upstream blob is missing or
// unreadable. The client must send the visitor back to the funnel entry.
// Returns false when err is some other failure, which the caller handles.
func funnelStateError(c *gin.Context, err error) bool {
	var message string
	switch {
	case errors.Is(err, funnel.ErrNotFound):
		message = "funnel data not found, please fill in the calculator first"
	case errors.Is(err, funnel.ErrMalformedState):
		message = "saved funnel data could not be read, please fill in the calculator again"
	default:
		return false
	}
	c.JSON(http.StatusConflict, gin.H{"error": message, "redirect": entryPoint})
	return true
}

/* ─── Middleware ─────────────────────────────────────────────────────── */

// requestLogger logs one structured line per request.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("session", c.GetString(sessionKey)))
	}
}

// cors lets the funnel frontend (served from another origin) call the API
// and read the session header.
func (h *Handler) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", h.allowedOrigin)
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+sessionHeader)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Expose-Headers", sessionHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// newRouter builds the engine with every route registered.
func (h *Handler) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger(), h.cors())
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)
	return router
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.metrics.registry, promhttp.HandlerOpts{})))
	router.GET("/api/plans", h.getPlans)

	// Funnel routes (session-scoped)
	api := router.Group("/api/funnel", h.sessionMiddleware())
	api.POST("/calculator", h.postCalculator)
	api.GET("/calculator", h.getCalculator)
	api.POST("/questionnaire", h.postQuestionnaire)
	api.GET("/payment", h.getPayment)
	api.POST("/checkout", h.postCheckout)

	// Admin routes are only mounted when a password hash is configured.
	if h.adminPasswordHash != "" {
		admin := router.Group("/api/admin", h.adminMiddleware())
		admin.GET("/leads", h.getLeads)
		admin.GET("/leads.xlsx", h.exportLeads)
	}
}

// getPlans returns the plan catalog. GET /api/plans (public).
func (h *Handler) getPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": h.catalog.Plans, "query_param": plans.QueryParam})
}
