package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lg/kbju-go-api/kbju"
	"lg/kbju-go-api/store"
)

// Handler holds shared dependencies (store, logger, metrics) for all route handlers.
type Handler struct {
	store   store.Store
	log     *zap.Logger
	metrics *metrics
}

func newHandler(s store.Store, log *zap.Logger) *Handler {
	return &Handler{store: s, log: log, metrics: newMetrics()}
}

/* ─── Error responses ─────────────────────────────────────────────────── */

// Error kinds for failures that don't come from the calculator.
const (
	kindInvalidRequest = "invalid_request"
	kindUnauthorized   = "unauthorized"
	kindNotFound       = "not_found"
	kindInternal       = "internal"
)

// apiError returns a consistent JSON error response:
// {"status": "error", "error_kind": kind, "message": message}.
func apiError(c *gin.Context, status int, kind, message string) {
	c.JSON(status, gin.H{"status": "error", "error_kind": kind, "message": message})
}

// calcError maps a calculator error to a status code. Bad values are the
// client's fault (400); age and infeasibility are well-formed requests the
// calculator refuses (422).
func calcError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, kbju.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, kbju.ErrAgeRestriction), errors.Is(err, kbju.ErrInfeasibleMacros):
		status = http.StatusUnprocessableEntity
	}
	apiError(c, status, kbju.ErrorKind(err), err.Error())
}

// storeError logs op and answers 404 for ErrNotFound, 500 otherwise.
func (h *Handler) storeError(c *gin.Context, op string, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		apiError(c, http.StatusNotFound, kindNotFound, notFoundMsg)
		return
	}
	h.log.Error("store failure", zap.String("op", op), zap.Int("user_id", c.GetInt("user_id")), zap.Error(err))
	apiError(c, http.StatusInternalServerError, kindInternal, "internal error")
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// requestLogger logs one line per request.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// newRouter builds the gin engine with middleware and all routes.
func (h *Handler) newRouter() *gin.Engine {
	registerValidators()
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger())
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)
	return router
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.metrics.registry, promhttp.HandlerOpts{})))
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.putProfile)
	api.POST("/kbju", h.calculateKBJU)
	api.POST("/kbju/from-profile", h.calculateFromProfile)
	api.GET("/kbju/latest", h.getLatestCalculation)
	api.GET("/kbju/history", h.getCalculationHistory)
	api.POST("/validate", h.validate)
	api.POST("/consultation/check", h.checkConsultation)
	api.POST("/meal-plan/breakdown", h.mealPlanBreakdown)
}
