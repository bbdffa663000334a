package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lg/kbju-go-api/kbju"
	"lg/kbju-go-api/store"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// compute runs the calculator, records the outcome metric, and stores the
// result. It writes the error response itself and reports whether to continue.
func (h *Handler) compute(c *gin.Context, p kbju.Profile) (store.Calculation, bool) {
	targets, err := kbju.Compute(p)
	if err != nil {
		h.metrics.calculations.WithLabelValues(kbju.ErrorKind(err)).Inc()
		calcError(c, err)
		return store.Calculation{}, false
	}
	h.metrics.calculations.WithLabelValues("ok").Inc()
	if targets.FloorApplied {
		h.metrics.floorApplied.Inc()
	}

	calc, err := h.store.SaveCalculation(c, store.Calculation{
		UserID:  c.GetInt("user_id"),
		Profile: p,
		Targets: targets,
	})
	if err != nil {
		h.storeError(c, "save calculation", err, "")
		return store.Calculation{}, false
	}
	h.log.Debug("calculation saved",
		zap.String("id", calc.ID),
		zap.Float64("target_calories", targets.TargetCalories),
		zap.Bool("floor_applied", targets.FloorApplied),
	)
	return calc, true
}

// calculateKBJU computes daily targets from the body data in the request and
// stores the result.
// POST /api/kbju
func (h *Handler) calculateKBJU(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, kindInvalidRequest, "invalid request body")
		return
	}
	p, err := req.profile()
	if err != nil {
		h.metrics.calculations.WithLabelValues(kbju.ErrorKind(err)).Inc()
		calcError(c, err)
		return
	}

	calc, ok := h.compute(c, p)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, calculationResponse{Status: "success", Calculation: calc})
}

// calculateFromProfile computes daily targets from the stored profile.
// POST /api/kbju/from-profile
func (h *Handler) calculateFromProfile(c *gin.Context) {
	profile, err := h.store.GetProfile(c, c.GetInt("user_id"))
	if err != nil {
		h.storeError(c, "get profile", err, "no profile saved yet; PUT /api/profile first")
		return
	}

	calc, ok := h.compute(c, profile.KBJU())
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, calculationResponse{Status: "success", Calculation: calc})
}

// getLatestCalculation returns the most recent stored calculation.
// GET /api/kbju/latest
func (h *Handler) getLatestCalculation(c *gin.Context) {
	calc, err := h.store.LatestCalculation(c, c.GetInt("user_id"))
	if err != nil {
		h.storeError(c, "latest calculation", err, "no calculation found; run POST /api/kbju first")
		return
	}
	c.JSON(http.StatusOK, calculationResponse{Status: "success", Calculation: calc})
}

// getCalculationHistory returns stored calculations, newest first.
// GET /api/kbju/history?limit=N (default 10, max 100)
func (h *Handler) getCalculationHistory(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			apiError(c, http.StatusBadRequest, kindInvalidRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	calcs, err := h.store.ListCalculations(c, c.GetInt("user_id"), limit)
	if err != nil {
		h.storeError(c, "list calculations", err, "")
		return
	}
	if calcs == nil {
		calcs = []store.Calculation{}
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "calculations": calcs})
}
