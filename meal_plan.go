package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/kbju-go-api/kbju"
	"lg/kbju-go-api/store"
)

// mealPlanBreakdown sums each day of a meal plan and, when targets are known,
// reports how far each day is from them. Targets come from the body or else
// from the latest stored calculation; with neither, no deviation is reported.
// POST /api/meal-plan/breakdown
func (h *Handler) mealPlanBreakdown(c *gin.Context) {
	var req mealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, kindInvalidRequest, "days must contain at least one day")
		return
	}

	targets := req.Targets
	if targets == nil {
		calc, err := h.store.LatestCalculation(c, c.GetInt("user_id"))
		switch {
		case err == nil:
			targets = &calc.Targets
		case errors.Is(err, store.ErrNotFound):
		default:
			h.storeError(c, "latest calculation", err, "")
			return
		}
	}

	c.JSON(http.StatusOK, mealPlanResponse{
		Status:  "success",
		Days:    kbju.Breakdown(req.Days, targets),
		Targets: targets,
	})
}
