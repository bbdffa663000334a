package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lg/kbju-go-api/consistency"
	"lg/kbju-go-api/store"
)

// record counts the result and stores it as a validation run.
func (h *Handler) record(c *gin.Context, res consistency.Result) (store.ValidationRun, error) {
	h.metrics.validations.WithLabelValues(string(res.Status)).Inc()
	run, err := h.store.SaveValidationRun(c, store.NewValidationRun(c.GetInt("user_id"), res))
	if err != nil {
		return store.ValidationRun{}, err
	}
	if res.Status == consistency.StatusError {
		h.log.Info("validation found contradictions",
			zap.String("run_id", run.ID),
			zap.Int("errors", res.ErrorCount),
		)
	}
	return run, nil
}

// validate checks the posted preferences and targets for contradictions. The
// HTTP status is 200 for every verdict; callers branch on "status".
// POST /api/validate
func (h *Handler) validate(c *gin.Context) {
	var in consistency.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		apiError(c, http.StatusBadRequest, kindInvalidRequest, "invalid request body")
		return
	}

	res := consistency.Validate(in)
	run, err := h.record(c, res)
	if err != nil {
		h.storeError(c, "save validation run", err, "")
		return
	}
	c.JSON(http.StatusOK, validationResponse{Result: res, RunID: run.ID})
}

// checkConsultation validates the stored profile against the latest stored
// calculation. Without a calculation only the preference rules can fire.
// POST /api/consultation/check
func (h *Handler) checkConsultation(c *gin.Context) {
	userID := c.GetInt("user_id")
	profile, err := h.store.GetProfile(c, userID)
	if err != nil {
		h.storeError(c, "get profile", err, "no profile saved yet; PUT /api/profile first")
		return
	}

	in := consistency.Input{
		DietaryRestrictions: profile.DietaryRestrictions,
		FoodsToAvoid:        profile.FoodsToAvoid,
		FavoriteFoods:       profile.FavoriteFoods,
	}
	var calcID string
	calc, err := h.store.LatestCalculation(c, userID)
	switch {
	case err == nil:
		in = in.WithTargets(calc.Targets, calc.Profile.WeightKG)
		calcID = calc.ID
	case errors.Is(err, store.ErrNotFound):
	default:
		h.storeError(c, "latest calculation", err, "")
		return
	}

	res := consistency.Validate(in)
	run, err := h.record(c, res)
	if err != nil {
		h.storeError(c, "save validation run", err, "")
		return
	}
	c.JSON(http.StatusOK, validationResponse{Result: res, CalculationID: calcID, RunID: run.ID})
}
