package main

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/kbju-go-api/store"
)

// Six required fields are always present on a stored profile; eight more
// are optional.
const (
	profileRequiredFields = 6
	profileTotalFields    = 14
)

// completeness reports how much of the profile has been answered. A nil list
// is unanswered; an empty list is an answer ("none").
func completeness(p store.Profile) (float64, []string) {
	optional := []struct {
		name   string
		filled bool
	}{
		{"dietary_restrictions", p.DietaryRestrictions != nil},
		{"allergies", p.Allergies != nil},
		{"favorite_foods", p.FavoriteFoods != nil},
		{"foods_to_avoid", p.FoodsToAvoid != nil},
		{"health_conditions", p.HealthConditions != nil},
		{"meal_frequency", p.MealFrequency != nil},
		{"cooking_skill", p.CookingSkill != nil},
		{"budget_level", p.BudgetLevel != nil},
	}

	filled := profileRequiredFields
	missing := []string{}
	for _, f := range optional {
		if f.filled {
			filled++
		} else {
			missing = append(missing, f.name)
		}
	}
	pct := float64(filled) / profileTotalFields * 100
	return math.Round(pct*10) / 10, missing
}

func newProfileResponse(p store.Profile) profileResponse {
	pct, missing := completeness(p)
	return profileResponse{
		Status:        "success",
		Profile:       p,
		Completeness:  pct,
		MissingFields: missing,
		Summary:       fmt.Sprintf("Profile %.0f%% complete with %d optional fields remaining", pct, len(missing)),
	}
}

// getProfile returns the user's nutrition profile with its completeness.
// GET /api/profile
func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.store.GetProfile(c, c.GetInt("user_id"))
	if err != nil {
		h.storeError(c, "get profile", err, "no profile saved yet")
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(p))
}

// putProfile validates and replaces the user's nutrition profile.
// PUT /api/profile
func (h *Handler) putProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, kindInvalidRequest, bindingMessage(err))
		return
	}

	saved, err := h.store.UpsertProfile(c, req.toStore(c.GetInt("user_id")))
	if err != nil {
		h.storeError(c, "upsert profile", err, "")
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(saved))
}
