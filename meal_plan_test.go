package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoMealDay = `"days":[{"day":1,"meals":[
	{"meal_type":"breakfast","recipe_name":"Oats","calories":400,"protein_g":15,"fat_g":10,"carbs_g":60,"fiber_g":8},
	{"meal_type":"dinner","recipe_name":"Salmon bowl","calories":700,"protein_g":45,"fat_g":25,"carbs_g":70,"fiber_g":6}
]}]`

func TestMealPlanBreakdown_ExplicitTargets(t *testing.T) {
	e := setupTest(t)
	w := e.do("POST", "/api/meal-plan/breakdown",
		`{`+twoMealDay+`,"targets":{"target_calories":2000,"protein_g":100,"fat_g":60,"carbs_g":250}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[mealPlanResponse](t, w)
	require.Len(t, got.Days, 1)
	day := got.Days[0]
	assert.Equal(t, 1100.0, day.Total.Calories)
	assert.Equal(t, 60.0, day.Total.ProteinG)
	assert.Equal(t, 14.0, day.Total.FiberG)
	require.NotNil(t, day.Deviation)
	assert.Equal(t, -900.0, day.Deviation.Calories)
	assert.Equal(t, -40.0, day.Deviation.ProteinG)
	assert.Equal(t, -25.0, day.Deviation.FatG)
	assert.Equal(t, -120.0, day.Deviation.CarbsG)
}

func TestMealPlanBreakdown_TargetsFromLatestCalculation(t *testing.T) {
	e := setupTest(t)

	// Without any stored calculation there is nothing to compare against.
	w := e.do("POST", "/api/meal-plan/breakdown", `{`+twoMealDay+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[mealPlanResponse](t, w)
	assert.Nil(t, got.Days[0].Deviation)
	assert.Nil(t, got.Targets)

	w = e.do("POST", "/api/kbju", maintenanceBody)
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do("POST", "/api/meal-plan/breakdown", `{`+twoMealDay+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got = decode[mealPlanResponse](t, w)
	require.NotNil(t, got.Targets)
	assert.Equal(t, 2759.0, got.Targets.TargetCalories)
	require.NotNil(t, got.Days[0].Deviation)
	assert.Equal(t, -1659.0, got.Days[0].Deviation.Calories)
}

func TestMealPlanBreakdown_RequiresDays(t *testing.T) {
	e := setupTest(t)
	for _, body := range []string{`{}`, `{"days":[]}`} {
		w := e.do("POST", "/api/meal-plan/breakdown", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}
