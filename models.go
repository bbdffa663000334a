package main

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"lg/kbju-go-api/consistency"
	"lg/kbju-go-api/kbju"
	"lg/kbju-go-api/store"
)

/* ─── Request validation ─────────────────────────────────────────────── */

var validatorsOnce sync.Once

// registerValidators adds the kbju enum tags (gender, activity_level, goal,
// goal_rate) to gin's validator and reports fields by their JSON names.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		enums := map[string]func(string) error{
			"gender":         func(s string) error { _, err := kbju.ParseGender(s); return err },
			"activity_level": func(s string) error { _, err := kbju.ParseActivityLevel(s); return err },
			"goal":           func(s string) error { _, err := kbju.ParseGoal(s); return err },
			"goal_rate":      func(s string) error { _, err := kbju.ParseGoalRate(s); return err },
		}
		for tag, parse := range enums {
			parse := parse // per-iteration copy (go <1.22 loop semantics)
			v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return parse(fl.Field().String()) == nil
			})
		}
	})
}

// profileFieldMessages are the human-readable failures for PUT /api/profile.
var profileFieldMessages = map[string]string{
	"age":            "Age must be between 18 and 120 years",
	"height_cm":      "Height must be between 100 and 250 cm",
	"weight_kg":      "Weight must be between 30 and 300 kg",
	"gender":         "Gender must be male or female",
	"activity_level": "Activity level must be one of sedentary, lightly_active, moderately_active, very_active, extremely_active",
	"goal":           "Goal must be one of weight_loss, maintenance, muscle_gain, recomp",
	"goal_rate":      "Goal rate must be one of slow, moderate, aggressive",
	"meal_frequency": "Meal frequency must be between 1 and 8 meals per day",
	"cooking_skill":  "Cooking skill must be beginner, intermediate or advanced",
	"budget_level":   "Budget level must be low, medium or high",
}

// bindingMessage turns a bind error into one message. Missing required
// fields are listed together, mirroring "Missing required fields: a, b".
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}
	var missing, other []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
			continue
		}
		if msg, ok := profileFieldMessages[fe.Field()]; ok {
			other = append(other, msg)
		} else {
			other = append(other, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	if len(missing) > 0 {
		return "Missing required fields: " + strings.Join(missing, ", ")
	}
	sort.Strings(other)
	return strings.Join(other, "; ")
}

/* ─── Request bodies ─────────────────────────────────────────────────── */

// loginRequest is the request body for POST /api/login.
type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// profileRequest is the request body for PUT /api/profile. The whole profile
// is replaced. Nil lists mean "not answered yet"; empty lists mean "none".
type profileRequest struct {
	Age                 int      `json:"age"            binding:"required,min=18,max=120"`
	Gender              string   `json:"gender"         binding:"required,gender"`
	HeightCM            float64  `json:"height_cm"      binding:"required,min=100,max=250"`
	WeightKG            float64  `json:"weight_kg"      binding:"required,min=30,max=300"`
	ActivityLevel       string   `json:"activity_level" binding:"required,activity_level"`
	Goal                string   `json:"goal"           binding:"required,goal"`
	GoalRate            string   `json:"goal_rate"      binding:"omitempty,goal_rate"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Allergies           []string `json:"allergies"`
	FavoriteFoods       []string `json:"favorite_foods"`
	FoodsToAvoid        []string `json:"foods_to_avoid"`
	HealthConditions    []string `json:"health_conditions"`
	MealFrequency       *int     `json:"meal_frequency" binding:"omitempty,min=1,max=8"`
	CookingSkill        *string  `json:"cooking_skill"  binding:"omitempty,oneof=beginner intermediate advanced"`
	BudgetLevel         *string  `json:"budget_level"   binding:"omitempty,oneof=low medium high"`
}

// toStore normalizes enum spellings; binding has already checked them.
func (r profileRequest) toStore(userID int) store.Profile {
	gender, _ := kbju.ParseGender(r.Gender)
	activity, _ := kbju.ParseActivityLevel(r.ActivityLevel)
	goal, _ := kbju.ParseGoal(r.Goal)
	rate, _ := kbju.ParseGoalRate(r.GoalRate)
	return store.Profile{
		UserID:              userID,
		Age:                 r.Age,
		Gender:              string(gender),
		HeightCM:            r.HeightCM,
		WeightKG:            r.WeightKG,
		ActivityLevel:       string(activity),
		Goal:                string(goal),
		GoalRate:            string(rate),
		DietaryRestrictions: r.DietaryRestrictions,
		Allergies:           r.Allergies,
		FavoriteFoods:       r.FavoriteFoods,
		FoodsToAvoid:        r.FoodsToAvoid,
		HealthConditions:    r.HealthConditions,
		MealFrequency:       r.MealFrequency,
		CookingSkill:        r.CookingSkill,
		BudgetLevel:         r.BudgetLevel,
	}
}

// calculateRequest is the request body for POST /api/kbju. Values are not
// range-checked at binding time so the calculator reports its own error kinds.
type calculateRequest struct {
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	HeightCM      float64 `json:"height_cm"`
	WeightKG      float64 `json:"weight_kg"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`
	GoalRate      string  `json:"goal_rate"`
}

// profile converts the request to calculator input. The activity level is
// checked strictly here since the multiplier alone would accept anything.
func (r calculateRequest) profile() (kbju.Profile, error) {
	activity, err := kbju.ParseActivityLevel(r.ActivityLevel)
	if err != nil {
		return kbju.Profile{}, err
	}
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return kbju.Profile{
		Age:           r.Age,
		Gender:        kbju.Gender(norm(r.Gender)),
		HeightCM:      r.HeightCM,
		WeightKG:      r.WeightKG,
		ActivityLevel: activity,
		Goal:          kbju.Goal(norm(r.Goal)),
		GoalRate:      kbju.GoalRate(norm(r.GoalRate)),
	}, nil
}

// mealPlanRequest is the request body for POST /api/meal-plan/breakdown.
// Targets are optional; without them the latest stored calculation is used.
type mealPlanRequest struct {
	Days    []kbju.Day    `json:"days" binding:"required,min=1,dive"`
	Targets *kbju.Targets `json:"targets"`
}

/* ─── Responses ──────────────────────────────────────────────────────── */

// calculationResponse is returned by the POST /api/kbju* endpoints.
type calculationResponse struct {
	Status string `json:"status"`
	store.Calculation
}

// profileResponse is the response for GET/PUT /api/profile.
type profileResponse struct {
	Status        string        `json:"status"`
	Profile       store.Profile `json:"profile"`
	Completeness  float64       `json:"completeness"`
	MissingFields []string      `json:"missing_fields"`
	Summary       string        `json:"summary"`
}

// validationResponse is the response for POST /api/validate and
// POST /api/consultation/check.
type validationResponse struct {
	consistency.Result
	CalculationID string `json:"calculation_id,omitempty"`
	RunID         string `json:"run_id"`
}

// mealPlanResponse is the response for POST /api/meal-plan/breakdown.
type mealPlanResponse struct {
	Status  string              `json:"status"`
	Days    []kbju.DayBreakdown `json:"days"`
	Targets *kbju.Targets       `json:"targets,omitempty"`
}
