// Package kbju derives daily energy and macro targets (calories, protein, fat,
// carbohydrates) from body metrics, activity level and goal.
//
// Every function is pure. Intermediate values are kept unrounded; only the
// returned figures are rounded to one decimal place.
package kbju

import (
	"fmt"
	"math"
)

// Energy density in kcal per gram.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// minFatPerKG is the fat floor in grams per kg bodyweight.
const minFatPerKG = 0.8

// Profile is the body data a calculation runs on. It is never persisted by
// this package.
type Profile struct {
	Age           int           `json:"age"`
	Gender        Gender        `json:"gender"`
	HeightCM      float64       `json:"height_cm"`
	WeightKG      float64       `json:"weight_kg"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	Goal          Goal          `json:"goal"`
	GoalRate      GoalRate      `json:"goal_rate"`
}

// Macros is a protein/fat/carbohydrate split of a calorie target.
type Macros struct {
	ProteinG       float64 `json:"protein_g"`
	FatG           float64 `json:"fat_g"`
	CarbsG         float64 `json:"carbs_g"`
	ProteinCal     float64 `json:"protein_cal"`
	FatCal         float64 `json:"fat_cal"`
	CarbsCal       float64 `json:"carbs_cal"`
	ProteinPercent float64 `json:"protein_percent"`
	FatPercent     float64 `json:"fat_percent"`
	CarbsPercent   float64 `json:"carbs_percent"`
}

// Targets is the full result of Compute. ProteinCal+FatCal+CarbsCal equals
// TargetCalories up to rounding and every component is non-negative.
type Targets struct {
	BMR            float64 `json:"bmr"`
	TDEE           float64 `json:"tdee"`
	TargetCalories float64 `json:"target_calories"`
	Macros
	Goal         Goal     `json:"goal"`
	GoalRate     GoalRate `json:"goal_rate"`
	FloorApplied bool     `json:"floor_applied"`
	Notes        string   `json:"notes"`
}

// calorieAdjustments is the kcal/day delta applied to TDEE per goal and rate.
var calorieAdjustments = map[Goal]map[GoalRate]float64{
	WeightLoss:  {Slow: -250, Moderate: -500, Aggressive: -750},
	Maintenance: {Slow: 0, Moderate: 0, Aggressive: 0},
	MuscleGain:  {Slow: 200, Moderate: 350, Aggressive: 500},
	Recomp:      {Slow: 0, Moderate: 0, Aggressive: 0},
}

// BMR computes basal metabolic rate with the Mifflin-St Jeor equation. Inputs
// are not clamped; Compute validates them first.
func BMR(weightKG, heightCM float64, age int, gender Gender) float64 {
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(age)
	if gender == Male {
		return bmr + 5
	}
	return bmr - 161
}

// CalorieFloor is the lowest daily calorie target Compute will return.
func CalorieFloor(gender Gender) float64 {
	if gender == Female {
		return 1200
	}
	return 1500
}

// GoalAdjustment returns the kcal/day delta for goal at rate. It panics on a
// combination missing from the table, which only happens if the enums and the
// table drift apart.
func GoalAdjustment(goal Goal, rate GoalRate) float64 {
	byRate, ok := calorieAdjustments[goal]
	if !ok {
		panic(fmt.Sprintf("kbju: no calorie adjustments for goal %q", goal))
	}
	delta, ok := byRate[rate]
	if !ok {
		panic(fmt.Sprintf("kbju: no calorie adjustment for goal %q at rate %q", goal, rate))
	}
	return delta
}

// ProteinPerKG returns the protein target in g/kg bodyweight.
func ProteinPerKG(goal Goal, activity ActivityLevel) float64 {
	var perKG float64
	switch goal {
	case MuscleGain:
		perKG = 2.2
	case Recomp, WeightLoss:
		perKG = 2.0
	default:
		perKG = 1.8
	}
	if activity.highVolume() {
		perKG += 0.2
	}
	return perKG
}

// FatShare returns the fraction of calories allocated to fat before the
// per-kg floor is applied.
func FatShare(goal Goal) float64 {
	switch goal {
	case WeightLoss, MuscleGain:
		return 0.25
	default:
		return 0.30
	}
}

// Compute derives BMR, TDEE, a goal-adjusted calorie target and a macro split
// for p. An empty Goal is treated as Maintenance and an empty GoalRate as
// Moderate. Errors wrap ErrInvalidInput, ErrAgeRestriction or
// ErrInfeasibleMacros; no partial result is returned alongside an error.
func Compute(p Profile) (Targets, error) {
	if p.Goal == "" {
		p.Goal = Maintenance
	}
	if p.GoalRate == "" {
		p.GoalRate = Moderate
	}
	if err := p.validate(); err != nil {
		return Targets{}, err
	}

	bmr := BMR(p.WeightKG, p.HeightCM, p.Age, p.Gender)
	tdee := bmr * p.ActivityLevel.Multiplier()
	target := tdee + GoalAdjustment(p.Goal, p.GoalRate)

	floor := CalorieFloor(p.Gender)
	floored := false
	notes := fmt.Sprintf("Calculation based on %s goal at %s rate", p.Goal, p.GoalRate)
	if target < floor {
		target = floor
		floored = true
		notes = fmt.Sprintf("Calories adjusted to safe minimum (%.0f kcal)", floor)
	}

	m, err := splitMacros(target, p.WeightKG, p.Goal, p.ActivityLevel)
	if err != nil {
		return Targets{}, err
	}

	return Targets{
		BMR:            round1(bmr),
		TDEE:           round1(tdee),
		TargetCalories: round1(target),
		Macros:         m.rounded(target),
		Goal:           p.Goal,
		GoalRate:       p.GoalRate,
		FloorApplied:   floored,
		Notes:          notes,
	}, nil
}

// SplitMacros splits an arbitrary calorie target into protein, fat and carbs
// the same way Compute does, without the calorie floor.
func SplitMacros(targetCalories, weightKG float64, goal Goal, activity ActivityLevel) (Macros, error) {
	if targetCalories <= 0 || weightKG <= 0 {
		return Macros{}, fmt.Errorf("%w: target calories and weight must be positive values", ErrInvalidInput)
	}
	m, err := splitMacros(targetCalories, weightKG, goal, activity)
	if err != nil {
		return Macros{}, err
	}
	return m.rounded(targetCalories), nil
}

// splitMacros returns unrounded grams and calories. Protein is fixed first,
// then fat with its floor, and carbohydrates take the remainder.
func splitMacros(target, weightKG float64, goal Goal, activity ActivityLevel) (Macros, error) {
	proteinG := weightKG * ProteinPerKG(goal, activity)
	proteinCal := proteinG * kcalPerGramProtein

	fatCal := target * FatShare(goal)
	fatG := fatCal / kcalPerGramFat
	if minFat := weightKG * minFatPerKG; fatG < minFat {
		fatG = minFat
		fatCal = fatG * kcalPerGramFat
	}

	carbsCal := target - proteinCal - fatCal
	if carbsCal < 0 {
		return Macros{}, fmt.Errorf("%w: protein (%.0f kcal) and fat (%.0f kcal) exceed the %.0f kcal target",
			ErrInfeasibleMacros, proteinCal, fatCal, target)
	}

	return Macros{
		ProteinG:   proteinG,
		FatG:       fatG,
		CarbsG:     carbsCal / kcalPerGramCarbs,
		ProteinCal: proteinCal,
		FatCal:     fatCal,
		CarbsCal:   carbsCal,
	}, nil
}

// rounded fills the percentages from unrounded calories and rounds every
// figure for output.
func (m Macros) rounded(target float64) Macros {
	return Macros{
		ProteinG:       round1(m.ProteinG),
		FatG:           round1(m.FatG),
		CarbsG:         round1(m.CarbsG),
		ProteinCal:     round1(m.ProteinCal),
		FatCal:         round1(m.FatCal),
		CarbsCal:       round1(m.CarbsCal),
		ProteinPercent: round1(m.ProteinCal / target * 100),
		FatPercent:     round1(m.FatCal / target * 100),
		CarbsPercent:   round1(m.CarbsCal / target * 100),
	}
}

func (p Profile) validate() error {
	if p.WeightKG <= 0 || p.HeightCM <= 0 || p.Age <= 0 {
		return fmt.Errorf("%w: weight, height, and age must be positive values", ErrInvalidInput)
	}
	if p.Age < 18 {
		return fmt.Errorf("%w: this calculator is designed for adults 18+, please consult a pediatric nutritionist", ErrAgeRestriction)
	}
	if !p.Gender.Valid() {
		return fmt.Errorf("%w: gender must be male or female, got %q", ErrInvalidInput, p.Gender)
	}
	if !p.Goal.Valid() {
		return fmt.Errorf("%w: unknown goal %q", ErrInvalidInput, p.Goal)
	}
	if !p.GoalRate.Valid() {
		return fmt.Errorf("%w: unknown goal rate %q", ErrInvalidInput, p.GoalRate)
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
