package kbju

import (
	"fmt"
	"strings"
)

// Gender selects the sex-specific BMR constant and calorie floor.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ActivityLevel identifies a TDEE multiplier.
type ActivityLevel string

const (
	Sedentary        ActivityLevel = "sedentary"
	LightlyActive    ActivityLevel = "lightly_active"
	ModeratelyActive ActivityLevel = "moderately_active"
	VeryActive       ActivityLevel = "very_active"
	ExtremelyActive  ActivityLevel = "extremely_active"
)

// ActivityLevels lists every recognised activity level in ascending order.
var ActivityLevels = []ActivityLevel{Sedentary, LightlyActive, ModeratelyActive, VeryActive, ExtremelyActive}

// Goal is the user's primary body-composition goal.
type Goal string

const (
	WeightLoss  Goal = "weight_loss"
	Maintenance Goal = "maintenance"
	MuscleGain  Goal = "muscle_gain"
	Recomp      Goal = "recomp"
)

// Goals lists every recognised goal.
var Goals = []Goal{WeightLoss, Maintenance, MuscleGain, Recomp}

// GoalRate is how aggressive the calorie deficit or surplus is.
type GoalRate string

const (
	Slow       GoalRate = "slow"
	Moderate   GoalRate = "moderate"
	Aggressive GoalRate = "aggressive"
)

// GoalRates lists every recognised goal rate.
var GoalRates = []GoalRate{Slow, Moderate, Aggressive}

// Multiplier returns the TDEE multiplier for the level. Unknown levels are
// treated as sedentary rather than rejected.
func (a ActivityLevel) Multiplier() float64 {
	switch a {
	case Sedentary:
		return 1.2
	case LightlyActive:
		return 1.375
	case ModeratelyActive:
		return 1.55
	case VeryActive:
		return 1.725
	case ExtremelyActive:
		return 1.9
	default:
		return 1.2
	}
}

// highVolume reports whether the level earns the extra protein allowance.
func (a ActivityLevel) highVolume() bool {
	return a == VeryActive || a == ExtremelyActive
}

func (g Gender) Valid() bool { return g == Male || g == Female }

func (a ActivityLevel) Valid() bool {
	for _, l := range ActivityLevels {
		if a == l {
			return true
		}
	}
	return false
}

func (g Goal) Valid() bool {
	for _, v := range Goals {
		if g == v {
			return true
		}
	}
	return false
}

func (r GoalRate) Valid() bool {
	for _, v := range GoalRates {
		if r == v {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseGender parses "male" or "female", case-insensitively.
func ParseGender(s string) (Gender, error) {
	g := Gender(normalize(s))
	if !g.Valid() {
		return "", fmt.Errorf("%w: gender must be male or female, got %q", ErrInvalidInput, s)
	}
	return g, nil
}

// ParseActivityLevel is strict: callers accepting user input should reject
// unknown levels even though Multiplier tolerates them.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	a := ActivityLevel(normalize(s))
	if !a.Valid() {
		return "", fmt.Errorf("%w: unknown activity level %q", ErrInvalidInput, s)
	}
	return a, nil
}

func ParseGoal(s string) (Goal, error) {
	g := Goal(normalize(s))
	if !g.Valid() {
		return "", fmt.Errorf("%w: unknown goal %q", ErrInvalidInput, s)
	}
	return g, nil
}

// ParseGoalRate defaults an empty string to Moderate.
func ParseGoalRate(s string) (GoalRate, error) {
	if normalize(s) == "" {
		return Moderate, nil
	}
	r := GoalRate(normalize(s))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown goal rate %q", ErrInvalidInput, s)
	}
	return r, nil
}
