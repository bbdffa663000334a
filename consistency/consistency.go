// Package consistency detects contradictions between a user's dietary
// restrictions, food preferences and numeric nutrition targets before any
// recipe search or meal planning runs.
//
// Food matching is a keyword-substring heuristic: a favorite food conflicts
// with a keyword set when any keyword occurs inside it ("beef stew" contains
// "beef"). It produces false positives on names like "beefsteak tomato" and
// that is accepted behaviour, not something to upgrade here.
package consistency

import (
	"strings"

	"lg/kbju-go-api/kbju"
)

// Severity classifies a finding. Only SeverityError blocks downstream work.
type Severity string

const (
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// Level is the finer-grained urgency shown next to a finding.
type Level string

const (
	LevelCritical Level = "critical"
	LevelHigh     Level = "high"
	LevelMedium   Level = "medium"
	LevelLow      Level = "low"
	LevelInfo     Level = "info"
)

// Finding is one detected issue. Issue and Resolution are written to be shown
// to the end user verbatim.
type Finding struct {
	Type       string   `json:"type"`
	Severity   Severity `json:"severity"`
	Level      Level    `json:"level"`
	Issue      string   `json:"issue"`
	Resolution string   `json:"resolution,omitempty"`
}

// Input is everything Check looks at. Nil or zero numeric fields are treated
// as absent and skip the checks that need them.
type Input struct {
	DietaryRestrictions []string  `json:"dietary_restrictions"`
	FoodsToAvoid        []string  `json:"foods_to_avoid"`
	FavoriteFoods       []string  `json:"favorite_foods"`
	TargetCalories      *float64  `json:"target_calories,omitempty"`
	TargetProteinG      *float64  `json:"target_protein_g,omitempty"`
	TargetFatG          *float64  `json:"target_fat_g,omitempty"`
	TargetCarbsG        *float64  `json:"target_carbs_g,omitempty"`
	WeightKG            *float64  `json:"weight_kg,omitempty"`
	Goal                kbju.Goal `json:"goal,omitempty"`
}

// WithTargets returns a copy of in with the numeric targets, weight and goal
// taken from a calculator result.
func (in Input) WithTargets(t kbju.Targets, weightKG float64) Input {
	in.TargetCalories = ptr(t.TargetCalories)
	in.TargetProteinG = ptr(t.ProteinG)
	in.TargetFatG = ptr(t.FatG)
	in.TargetCarbsG = ptr(t.CarbsG)
	in.WeightKG = ptr(weightKG)
	in.Goal = t.Goal
	return in
}

// Keyword sets for the restriction checks.
var (
	MeatFoods      = []string{"beef", "pork", "chicken", "turkey", "lamb", "duck", "venison", "meat"}
	AnimalProducts = append(append([]string{}, MeatFoods...), "eggs", "dairy", "milk", "cheese", "yogurt", "butter", "honey")
	Seafood        = []string{"fish", "salmon", "tuna", "shrimp", "shellfish", "lobster", "crab", "seafood"}
	GlutenFoods    = []string{"wheat", "bread", "pasta", "flour", "barley", "rye", "gluten"}
	DairyFoods     = []string{"milk", "cheese", "yogurt", "butter", "cream", "dairy"}
)

// Volume thresholds for the over-restriction checks.
const (
	maxRestrictions = 4
	maxAvoidedFoods = 10
)

// Check evaluates every rule against in and returns all findings in rule
// order. It never stops at the first problem.
func Check(in Input) []Finding {
	n := normalized(in)

	var out []Finding
	out = append(out, checkRestrictions(n)...)
	out = append(out, checkMacros(n)...)
	out = append(out, checkGoal(n)...)
	out = append(out, checkVolume(n)...)
	return out
}

// Validate runs Check and aggregates the findings into a Result.
func Validate(in Input) Result {
	return Aggregate(Check(in))
}

// matching returns the foods that contain any keyword, preserving order.
func matching(foods, keywords []string) []string {
	var out []string
	for _, f := range foods {
		for _, k := range keywords {
			if strings.Contains(f, k) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func normalized(in Input) Input {
	in.DietaryRestrictions = fold(in.DietaryRestrictions)
	in.FoodsToAvoid = fold(in.FoodsToAvoid)
	in.FavoriteFoods = fold(in.FavoriteFoods)
	in.Goal = kbju.Goal(strings.ToLower(strings.TrimSpace(string(in.Goal))))
	return in
}

func fold(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

func has(items []string, want ...string) bool {
	for _, it := range items {
		for _, w := range want {
			if it == w {
				return true
			}
		}
	}
	return false
}

func present(v *float64) bool {
	return v != nil && *v != 0
}

func ptr(v float64) *float64 { return &v }
