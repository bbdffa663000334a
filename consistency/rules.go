package consistency

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"lg/kbju-go-api/kbju"
)

/* ─── Dietary restriction vs. favorite food ──────────────────────────── */

func checkRestrictions(in Input) []Finding {
	var out []Finding
	r, favs := in.DietaryRestrictions, in.FavoriteFoods

	if has(r, "vegetarian") {
		if meat := matching(favs, MeatFoods); len(meat) > 0 {
			out = append(out, Finding{
				Type:       "dietary_contradiction",
				Severity:   SeverityError,
				Level:      LevelHigh,
				Issue:      "User is vegetarian but lists meat as favorites: " + strings.Join(meat, ", "),
				Resolution: "Ask user to clarify: Do you want vegetarian recipes, or would you like to include meat?",
			})
		}
		if fish := matching(favs, Seafood); len(fish) > 0 {
			out = append(out, Finding{
				Type:       "pescatarian_hint",
				Severity:   SeveritySuggestion,
				Level:      LevelInfo,
				Issue:      fmt.Sprintf("User likes seafood (%s) - consider asking if they're pescatarian instead of vegetarian", strings.Join(fish, ", ")),
				Resolution: "Ask whether fish and seafood are acceptable",
			})
		}
	}

	if has(r, "vegan") {
		if animal := matching(favs, AnimalProducts); len(animal) > 0 {
			out = append(out, Finding{
				Type:       "dietary_contradiction",
				Severity:   SeverityError,
				Level:      LevelCritical,
				Issue:      "User is vegan but lists animal products as favorites: " + strings.Join(animal, ", "),
				Resolution: "Ask user: Do you want strictly vegan recipes, or are you flexible with some animal products?",
			})
		}
		if !has(r, "vegetarian") {
			out = append(out, Finding{
				Type:     "vegan_implies_vegetarian",
				Severity: SeveritySuggestion,
				Level:    LevelInfo,
				Issue:    "User is vegan - automatically including vegetarian as well since vegan is more restrictive",
			})
		}
	}

	if has(r, "gluten_free", "gluten-free") {
		if gluten := matching(favs, GlutenFoods); len(gluten) > 0 {
			out = append(out, Finding{
				Type:       "dietary_warning",
				Severity:   SeverityWarning,
				Level:      LevelMedium,
				Issue:      "User is gluten-free but lists gluten-containing foods as favorites: " + strings.Join(gluten, ", "),
				Resolution: "Offer gluten-free alternatives to their favorite foods",
			})
		}
	}

	if has(r, "lactose_intolerant", "dairy_free") {
		if dairy := matching(favs, DairyFoods); len(dairy) > 0 {
			out = append(out, Finding{
				Type:       "dietary_warning",
				Severity:   SeverityWarning,
				Level:      LevelMedium,
				Issue:      "User is lactose intolerant/dairy-free but lists dairy as favorites: " + strings.Join(dairy, ", "),
				Resolution: "Suggest lactose-free or dairy-free alternatives",
			})
		}
	}

	return out
}

/* ─── Numeric target checks ──────────────────────────────────────────── */

// macroTolerance is the allowed relative gap between macro calories and the
// calorie target.
const macroTolerance = 0.10

// Protein density bounds in g/kg bodyweight.
const (
	minProteinPerKG = 0.8
	maxProteinPerKG = 3.0
)

// plantProteinCeiling is the protein target (g) above which a vegan or
// vegetarian plan is flagged as hard to hit.
const plantProteinCeiling = 150

// checkMacros runs only when all four targets are present; the protein
// density check additionally needs weight.
func checkMacros(in Input) []Finding {
	if !present(in.TargetCalories) || !present(in.TargetProteinG) || !present(in.TargetFatG) || !present(in.TargetCarbsG) {
		return nil
	}
	cal, protein, fat, carbs := *in.TargetCalories, *in.TargetProteinG, *in.TargetFatG, *in.TargetCarbsG

	var out []Finding
	macroCal := protein*4 + fat*9 + carbs*4
	if diff := math.Abs(macroCal - cal); diff > cal*macroTolerance {
		out = append(out, Finding{
			Type:       "macro_mismatch",
			Severity:   SeverityError,
			Level:      LevelHigh,
			Issue:      fmt.Sprintf("Macro calories (%.0f) don't match target calories (%.0f)", macroCal, cal),
			Resolution: fmt.Sprintf("Adjust macros to match calorie target. Difference: %.0f calories", diff),
		})
	}

	if present(in.WeightKG) {
		perKG := protein / *in.WeightKG
		switch {
		case perKG < minProteinPerKG:
			out = append(out, Finding{
				Type:       "low_protein",
				Severity:   SeverityWarning,
				Level:      LevelMedium,
				Issue:      fmt.Sprintf("Protein target is very low (%.1fg/kg). Minimum recommended: 0.8g/kg", perKG),
				Resolution: "Consider increasing protein to at least 0.8g per kg body weight",
			})
		case perKG > maxProteinPerKG:
			out = append(out, Finding{
				Type:       "high_protein",
				Severity:   SeverityWarning,
				Level:      LevelMedium,
				Issue:      fmt.Sprintf("Protein target is very high (%.1fg/kg). Typical range: 1.6-2.5g/kg", perKG),
				Resolution: "Verify this protein level is intentional and safe for the user",
			})
		}
	}

	if has(in.DietaryRestrictions, "vegan", "vegetarian") && protein > plantProteinCeiling {
		out = append(out, Finding{
			Type:       "difficult_target",
			Severity:   SeverityWarning,
			Level:      LevelMedium,
			Issue:      fmt.Sprintf("Very high protein target (%sg) with vegan/vegetarian diet may be challenging", num(protein)),
			Resolution: "May need protein supplements or extensive legume/tofu consumption",
		})
	}

	return out
}

// Coarse calories-per-kg sanity bounds for the goal check. These are
// heuristics, not physiological limits.
const (
	weightLossMaxKcalPerKG = 30
	muscleGainMinKcalPerKG = 25
)

func checkGoal(in Input) []Finding {
	if in.Goal == "" || !present(in.TargetCalories) || !present(in.WeightKG) {
		return nil
	}
	cal, weight := *in.TargetCalories, *in.WeightKG

	switch in.Goal {
	case kbju.WeightLoss:
		if cal > weight*weightLossMaxKcalPerKG {
			return []Finding{{
				Type:       "goal_mismatch",
				Severity:   SeverityWarning,
				Level:      LevelLow,
				Issue:      fmt.Sprintf("Weight loss goal but calories (%s) seem high for weight (%skg)", num(cal), num(weight)),
				Resolution: "Verify the calorie target matches the weight loss goal",
			}}
		}
	case kbju.MuscleGain:
		if cal < weight*muscleGainMinKcalPerKG {
			return []Finding{{
				Type:       "goal_mismatch",
				Severity:   SeverityWarning,
				Level:      LevelLow,
				Issue:      fmt.Sprintf("Muscle gain goal but calories (%s) may be too low", num(cal)),
				Resolution: "Consider increasing calories for muscle growth",
			}}
		}
	}
	return nil
}

/* ─── Over-restriction volume checks ─────────────────────────────────── */

func checkVolume(in Input) []Finding {
	var out []Finding
	if n := len(in.DietaryRestrictions); n >= maxRestrictions {
		out = append(out, Finding{
			Type:       "too_restrictive",
			Severity:   SeverityWarning,
			Level:      LevelMedium,
			Issue:      fmt.Sprintf("User has many dietary restrictions (%d) which may limit recipe variety", n),
			Resolution: "Consider prioritizing the most important restrictions if recipe options are limited",
		})
	}
	if n := len(in.FoodsToAvoid); n >= maxAvoidedFoods {
		out = append(out, Finding{
			Type:       "too_many_avoided_foods",
			Severity:   SeverityWarning,
			Level:      LevelMedium,
			Issue:      fmt.Sprintf("User avoids many foods (%d) which may make meal planning difficult", n),
			Resolution: "Focus on core allergens/dislikes; consider if all are strictly necessary",
		})
	}
	return out
}

// num formats v without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
