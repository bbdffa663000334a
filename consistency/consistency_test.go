package consistency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lg/kbju-go-api/kbju"
)

func f(v float64) *float64 { return &v }

// findingsOf returns the findings of the given type.
func findingsOf(findings []Finding, typ string) []Finding {
	var out []Finding
	for _, fd := range findings {
		if fd.Type == typ {
			out = append(out, fd)
		}
	}
	return out
}

/* ─── Restriction vs. favorite food ──────────────────────────────────── */

func TestValidate_VegetarianWithMeat(t *testing.T) {
	res := Validate(Input{
		DietaryRestrictions: []string{"vegetarian"},
		FavoriteFoods:       []string{"beef", "rice"},
	})

	assert.Equal(t, StatusError, res.Status)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "dietary_contradiction", res.Errors[0].Type)
	assert.Equal(t, LevelHigh, res.Errors[0].Level)
	assert.Contains(t, res.Errors[0].Issue, "beef")
	assert.NotContains(t, res.Errors[0].Issue, "rice")
	assert.Equal(t, 1, res.ErrorCount)
}

func TestValidate_VegetarianWithSeafoodIsSuggestionOnly(t *testing.T) {
	res := Validate(Input{
		DietaryRestrictions: []string{"vegetarian"},
		FavoriteFoods:       []string{"salmon"},
	})

	assert.Equal(t, StatusSuccess, res.Status)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Suggestions, 1)
	assert.Equal(t, SeveritySuggestion, res.Suggestions[0].Severity)
	assert.Contains(t, res.Suggestions[0].Issue, "pescatarian")
}

func TestCheck_SubstringAndCaseFolding(t *testing.T) {
	findings := Check(Input{
		DietaryRestrictions: []string{"  VEGETARIAN "},
		FavoriteFoods:       []string{"Beef Stew", "Chicken Tikka", "tofu"},
	})

	errs := findingsOf(findings, "dietary_contradiction")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Issue, "beef stew, chicken tikka")
}

func TestCheck_Vegan(t *testing.T) {
	findings := Check(Input{
		DietaryRestrictions: []string{"vegan"},
		FavoriteFoods:       []string{"honey toast", "lentils"},
	})

	errs := findingsOf(findings, "dietary_contradiction")
	require.Len(t, errs, 1)
	assert.Equal(t, LevelCritical, errs[0].Level)
	assert.Contains(t, errs[0].Issue, "honey toast")

	// vegan without vegetarian adds the implication hint
	assert.Len(t, findingsOf(findings, "vegan_implies_vegetarian"), 1)

	withVeg := Check(Input{DietaryRestrictions: []string{"vegan", "vegetarian"}})
	assert.Empty(t, findingsOf(withVeg, "vegan_implies_vegetarian"))
}

func TestCheck_GlutenAndDairyAreWarnings(t *testing.T) {
	cases := []struct {
		name        string
		restriction string
		favorite    string
	}{
		{"gluten_free", "gluten_free", "pasta carbonara"},
		{"gluten-free", "gluten-free", "rye bread"},
		{"lactose_intolerant", "lactose_intolerant", "ice cream"},
		{"dairy_free", "dairy_free", "greek yogurt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Validate(Input{
				DietaryRestrictions: []string{tc.restriction},
				FavoriteFoods:       []string{tc.favorite},
			})
			assert.Equal(t, StatusWarning, res.Status)
			assert.True(t, res.Valid)
			require.Len(t, res.Warnings, 1)
			assert.Equal(t, "dietary_warning", res.Warnings[0].Type)
			assert.Equal(t, LevelMedium, res.Warnings[0].Level)
			assert.Contains(t, res.Warnings[0].Issue, tc.favorite)
		})
	}
}

/* ─── Numeric checks ─────────────────────────────────────────────────── */

func TestValidate_MacroMismatch(t *testing.T) {
	res := Validate(Input{
		TargetCalories: f(2000),
		TargetProteinG: f(50),
		TargetFatG:     f(50),
		TargetCarbsG:   f(50),
	})

	assert.Equal(t, StatusError, res.Status)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "macro_mismatch", res.Errors[0].Type)
	assert.Contains(t, res.Errors[0].Issue, "850")
	assert.Contains(t, res.Errors[0].Issue, "2000")
	assert.Contains(t, res.Errors[0].Resolution, "1150")
}

func TestCheck_MacroWithinTolerance(t *testing.T) {
	// 150*4 + 70*9 + 200*4 = 2030, within 10% of 2100
	findings := Check(Input{
		TargetCalories: f(2100),
		TargetProteinG: f(150),
		TargetFatG:     f(70),
		TargetCarbsG:   f(200),
	})
	assert.Empty(t, findingsOf(findings, "macro_mismatch"))
}

func TestCheck_MissingNumericsSkipChecks(t *testing.T) {
	cases := []struct {
		name string
		in   Input
	}{
		{"no carbs", Input{TargetCalories: f(2000), TargetProteinG: f(10), TargetFatG: f(10)}},
		{"zero calories", Input{TargetCalories: f(0), TargetProteinG: f(10), TargetFatG: f(10), TargetCarbsG: f(10)}},
		{"goal without weight", Input{Goal: kbju.WeightLoss, TargetCalories: f(5000)}},
		{"nothing at all", Input{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Empty(t, Check(tc.in))
			assert.Equal(t, StatusSuccess, Validate(tc.in).Status)
		})
	}
}

func TestCheck_ProteinDensity(t *testing.T) {
	base := func(protein float64) Input {
		// fat and carbs balance the calories so only density can fire
		return Input{
			TargetCalories: f(protein*4 + 70*9 + 250*4),
			TargetProteinG: f(protein),
			TargetFatG:     f(70),
			TargetCarbsG:   f(250),
			WeightKG:       f(80),
		}
	}

	low := Check(base(50))
	require.Len(t, findingsOf(low, "low_protein"), 1)
	assert.Contains(t, findingsOf(low, "low_protein")[0].Issue, "0.6g/kg")

	high := Check(base(260))
	require.Len(t, findingsOf(high, "high_protein"), 1)
	assert.Contains(t, findingsOf(high, "high_protein")[0].Issue, "3.2g/kg")

	assert.Empty(t, Check(base(160)))
}

// TestCheck_DifficultTargetAndHighProteinBothFire keeps the two rules
// independent of each other.
func TestCheck_DifficultTargetAndHighProteinBothFire(t *testing.T) {
	findings := Check(Input{
		DietaryRestrictions: []string{"vegetarian"},
		TargetCalories:      f(200*4 + 60*9 + 200*4),
		TargetProteinG:      f(200),
		TargetFatG:          f(60),
		TargetCarbsG:        f(200),
		WeightKG:            f(60),
	})

	assert.Len(t, findingsOf(findings, "high_protein"), 1)
	require.Len(t, findingsOf(findings, "difficult_target"), 1)
	assert.Contains(t, findingsOf(findings, "difficult_target")[0].Issue, "200g")
}

func TestCheck_GoalMismatch(t *testing.T) {
	loss := Check(Input{Goal: kbju.WeightLoss, TargetCalories: f(2500), WeightKG: f(70)})
	require.Len(t, findingsOf(loss, "goal_mismatch"), 1)
	assert.Equal(t, LevelLow, loss[0].Level)
	assert.Contains(t, loss[0].Issue, "2500")
	assert.Contains(t, loss[0].Issue, "70kg")

	gain := Check(Input{Goal: "Muscle_Gain", TargetCalories: f(1500), WeightKG: f(70)})
	assert.Len(t, findingsOf(gain, "goal_mismatch"), 1)

	assert.Empty(t, Check(Input{Goal: kbju.WeightLoss, TargetCalories: f(1800), WeightKG: f(70)}))
	assert.Empty(t, Check(Input{Goal: kbju.Maintenance, TargetCalories: f(9000), WeightKG: f(70)}))
}

/* ─── Volume checks ──────────────────────────────────────────────────── */

func TestCheck_Volume(t *testing.T) {
	avoid := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	findings := Check(Input{
		DietaryRestrictions: []string{"kosher", "halal", "low_sodium", "nut_free"},
		FoodsToAvoid:        avoid,
	})
	assert.Len(t, findingsOf(findings, "too_restrictive"), 1)
	assert.Len(t, findingsOf(findings, "too_many_avoided_foods"), 1)

	fewer := Check(Input{
		DietaryRestrictions: []string{"kosher", "halal", "low_sodium"},
		FoodsToAvoid:        avoid[:9],
	})
	assert.Empty(t, fewer)
}

/* ─── Aggregation ────────────────────────────────────────────────────── */

func TestValidate_ErrorsDominateWarnings(t *testing.T) {
	res := Validate(Input{
		DietaryRestrictions: []string{"vegetarian", "gluten_free", "kosher", "halal"},
		FavoriteFoods:       []string{"pork belly", "bread", "shrimp"},
	})

	assert.Equal(t, StatusError, res.Status)
	assert.False(t, res.Valid)
	assert.Empty(t, res.Warnings)
	// suggestions computed in the same call are not surfaced on the error path
	assert.Empty(t, res.Suggestions)
	assert.NotEmpty(t, findingsOf(Check(Input{
		DietaryRestrictions: []string{"vegetarian"},
		FavoriteFoods:       []string{"shrimp"},
	}), "pescatarian_hint"))
}

func TestAggregate_TopTwoErrors(t *testing.T) {
	res := Aggregate([]Finding{
		{Type: "a", Severity: SeverityError, Issue: "first", Resolution: "fix one"},
		{Type: "b", Severity: SeverityWarning, Issue: "warn"},
		{Type: "c", Severity: SeverityError, Issue: "second", Resolution: "fix two"},
		{Type: "d", Severity: SeverityError, Issue: "third", Resolution: "fix three"},
	})

	assert.Equal(t, 3, res.ErrorCount)
	assert.Equal(t, "fix one OR fix two", res.SuggestedResolution)
	assert.Equal(t, "Found 3 critical contradiction(s): first; second", res.Message)
}

func TestAggregate_WarningKeepsSuggestions(t *testing.T) {
	res := Aggregate([]Finding{
		{Type: "s", Severity: SeveritySuggestion, Issue: "hint"},
		{Type: "w", Severity: SeverityWarning, Issue: "careful"},
	})

	assert.Equal(t, StatusWarning, res.Status)
	assert.True(t, res.Valid)
	assert.Equal(t, 1, res.WarningCount)
	assert.Equal(t, "Found 1 potential issue(s) that should be reviewed", res.Message)
	require.Len(t, res.Suggestions, 1)
	assert.Equal(t, "hint", res.Suggestions[0].Issue)
}

func TestAggregate_Empty(t *testing.T) {
	res := Aggregate(nil)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.True(t, res.Valid)
	assert.Equal(t, "All data is consistent - no contradictions found", res.Message)
}

func TestValidate_Idempotent(t *testing.T) {
	in := Input{
		DietaryRestrictions: []string{"vegan"},
		FavoriteFoods:       []string{"cheese", "salmon"},
		TargetCalories:      f(1800),
		TargetProteinG:      f(160),
		TargetFatG:          f(60),
		TargetCarbsG:        f(150),
		WeightKG:            f(70),
		Goal:                kbju.WeightLoss,
	}
	assert.Equal(t, Validate(in), Validate(in))
	// inputs must not be mutated by case folding
	assert.Equal(t, []string{"cheese", "salmon"}, in.FavoriteFoods)
}

/* ─── Calculator cross-check ─────────────────────────────────────────── */

func TestWithTargets_CalculatorOutputIsConsistent(t *testing.T) {
	p := kbju.Profile{Age: 30, Gender: kbju.Male, HeightCM: 180, WeightKG: 80,
		ActivityLevel: kbju.ModeratelyActive, Goal: kbju.MuscleGain, GoalRate: kbju.Moderate}
	targets, err := kbju.Compute(p)
	require.NoError(t, err)

	in := Input{DietaryRestrictions: []string{"gluten_free"}}.WithTargets(targets, p.WeightKG)
	require.NotNil(t, in.TargetCalories)
	assert.Equal(t, targets.TargetCalories, *in.TargetCalories)
	assert.Equal(t, kbju.MuscleGain, in.Goal)

	res := Validate(in)
	assert.Equal(t, StatusSuccess, res.Status, "calculator output should cross-check cleanly: %+v", res)
}
