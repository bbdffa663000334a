// CLI tool to compute daily calorie and macro targets offline and check them
// against dietary preferences. Prints JSON to stdout; exits 1 when the
// calculator refuses the input.
// Usage: go run ./cmd/kbju -age 30 -gender male -height 180 -weight 80 -goal weight_loss -restrictions vegan
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"lg/kbju-go-api/consistency"
	"lg/kbju-go-api/kbju"
)

type report struct {
	Status     string              `json:"status"`
	Targets    *kbju.Targets       `json:"targets,omitempty"`
	Validation *consistency.Result `json:"validation,omitempty"`
	ErrorKind  string              `json:"error_kind,omitempty"`
	Message    string              `json:"message,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("kbju", flag.ContinueOnError)
	fs.SetOutput(stderr)
	age := fs.Int("age", 0, "age in years (18+)")
	gender := fs.String("gender", "", "male or female")
	height := fs.Float64("height", 0, "height in cm")
	weight := fs.Float64("weight", 0, "weight in kg")
	activity := fs.String("activity", "sedentary", "sedentary, lightly_active, moderately_active, very_active or extremely_active")
	goal := fs.String("goal", "maintenance", "weight_loss, maintenance, muscle_gain or recomp")
	rate := fs.String("rate", "moderate", "slow, moderate or aggressive")
	restrictions := fs.String("restrictions", "", "comma-separated dietary restrictions")
	favorites := fs.String("favorites", "", "comma-separated favorite foods")
	avoid := fs.String("avoid", "", "comma-separated foods to avoid")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rep, code := evaluate(*age, *gender, *height, *weight, *activity, *goal, *rate,
		consistency.Input{
			DietaryRestrictions: splitList(*restrictions),
			FavoriteFoods:       splitList(*favorites),
			FoodsToAvoid:        splitList(*avoid),
		})

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		fmt.Fprintf(stderr, "encode: %v\n", err)
		return 1
	}
	return code
}

func evaluate(age int, gender string, height, weight float64, activity, goal, rate string, prefs consistency.Input) (report, int) {
	fail := func(err error) (report, int) {
		return report{Status: "error", ErrorKind: kbju.ErrorKind(err), Message: err.Error()}, 1
	}

	g, err := kbju.ParseGender(gender)
	if err != nil {
		return fail(err)
	}
	a, err := kbju.ParseActivityLevel(activity)
	if err != nil {
		return fail(err)
	}
	gl, err := kbju.ParseGoal(goal)
	if err != nil {
		return fail(err)
	}
	r, err := kbju.ParseGoalRate(rate)
	if err != nil {
		return fail(err)
	}

	targets, err := kbju.Compute(kbju.Profile{
		Age: age, Gender: g, HeightCM: height, WeightKG: weight,
		ActivityLevel: a, Goal: gl, GoalRate: r,
	})
	if err != nil {
		return fail(err)
	}

	res := consistency.Validate(prefs.WithTargets(targets, weight))
	return report{Status: "success", Targets: &targets, Validation: &res}, 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
