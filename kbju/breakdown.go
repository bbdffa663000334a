package kbju

// Meal is one entry of a meal plan with its nutrition already known.
type Meal struct {
	MealType   string  `json:"meal_type"`
	RecipeName string  `json:"recipe_name"`
	Calories   float64 `json:"calories"`
	ProteinG   float64 `json:"protein_g"`
	FatG       float64 `json:"fat_g"`
	CarbsG     float64 `json:"carbs_g"`
	FiberG     float64 `json:"fiber_g"`
}

// Day groups the meals planned for one day.
type Day struct {
	Day   int    `json:"day"`
	Meals []Meal `json:"meals"`
}

// Totals is a summed nutrition figure.
type Totals struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
	FiberG   float64 `json:"fiber_g"`
}

// DayBreakdown is one day's meals, their total, and (when targets are known)
// the total minus the daily targets. Positive deviation means over target.
type DayBreakdown struct {
	Day       int     `json:"day"`
	Meals     []Meal  `json:"meals"`
	Total     Totals  `json:"daily_total"`
	Deviation *Totals `json:"deviation,omitempty"`
}

// Breakdown sums each day of a meal plan. targets may be nil, in which case
// no deviation is reported.
func Breakdown(days []Day, targets *Targets) []DayBreakdown {
	out := make([]DayBreakdown, 0, len(days))
	for _, d := range days {
		var t Totals
		for _, m := range d.Meals {
			t.Calories += m.Calories
			t.ProteinG += m.ProteinG
			t.FatG += m.FatG
			t.CarbsG += m.CarbsG
			t.FiberG += m.FiberG
		}
		meals := d.Meals
		if meals == nil {
			meals = []Meal{}
		}
		db := DayBreakdown{Day: d.Day, Meals: meals, Total: t.rounded()}
		if targets != nil {
			db.Deviation = &Totals{
				Calories: round1(t.Calories - targets.TargetCalories),
				ProteinG: round1(t.ProteinG - targets.ProteinG),
				FatG:     round1(t.FatG - targets.FatG),
				CarbsG:   round1(t.CarbsG - targets.CarbsG),
			}
		}
		out = append(out, db)
	}
	return out
}

func (t Totals) rounded() Totals {
	return Totals{
		Calories: round1(t.Calories),
		ProteinG: round1(t.ProteinG),
		FatG:     round1(t.FatG),
		CarbsG:   round1(t.CarbsG),
		FiberG:   round1(t.FiberG),
	}
}
