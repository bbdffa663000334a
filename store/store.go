// Package store persists users, nutrition profiles, calculation history and
// validation runs. The calculator and validator never touch it; persisting
// their results is the API layer's job.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lg/kbju-go-api/consistency"
	"lg/kbju-go-api/kbju"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Store is implemented by Postgres and SQLite.
type Store interface {
	UserByUsername(ctx context.Context, username string) (User, error)
	UserIDByToken(ctx context.Context, token string) (int, error)
	CreateUser(ctx context.Context, u User) (User, error)

	GetProfile(ctx context.Context, userID int) (Profile, error)
	UpsertProfile(ctx context.Context, p Profile) (Profile, error)

	SaveCalculation(ctx context.Context, c Calculation) (Calculation, error)
	LatestCalculation(ctx context.Context, userID int) (Calculation, error)
	ListCalculations(ctx context.Context, userID, limit int) ([]Calculation, error)

	SaveValidationRun(ctx context.Context, r ValidationRun) (ValidationRun, error)

	Close()
}

// Open connects to the backend named by driver ("postgres" or "sqlite").
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case "postgres", "":
		s, err = NewPostgres(ctx, dsn)
	case "sqlite":
		s, err = NewSQLite(dsn)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

/* ─── Records ────────────────────────────────────────────────────────── */

// User maps to the users table. AuthToken and Password are hidden from JSON.
type User struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// Profile maps to nutrition_profiles, one row per user. Optional lists keep
// the nil/empty distinction: nil means the question was never answered, an
// empty list means the user has none.
type Profile struct {
	UserID              int        `json:"user_id"              db:"user_id"`
	Age                 int        `json:"age"                  db:"age"`
	Gender              string     `json:"gender"               db:"gender"`
	HeightCM            float64    `json:"height_cm"            db:"height_cm"`
	WeightKG            float64    `json:"weight_kg"            db:"weight_kg"`
	ActivityLevel       string     `json:"activity_level"       db:"activity_level"`
	Goal                string     `json:"goal"                 db:"goal"`
	GoalRate            string     `json:"goal_rate"            db:"goal_rate"`
	DietaryRestrictions []string   `json:"dietary_restrictions" db:"dietary_restrictions"`
	Allergies           []string   `json:"allergies"            db:"allergies"`
	FavoriteFoods       []string   `json:"favorite_foods"       db:"favorite_foods"`
	FoodsToAvoid        []string   `json:"foods_to_avoid"       db:"foods_to_avoid"`
	HealthConditions    []string   `json:"health_conditions"    db:"health_conditions"`
	MealFrequency       *int       `json:"meal_frequency"       db:"meal_frequency"`
	CookingSkill        *string    `json:"cooking_skill"        db:"cooking_skill"`
	BudgetLevel         *string    `json:"budget_level"         db:"budget_level"`
	UpdatedAt           *time.Time `json:"updated_at"           db:"updated_at"`
}

// KBJU converts the stored profile to calculator input. Enum values were
// checked when the profile was saved.
func (p Profile) KBJU() kbju.Profile {
	return kbju.Profile{
		Age:           p.Age,
		Gender:        kbju.Gender(p.Gender),
		HeightCM:      p.HeightCM,
		WeightKG:      p.WeightKG,
		ActivityLevel: kbju.ActivityLevel(p.ActivityLevel),
		Goal:          kbju.Goal(p.Goal),
		GoalRate:      kbju.GoalRate(p.GoalRate),
	}
}

// Calculation is one stored calculator run with the profile it ran on.
type Calculation struct {
	ID           string       `json:"id"            db:"id"`
	UserID       int          `json:"user_id"       db:"user_id"`
	CalculatedAt time.Time    `json:"calculated_at" db:"calculated_at"`
	Profile      kbju.Profile `json:"profile"       db:"profile_data"`
	Targets      kbju.Targets `json:"targets"       db:"calculation_data"`
}

// ValidationRun records the outcome of one validator call.
type ValidationRun struct {
	ID           string             `json:"id"            db:"id"`
	UserID       int                `json:"user_id"       db:"user_id"`
	Status       string             `json:"status"        db:"status"`
	ErrorCount   int                `json:"error_count"   db:"error_count"`
	WarningCount int                `json:"warning_count" db:"warning_count"`
	Result       consistency.Result `json:"result"        db:"result_data"`
	CreatedAt    time.Time          `json:"created_at"    db:"created_at"`
}

// NewValidationRun builds a run record from a validator result.
func NewValidationRun(userID int, res consistency.Result) ValidationRun {
	return ValidationRun{
		UserID:       userID,
		Status:       string(res.Status),
		ErrorCount:   res.ErrorCount,
		WarningCount: res.WarningCount,
		Result:       res,
	}
}

// stamp fills the generated ID and timestamp when unset.
func stamp(id *string, at *time.Time) {
	if *id == "" {
		*id = uuid.New().String()
	}
	if at.IsZero() {
		*at = time.Now().UTC()
	}
}
