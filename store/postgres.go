package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the production store. Schema lives in db/*.sql and is applied
// by cmd/migrate.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a connection pool. We use a pool (not a single conn)
// because Neon closes idle connections after ~5 minutes.
func NewPostgres(ctx context.Context, url string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}
	// Simple query protocol avoids "cached plan must not change result type"
	// errors from Neon's server-side prepared statement cache after migrations.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Close() { s.pool.Close() }

/* ─── Query helpers ──────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// pgx.ErrNoRows is translated to ErrNotFound.
func queryOne[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("query: %w", err)
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return result, ErrNotFound
	}
	if err != nil {
		return result, fmt.Errorf("scan: %w", err)
	}
	return result, nil
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return results, nil
}

// jsonArg marshals v for a @param::jsonb placeholder. Simple protocol sends
// parameters as text, so jsonb values go over the wire as JSON strings.
func jsonArg(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

/* ─── Users ──────────────────────────────────────────────────────────── */

func (s *Postgres) UserByUsername(ctx context.Context, username string) (User, error) {
	return queryOne[User](ctx, s.pool,
		"SELECT * FROM users WHERE username = @username",
		pgx.NamedArgs{"username": username})
}

func (s *Postgres) UserIDByToken(ctx context.Context, token string) (int, error) {
	var userID int
	err := s.pool.QueryRow(ctx, "SELECT id FROM users WHERE auth_token = $1", token).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return userID, err
}

func (s *Postgres) CreateUser(ctx context.Context, u User) (User, error) {
	return queryOne[User](ctx, s.pool,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES (@username, @email, @password, @authToken)
		 RETURNING *`,
		pgx.NamedArgs{"username": u.Username, "email": u.Email, "password": u.Password, "authToken": u.AuthToken})
}

/* ─── Profiles ───────────────────────────────────────────────────────── */

func (s *Postgres) GetProfile(ctx context.Context, userID int) (Profile, error) {
	return queryOne[Profile](ctx, s.pool,
		"SELECT * FROM nutrition_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
}

// UpsertProfile replaces the user's whole profile.
func (s *Postgres) UpsertProfile(ctx context.Context, p Profile) (Profile, error) {
	args := pgx.NamedArgs{
		"userID": p.UserID, "age": p.Age, "gender": p.Gender,
		"heightCM": p.HeightCM, "weightKG": p.WeightKG,
		"activityLevel": p.ActivityLevel, "goal": p.Goal, "goalRate": p.GoalRate,
		"mealFrequency": p.MealFrequency, "cookingSkill": p.CookingSkill, "budgetLevel": p.BudgetLevel,
	}
	lists := map[string][]string{
		"dietaryRestrictions": p.DietaryRestrictions,
		"allergies":           p.Allergies,
		"favoriteFoods":       p.FavoriteFoods,
		"foodsToAvoid":        p.FoodsToAvoid,
		"healthConditions":    p.HealthConditions,
	}
	for name, list := range lists {
		v, err := jsonArg(list)
		if err != nil {
			return Profile{}, fmt.Errorf("marshal %s: %w", name, err)
		}
		args[name] = v
	}

	return queryOne[Profile](ctx, s.pool,
		`INSERT INTO nutrition_profiles (
			user_id, age, gender, height_cm, weight_kg, activity_level, goal, goal_rate,
			dietary_restrictions, allergies, favorite_foods, foods_to_avoid, health_conditions,
			meal_frequency, cooking_skill, budget_level, updated_at)
		 VALUES (
			@userID, @age, @gender, @heightCM, @weightKG, @activityLevel, @goal, @goalRate,
			@dietaryRestrictions::jsonb, @allergies::jsonb, @favoriteFoods::jsonb,
			@foodsToAvoid::jsonb, @healthConditions::jsonb,
			@mealFrequency, @cookingSkill, @budgetLevel, now())
		 ON CONFLICT (user_id) DO UPDATE SET
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			activity_level = EXCLUDED.activity_level,
			goal = EXCLUDED.goal,
			goal_rate = EXCLUDED.goal_rate,
			dietary_restrictions = EXCLUDED.dietary_restrictions,
			allergies = EXCLUDED.allergies,
			favorite_foods = EXCLUDED.favorite_foods,
			foods_to_avoid = EXCLUDED.foods_to_avoid,
			health_conditions = EXCLUDED.health_conditions,
			meal_frequency = EXCLUDED.meal_frequency,
			cooking_skill = EXCLUDED.cooking_skill,
			budget_level = EXCLUDED.budget_level,
			updated_at = now()
		 RETURNING *`, args)
}

/* ─── Calculations ───────────────────────────────────────────────────── */

// SaveCalculation inserts c. The headline figures are duplicated into plain
// columns so they can be queried without unpacking calculation_data.
func (s *Postgres) SaveCalculation(ctx context.Context, c Calculation) (Calculation, error) {
	stamp(&c.ID, &c.CalculatedAt)
	profileJSON, err := jsonArg(c.Profile)
	if err != nil {
		return Calculation{}, fmt.Errorf("marshal profile: %w", err)
	}
	targetsJSON, err := jsonArg(c.Targets)
	if err != nil {
		return Calculation{}, fmt.Errorf("marshal targets: %w", err)
	}

	return queryOne[Calculation](ctx, s.pool,
		`INSERT INTO kbju_calculations (
			id, user_id, calculated_at, bmr, tdee, target_calories,
			protein_g, fat_g, carbs_g, goal, profile_data, calculation_data)
		 VALUES (
			@id, @userID, @calculatedAt, @bmr, @tdee, @targetCalories,
			@proteinG, @fatG, @carbsG, @goal, @profileData::jsonb, @calculationData::jsonb)
		 RETURNING id, user_id, calculated_at, profile_data, calculation_data`,
		pgx.NamedArgs{
			"id": c.ID, "userID": c.UserID, "calculatedAt": c.CalculatedAt,
			"bmr": c.Targets.BMR, "tdee": c.Targets.TDEE, "targetCalories": c.Targets.TargetCalories,
			"proteinG": c.Targets.ProteinG, "fatG": c.Targets.FatG, "carbsG": c.Targets.CarbsG,
			"goal": string(c.Targets.Goal), "profileData": profileJSON, "calculationData": targetsJSON,
		})
}

func (s *Postgres) LatestCalculation(ctx context.Context, userID int) (Calculation, error) {
	return queryOne[Calculation](ctx, s.pool,
		`SELECT id, user_id, calculated_at, profile_data, calculation_data
		 FROM kbju_calculations
		 WHERE user_id = @userID
		 ORDER BY calculated_at DESC
		 LIMIT 1`,
		pgx.NamedArgs{"userID": userID})
}

// ListCalculations returns up to limit calculations, newest first.
func (s *Postgres) ListCalculations(ctx context.Context, userID, limit int) ([]Calculation, error) {
	return queryMany[Calculation](ctx, s.pool,
		`SELECT id, user_id, calculated_at, profile_data, calculation_data
		 FROM kbju_calculations
		 WHERE user_id = @userID
		 ORDER BY calculated_at DESC
		 LIMIT @limit`,
		pgx.NamedArgs{"userID": userID, "limit": limit})
}

/* ─── Validation runs ────────────────────────────────────────────────── */

func (s *Postgres) SaveValidationRun(ctx context.Context, r ValidationRun) (ValidationRun, error) {
	stamp(&r.ID, &r.CreatedAt)
	resultJSON, err := jsonArg(r.Result)
	if err != nil {
		return ValidationRun{}, fmt.Errorf("marshal result: %w", err)
	}
	return queryOne[ValidationRun](ctx, s.pool,
		`INSERT INTO validation_runs (id, user_id, status, error_count, warning_count, result_data, created_at)
		 VALUES (@id, @userID, @status, @errorCount, @warningCount, @resultData::jsonb, @createdAt)
		 RETURNING *`,
		pgx.NamedArgs{
			"id": r.ID, "userID": r.UserID, "status": r.Status,
			"errorCount": r.ErrorCount, "warningCount": r.WarningCount,
			"resultData": resultJSON, "createdAt": r.CreatedAt,
		})
}
