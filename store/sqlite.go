package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteSchema mirrors db/*.sql with JSON columns stored as TEXT and
// timestamps as fixed-width UTC strings.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	username    TEXT NOT NULL UNIQUE,
	email       TEXT NOT NULL DEFAULT '',
	password    TEXT NOT NULL,
	auth_token  TEXT NOT NULL UNIQUE,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS nutrition_profiles (
	user_id               INTEGER PRIMARY KEY,
	age                   INTEGER NOT NULL,
	gender                TEXT NOT NULL,
	height_cm             REAL NOT NULL,
	weight_kg             REAL NOT NULL,
	activity_level        TEXT NOT NULL,
	goal                  TEXT NOT NULL,
	goal_rate             TEXT NOT NULL,
	dietary_restrictions  TEXT NOT NULL DEFAULT 'null',
	allergies             TEXT NOT NULL DEFAULT 'null',
	favorite_foods        TEXT NOT NULL DEFAULT 'null',
	foods_to_avoid        TEXT NOT NULL DEFAULT 'null',
	health_conditions     TEXT NOT NULL DEFAULT 'null',
	meal_frequency        INTEGER,
	cooking_skill         TEXT,
	budget_level          TEXT,
	updated_at            TEXT NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS kbju_calculations (
	id                TEXT PRIMARY KEY,
	user_id           INTEGER NOT NULL,
	calculated_at     TEXT NOT NULL,
	bmr               REAL NOT NULL,
	tdee              REAL NOT NULL,
	target_calories   REAL NOT NULL,
	protein_g         REAL NOT NULL,
	fat_g             REAL NOT NULL,
	carbs_g           REAL NOT NULL,
	goal              TEXT NOT NULL,
	profile_data      TEXT NOT NULL,
	calculation_data  TEXT NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS kbju_calculations_user_time ON kbju_calculations (user_id, calculated_at);

CREATE TABLE IF NOT EXISTS validation_runs (
	id             TEXT PRIMARY KEY,
	user_id        INTEGER NOT NULL,
	status         TEXT NOT NULL,
	error_count    INTEGER NOT NULL,
	warning_count  INTEGER NOT NULL,
	result_data    TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id)
);
`

// timeLayout is fixed-width UTC so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite is a single-file store for local development and tests.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() { s.db.Close() }

/* ─── Users ──────────────────────────────────────────────────────────── */

func (s *SQLite) UserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password, auth_token, created_at FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.AuthToken, &createdAt)
	if err != nil {
		return User{}, notFound(err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return User{}, err
	}
	u.CreatedAt = &t
	return u, nil
}

func (s *SQLite) UserIDByToken(ctx context.Context, token string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE auth_token = ?`, token).Scan(&id)
	if err != nil {
		return 0, notFound(err)
	}
	return id, nil
}

func (s *SQLite) CreateUser(ctx context.Context, u User) (User, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password, auth_token, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.Password, u.AuthToken, now.Format(timeLayout))
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("last insert id: %w", err)
	}
	u.ID = int(id)
	u.CreatedAt = &now
	return u, nil
}

/* ─── Profiles ───────────────────────────────────────────────────────── */

func (s *SQLite) GetProfile(ctx context.Context, userID int) (Profile, error) {
	var p Profile
	var restrictions, allergies, favorites, avoid, conditions, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, age, gender, height_cm, weight_kg, activity_level, goal, goal_rate,
		        dietary_restrictions, allergies, favorite_foods, foods_to_avoid, health_conditions,
		        meal_frequency, cooking_skill, budget_level, updated_at
		 FROM nutrition_profiles WHERE user_id = ?`, userID).Scan(
		&p.UserID, &p.Age, &p.Gender, &p.HeightCM, &p.WeightKG, &p.ActivityLevel, &p.Goal, &p.GoalRate,
		&restrictions, &allergies, &favorites, &avoid, &conditions,
		&p.MealFrequency, &p.CookingSkill, &p.BudgetLevel, &updatedAt)
	if err != nil {
		return Profile{}, notFound(err)
	}

	for _, col := range []struct {
		raw string
		dst *[]string
	}{
		{restrictions, &p.DietaryRestrictions},
		{allergies, &p.Allergies},
		{favorites, &p.FavoriteFoods},
		{avoid, &p.FoodsToAvoid},
		{conditions, &p.HealthConditions},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return Profile{}, fmt.Errorf("decode profile list: %w", err)
		}
	}
	t, err := parseTime(updatedAt)
	if err != nil {
		return Profile{}, err
	}
	p.UpdatedAt = &t
	return p, nil
}

func (s *SQLite) UpsertProfile(ctx context.Context, p Profile) (Profile, error) {
	lists := make([]any, 0, 5)
	for _, l := range [][]string{p.DietaryRestrictions, p.Allergies, p.FavoriteFoods, p.FoodsToAvoid, p.HealthConditions} {
		b, err := json.Marshal(l)
		if err != nil {
			return Profile{}, fmt.Errorf("encode profile list: %w", err)
		}
		lists = append(lists, string(b))
	}

	args := []any{p.UserID, p.Age, p.Gender, p.HeightCM, p.WeightKG, p.ActivityLevel, p.Goal, p.GoalRate}
	args = append(args, lists...)
	args = append(args, p.MealFrequency, p.CookingSkill, p.BudgetLevel, time.Now().UTC().Format(timeLayout))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO nutrition_profiles (
			user_id, age, gender, height_cm, weight_kg, activity_level, goal, goal_rate,
			dietary_restrictions, allergies, favorite_foods, foods_to_avoid, health_conditions,
			meal_frequency, cooking_skill, budget_level, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
			age = excluded.age,
			gender = excluded.gender,
			height_cm = excluded.height_cm,
			weight_kg = excluded.weight_kg,
			activity_level = excluded.activity_level,
			goal = excluded.goal,
			goal_rate = excluded.goal_rate,
			dietary_restrictions = excluded.dietary_restrictions,
			allergies = excluded.allergies,
			favorite_foods = excluded.favorite_foods,
			foods_to_avoid = excluded.foods_to_avoid,
			health_conditions = excluded.health_conditions,
			meal_frequency = excluded.meal_frequency,
			cooking_skill = excluded.cooking_skill,
			budget_level = excluded.budget_level,
			updated_at = excluded.updated_at`, args...)
	if err != nil {
		return Profile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return s.GetProfile(ctx, p.UserID)
}

/* ─── Calculations ───────────────────────────────────────────────────── */

func (s *SQLite) SaveCalculation(ctx context.Context, c Calculation) (Calculation, error) {
	stamp(&c.ID, &c.CalculatedAt)
	profileJSON, err := json.Marshal(c.Profile)
	if err != nil {
		return Calculation{}, fmt.Errorf("marshal profile: %w", err)
	}
	targetsJSON, err := json.Marshal(c.Targets)
	if err != nil {
		return Calculation{}, fmt.Errorf("marshal targets: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kbju_calculations (
			id, user_id, calculated_at, bmr, tdee, target_calories,
			protein_g, fat_g, carbs_g, goal, profile_data, calculation_data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.CalculatedAt.UTC().Format(timeLayout),
		c.Targets.BMR, c.Targets.TDEE, c.Targets.TargetCalories,
		c.Targets.ProteinG, c.Targets.FatG, c.Targets.CarbsG, string(c.Targets.Goal),
		string(profileJSON), string(targetsJSON))
	if err != nil {
		return Calculation{}, fmt.Errorf("insert calculation: %w", err)
	}
	return c, nil
}

func (s *SQLite) LatestCalculation(ctx context.Context, userID int) (Calculation, error) {
	calcs, err := s.ListCalculations(ctx, userID, 1)
	if err != nil {
		return Calculation{}, err
	}
	if len(calcs) == 0 {
		return Calculation{}, ErrNotFound
	}
	return calcs[0], nil
}

// ListCalculations returns up to limit calculations, newest first.
func (s *SQLite) ListCalculations(ctx context.Context, userID, limit int) ([]Calculation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, calculated_at, profile_data, calculation_data
		 FROM kbju_calculations
		 WHERE user_id = ?
		 ORDER BY calculated_at DESC, rowid DESC
		 LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query calculations: %w", err)
	}
	defer rows.Close()

	var out []Calculation
	for rows.Next() {
		var c Calculation
		var at, profileJSON, targetsJSON string
		if err := rows.Scan(&c.ID, &c.UserID, &at, &profileJSON, &targetsJSON); err != nil {
			return nil, fmt.Errorf("scan calculation: %w", err)
		}
		if c.CalculatedAt, err = parseTime(at); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(profileJSON), &c.Profile); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		if err := json.Unmarshal([]byte(targetsJSON), &c.Targets); err != nil {
			return nil, fmt.Errorf("decode targets: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

/* ─── Validation runs ────────────────────────────────────────────────── */

func (s *SQLite) SaveValidationRun(ctx context.Context, r ValidationRun) (ValidationRun, error) {
	stamp(&r.ID, &r.CreatedAt)
	resultJSON, err := json.Marshal(r.Result)
	if err != nil {
		return ValidationRun{}, fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO validation_runs (id, user_id, status, error_count, warning_count, result_data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Status, r.ErrorCount, r.WarningCount, string(resultJSON),
		r.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return ValidationRun{}, fmt.Errorf("insert validation run: %w", err)
	}
	return r, nil
}

/* ─── helpers ────────────────────────────────────────────────────────── */

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
