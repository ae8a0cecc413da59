package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/smartdiet/smartdiet/internal/bodymetrics"
	"github.com/smartdiet/smartdiet/internal/domainerr"
)

// SQLiteRepository is a SQLite implementation of Repository for local-first use.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite profile repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Load returns the stored profile.
func (r *SQLiteRepository) Load(ctx context.Context) (*UserProfile, error) {
	var (
		p          UserProfile
		gender     string
		activity   float64
		conditions string
		updatedAt  int64
	)
	err := r.db.QueryRowContext(ctx, `
SELECT nickname, weight_kg, height_cm, age, gender, activity_level,
       bmi, calorie_target, health_conditions, updated_at
FROM user_profile
WHERE id = ?`, profileRowID).Scan(
		&p.Nickname, &p.WeightKg, &p.HeightCm, &p.Age, &gender, &activity,
		&p.BMI, &p.CalorieTarget, &conditions, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, domainerr.PersistenceUnavailable("load profile", err)
	}

	if conditions != "" {
		if err := json.Unmarshal([]byte(conditions), &p.HealthConditions); err != nil {
			return nil, domainerr.PersistenceUnavailable("decode health conditions", err)
		}
	}
	p.Gender = bodymetrics.Gender(gender)
	p.Activity = bodymetrics.ActivityLevel(activity)
	p.UpdatedAt = time.UnixMilli(updatedAt)
	return &p, nil
}

// Save upserts the singleton profile row.
func (r *SQLiteRepository) Save(ctx context.Context, p *UserProfile) error {
	conditions := p.HealthConditions
	if conditions == nil {
		conditions = []string{}
	}
	encoded, err := json.Marshal(conditions)
	if err != nil {
		return domainerr.PersistenceUnavailable("encode health conditions", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO user_profile(
  id, nickname, weight_kg, height_cm, age, gender, activity_level,
  bmi, calorie_target, health_conditions, updated_at
) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  nickname = excluded.nickname,
  weight_kg = excluded.weight_kg,
  height_cm = excluded.height_cm,
  age = excluded.age,
  gender = excluded.gender,
  activity_level = excluded.activity_level,
  bmi = excluded.bmi,
  calorie_target = excluded.calorie_target,
  health_conditions = excluded.health_conditions,
  updated_at = excluded.updated_at`,
		profileRowID, p.Nickname, p.WeightKg, p.HeightCm, p.Age, string(p.Gender), float64(p.Activity),
		p.BMI, p.CalorieTarget, string(encoded), p.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return domainerr.PersistenceUnavailable("save profile", err)
	}
	return nil
}
