package profile

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartdiet/smartdiet/internal/bodymetrics"
	"github.com/smartdiet/smartdiet/internal/domainerr"
)

// profileRowID is the primary key of the singleton row.
const profileRowID = 1

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL profile repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Load returns the stored profile.
func (r *PostgresRepository) Load(ctx context.Context) (*UserProfile, error) {
	query := `
		SELECT nickname, weight_kg, height_cm, age, gender, activity_level,
		       bmi, calorie_target, health_conditions, updated_at
		FROM user_profile
		WHERE id = $1
	`

	var (
		p        UserProfile
		gender   string
		activity float64
	)
	err := r.pool.QueryRow(ctx, query, profileRowID).Scan(
		&p.Nickname,
		&p.WeightKg,
		&p.HeightCm,
		&p.Age,
		&gender,
		&activity,
		&p.BMI,
		&p.CalorieTarget,
		&p.HealthConditions,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, domainerr.PersistenceUnavailable("load profile", err)
	}

	p.Gender = bodymetrics.Gender(gender)
	p.Activity = bodymetrics.ActivityLevel(activity)
	return &p, nil
}

// Save upserts the singleton profile row.
func (r *PostgresRepository) Save(ctx context.Context, p *UserProfile) error {
	query := `
		INSERT INTO user_profile (
			id, nickname, weight_kg, height_cm, age, gender, activity_level,
			bmi, calorie_target, health_conditions, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			nickname = EXCLUDED.nickname,
			weight_kg = EXCLUDED.weight_kg,
			height_cm = EXCLUDED.height_cm,
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			activity_level = EXCLUDED.activity_level,
			bmi = EXCLUDED.bmi,
			calorie_target = EXCLUDED.calorie_target,
			health_conditions = EXCLUDED.health_conditions,
			updated_at = EXCLUDED.updated_at
	`

	conditions := p.HealthConditions
	if conditions == nil {
		conditions = []string{}
	}

	_, err := r.pool.Exec(ctx, query,
		profileRowID,
		p.Nickname,
		p.WeightKg,
		p.HeightCm,
		p.Age,
		string(p.Gender),
		float64(p.Activity),
		p.BMI,
		p.CalorieTarget,
		conditions,
		p.UpdatedAt,
	)
	if err != nil {
		return domainerr.PersistenceUnavailable("save profile", err)
	}
	return nil
}
