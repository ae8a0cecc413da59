package meal

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartdiet/smartdiet/internal/domainerr"
)

const pgMealColumns = `id, description, eaten_at, image_path, calories, protein, carbs, fat, raw_analysis`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL meal repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert stores a meal.
func (r *PostgresRepository) Insert(ctx context.Context, rec *Record) (int64, error) {
	query := `
		INSERT INTO meals (description, eaten_at, image_path, calories, protein, carbs, fat, raw_analysis)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		rec.Description,
		rec.Timestamp.UnixMilli(),
		rec.ImagePath,
		rec.Calories,
		rec.Protein,
		rec.Carbs,
		rec.Fat,
		rec.Analysis,
	).Scan(&id)
	if err != nil {
		return 0, domainerr.PersistenceUnavailable("insert meal", err)
	}
	return id, nil
}

// Delete removes a meal.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM meals WHERE id = $1`, id)
	if err != nil {
		return domainerr.PersistenceUnavailable("delete meal", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMealNotFound
	}
	return nil
}

// Get returns a meal by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Record, error) {
	query := `SELECT ` + pgMealColumns + ` FROM meals WHERE id = $1`

	rec, err := scanPgMeal(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMealNotFound
		}
		return nil, domainerr.PersistenceUnavailable("get meal", err)
	}
	return rec, nil
}

// ListAll returns every meal, newest first.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*Record, error) {
	return r.ListRecent(ctx, 0)
}

// ListRecent returns the n newest meals. n <= 0 returns all.
func (r *PostgresRepository) ListRecent(ctx context.Context, n int) ([]*Record, error) {
	query := `SELECT ` + pgMealColumns + ` FROM meals ORDER BY eaten_at DESC, id DESC`
	args := []interface{}{}
	if n > 0 {
		query += ` LIMIT $1`
		args = append(args, n)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domainerr.PersistenceUnavailable("list meals", err)
	}
	defer rows.Close()

	var meals []*Record
	for rows.Next() {
		rec, err := scanPgMeal(rows)
		if err != nil {
			return nil, domainerr.PersistenceUnavailable("scan meal", err)
		}
		meals = append(meals, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerr.PersistenceUnavailable("list meals", err)
	}
	return meals, nil
}

// SumCalories sums calories within [start, end).
func (r *PostgresRepository) SumCalories(ctx context.Context, start, end time.Time) (*int, error) {
	query := `SELECT SUM(calories) FROM meals WHERE eaten_at >= $1 AND eaten_at < $2`

	var total *int64
	if err := r.pool.QueryRow(ctx, query, start.UnixMilli(), end.UnixMilli()).Scan(&total); err != nil {
		return nil, domainerr.PersistenceUnavailable("sum calories", err)
	}
	if total == nil {
		return nil, nil
	}
	v := int(*total)
	return &v, nil
}

func scanPgMeal(row pgx.Row) (*Record, error) {
	var (
		rec Record
		ts  int64
	)
	if err := row.Scan(
		&rec.ID,
		&rec.Description,
		&ts,
		&rec.ImagePath,
		&rec.Calories,
		&rec.Protein,
		&rec.Carbs,
		&rec.Fat,
		&rec.Analysis,
	); err != nil {
		return nil, err
	}
	rec.Timestamp = time.UnixMilli(ts)
	return &rec, nil
}
