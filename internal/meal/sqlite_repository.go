package meal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/smartdiet/smartdiet/internal/domainerr"
)

const sqliteMealColumns = `id, description, eaten_at, image_path, calories, protein, carbs, fat, raw_analysis`

// SQLiteRepository is a SQLite implementation of Repository for local-first use.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite meal repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert stores a meal.
func (r *SQLiteRepository) Insert(ctx context.Context, rec *Record) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO meals(description, eaten_at, image_path, calories, protein, carbs, fat, raw_analysis)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Description, rec.Timestamp.UnixMilli(), rec.ImagePath,
		rec.Calories, rec.Protein, rec.Carbs, rec.Fat, rec.Analysis,
	)
	if err != nil {
		return 0, domainerr.PersistenceUnavailable("insert meal", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domainerr.PersistenceUnavailable("insert meal", err)
	}
	return id, nil
}

// Delete removes a meal.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meals WHERE id = ?`, id)
	if err != nil {
		return domainerr.PersistenceUnavailable("delete meal", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domainerr.PersistenceUnavailable("delete meal", err)
	}
	if n == 0 {
		return ErrMealNotFound
	}
	return nil
}

// Get returns a meal by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteMealColumns+` FROM meals WHERE id = ?`, id)
	rec, err := scanSQLiteMeal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMealNotFound
		}
		return nil, domainerr.PersistenceUnavailable("get meal", err)
	}
	return rec, nil
}

// ListAll returns every meal, newest first.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]*Record, error) {
	return r.ListRecent(ctx, 0)
}

// ListRecent returns the n newest meals. n <= 0 returns all.
func (r *SQLiteRepository) ListRecent(ctx context.Context, n int) ([]*Record, error) {
	if n <= 0 {
		n = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteMealColumns+` FROM meals ORDER BY eaten_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, domainerr.PersistenceUnavailable("list meals", err)
	}
	defer rows.Close()

	var meals []*Record
	for rows.Next() {
		rec, err := scanSQLiteMeal(rows)
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
func (r *SQLiteRepository) SumCalories(ctx context.Context, start, end time.Time) (*int, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(calories) FROM meals WHERE eaten_at >= ? AND eaten_at < ?`,
		start.UnixMilli(), end.UnixMilli(),
	).Scan(&total)
	if err != nil {
		return nil, domainerr.PersistenceUnavailable("sum calories", err)
	}
	if !total.Valid {
		return nil, nil
	}
	v := int(total.Int64)
	return &v, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteMeal(row rowScanner) (*Record, error) {
	var (
		rec       Record
		ts        int64
		imagePath sql.NullString
		calories  sql.NullInt64
		protein   sql.NullFloat64
		carbs     sql.NullFloat64
		fat       sql.NullFloat64
		analysis  sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.Description, &ts, &imagePath, &calories, &protein, &carbs, &fat, &analysis); err != nil {
		return nil, err
	}

	rec.Timestamp = time.UnixMilli(ts)
	if imagePath.Valid {
		rec.ImagePath = &imagePath.String
	}
	if calories.Valid {
		c := int(calories.Int64)
		rec.Calories = &c
	}
	if protein.Valid {
		rec.Protein = &protein.Float64
	}
	if carbs.Valid {
		rec.Carbs = &carbs.Float64
	}
	if fat.Valid {
		rec.Fat = &fat.Float64
	}
	if analysis.Valid {
		rec.Analysis = &analysis.String
	}
	return &rec, nil
}
