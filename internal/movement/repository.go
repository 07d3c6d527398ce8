package movement

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository is the Postgres-backed Store.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, m Movement) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO movements (id, user_id, type, category, amount, description, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, m.ID, m.UserID, m.Type, m.Category, m.Amount, m.Description, m.Date)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Movement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, category, amount, description, date
		FROM movements
		WHERE user_id = $1
		ORDER BY date DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer rows.Close()

	return scanMovements(rows)
}

func (r *Repository) ListByUserAndMonth(ctx context.Context, userID string, month int) ([]Movement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, category, amount, description, date
		FROM movements
		WHERE user_id = $1 AND EXTRACT(MONTH FROM date) = $2
		ORDER BY date DESC
	`, userID, month)
	if err != nil {
		return nil, fmt.Errorf("query movements by month: %w", err)
	}
	defer rows.Close()

	return scanMovements(rows)
}

func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM movements
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func scanMovements(rows *sql.Rows) ([]Movement, error) {
	movements := make([]Movement, 0)
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.UserID, &m.Type, &m.Category, &m.Amount, &m.Description, &m.Date); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movements: %w", err)
	}

	return movements, nil
}
