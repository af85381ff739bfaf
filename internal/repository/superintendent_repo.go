package repository

import (
	"context"
	"database/sql"
	"fmt"

	"reporthub/internal/database"
	"reporthub/internal/models"
)

// SuperintendentRepository handles database operations for group superintendents
type SuperintendentRepository struct {
	db database.DBTX
}

func NewSuperintendentRepository(db database.DBTX) *SuperintendentRepository {
	return &SuperintendentRepository{db: db}
}

// List returns all superintendents ordered by group
func (r *SuperintendentRepository) List(ctx context.Context) ([]models.Superintendent, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, group_number, created_at FROM superintendents ORDER BY group_number")
	if err != nil {
		return nil, fmt.Errorf("failed to query superintendents: %w", err)
	}
	defer rows.Close()

	var out []models.Superintendent
	for rows.Next() {
		var s models.Superintendent
		if err := rows.Scan(&s.ID, &s.Name, &s.GroupNumber, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan superintendent: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get retrieves a superintendent by ID
func (r *SuperintendentRepository) Get(ctx context.Context, id int64) (*models.Superintendent, error) {
	var s models.Superintendent
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, group_number, created_at FROM superintendents WHERE id = ?", id,
	).Scan(&s.ID, &s.Name, &s.GroupNumber, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get superintendent: %w", err)
	}
	return &s, nil
}

// Upsert inserts a superintendent or renames the one leading the same group
func (r *SuperintendentRepository) Upsert(ctx context.Context, name string, group int) error {
	query := "INSERT INTO superintendents (name, group_number) VALUES (?, ?)" +
		r.db.GetDialect().UpsertClause([]string{"group_number"}, []string{"name"})
	if _, err := r.db.ExecContext(ctx, query, name, group); err != nil {
		return fmt.Errorf("failed to upsert superintendent: %w", err)
	}
	return nil
}
