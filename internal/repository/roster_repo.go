package repository

import (
	"context"
	"fmt"
	"time"

	"reporthub/internal/database"
	"reporthub/internal/models"
)

// RosterRepository stores administrator additions to the base roster
type RosterRepository struct {
	db database.DBTX
}

func NewRosterRepository(db database.DBTX) *RosterRepository {
	return &RosterRepository{db: db}
}

// UpsertCustomMember adds a member or reactivates and regroups the one with the same name key
func (r *RosterRepository) UpsertCustomMember(ctx context.Context, fullName, nameKey string, group int) error {
	query := `
		INSERT INTO report_admin_custom_members (full_name, name_key, group_number, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	` + r.db.GetDialect().UpsertClause(
		[]string{"name_key"},
		[]string{"full_name", "group_number", "is_active", "updated_at"},
	)
	now := time.Now()
	if _, err := r.db.ExecContext(ctx, query, fullName, nameKey, group, true, now, now); err != nil {
		return fmt.Errorf("failed to upsert custom member: %w", err)
	}
	return nil
}

// DeactivateCustomMember hides a custom member from the roster without deleting it
func (r *RosterRepository) DeactivateCustomMember(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE report_admin_custom_members SET is_active = ?, updated_at = ? WHERE id = ?",
		false, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate custom member: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCustomMembers returns every custom member, active or not
func (r *RosterRepository) ListCustomMembers(ctx context.Context) ([]models.CustomMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, full_name, name_key, group_number, is_active, created_at, updated_at
		FROM report_admin_custom_members
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom members: %w", err)
	}
	defer rows.Close()

	var members []models.CustomMember
	for rows.Next() {
		var m models.CustomMember
		if err := rows.Scan(&m.ID, &m.FullName, &m.NameKey, &m.GroupNumber, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan custom member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
