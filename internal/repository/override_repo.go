package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reporthub/internal/database"
	"reporthub/internal/models"
)

// OverrideRepository stores name mappings and per-report flags
type OverrideRepository struct {
	db database.DBTX
}

func NewOverrideRepository(db database.DBTX) *OverrideRepository {
	return &OverrideRepository{db: db}
}

// UpsertMapping points alias at a canonical member name
func (r *OverrideRepository) UpsertMapping(ctx context.Context, alias, canonicalFullName string) error {
	query := `
		INSERT INTO report_admin_name_mappings (alias_normalized, canonical_full_name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	` + r.db.GetDialect().UpsertClause(
		[]string{"alias_normalized"},
		[]string{"canonical_full_name", "updated_at"},
	)
	now := time.Now()
	if _, err := r.db.ExecContext(ctx, query, alias, canonicalFullName, now, now); err != nil {
		return fmt.Errorf("failed to upsert name mapping: %w", err)
	}
	return nil
}

// DeleteMapping removes the mapping for alias
func (r *OverrideRepository) DeleteMapping(ctx context.Context, alias string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM report_admin_name_mappings WHERE alias_normalized = ?", alias)
	if err != nil {
		return fmt.Errorf("failed to delete name mapping: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMappings returns all name mappings
func (r *OverrideRepository) ListMappings(ctx context.Context) ([]models.NameMapping, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, alias_normalized, canonical_full_name, created_at, updated_at
		FROM report_admin_name_mappings
		ORDER BY alias_normalized
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query name mappings: %w", err)
	}
	defer rows.Close()

	var mappings []models.NameMapping
	for rows.Next() {
		var m models.NameMapping
		if err := rows.Scan(&m.ID, &m.AliasNormalized, &m.CanonicalFullName, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan name mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// UpsertFlag records or replaces the administrator decision for one report
func (r *OverrideRepository) UpsertFlag(ctx context.Context, flag *models.ReportFlag) error {
	query := `
		INSERT INTO report_admin_report_flags (report_id, is_duplicate, canonical_full_name, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	` + r.db.GetDialect().UpsertClause(
		[]string{"report_id"},
		[]string{"is_duplicate", "canonical_full_name", "note", "updated_at"},
	)
	now := time.Now()
	if _, err := r.db.ExecContext(ctx, query,
		flag.ReportID, flag.IsDuplicate, flag.CanonicalFullName, flag.Note, now, now,
	); err != nil {
		return fmt.Errorf("failed to upsert report flag: %w", err)
	}
	flag.UpdatedAt = now
	return nil
}

// DeleteFlag removes the flag of a report
func (r *OverrideRepository) DeleteFlag(ctx context.Context, reportID int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM report_admin_report_flags WHERE report_id = ?", reportID)
	if err != nil {
		return fmt.Errorf("failed to delete report flag: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFlags returns all report flags
func (r *OverrideRepository) ListFlags(ctx context.Context) ([]models.ReportFlag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, report_id, is_duplicate, canonical_full_name, note, created_at, updated_at
		FROM report_admin_report_flags
		ORDER BY report_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query report flags: %w", err)
	}
	defer rows.Close()

	var flags []models.ReportFlag
	for rows.Next() {
		var f models.ReportFlag
		var canonical sql.NullString
		if err := rows.Scan(&f.ID, &f.ReportID, &f.IsDuplicate, &canonical, &f.Note, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report flag: %w", err)
		}
		if canonical.Valid {
			name := canonical.String
			f.CanonicalFullName = &name
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}
