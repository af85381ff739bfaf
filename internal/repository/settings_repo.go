package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reporthub/internal/database"
)

// Setting names
const (
	SettingVAPIDPublicKey  = "vapid_public_key"
	SettingVAPIDPrivateKey = "vapid_private_key"
)

type SettingsRepository struct {
	db database.DBTX
}

func NewSettingsRepository(db database.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting retrieves a setting value by name. A missing setting yields "".
func (r *SettingsRepository) GetSetting(ctx context.Context, name string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", name, err)
	}
	return value, nil
}

// SetSetting updates or inserts a setting
func (r *SettingsRepository) SetSetting(ctx context.Context, name, value string) error {
	query := `INSERT INTO settings (name, value, updated_at) VALUES (?, ?, ?)` +
		r.db.GetDialect().UpsertClause([]string{"name"}, []string{"value", "updated_at"})
	if _, err := r.db.ExecContext(ctx, query, name, value, time.Now()); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", name, err)
	}
	return nil
}

// VAPIDKeys returns the stored key pair, or empty strings when none was generated yet
func (r *SettingsRepository) VAPIDKeys(ctx context.Context) (public, private string, err error) {
	if public, err = r.GetSetting(ctx, SettingVAPIDPublicKey); err != nil {
		return "", "", err
	}
	if private, err = r.GetSetting(ctx, SettingVAPIDPrivateKey); err != nil {
		return "", "", err
	}
	return public, private, nil
}

// SaveVAPIDKeys stores a generated key pair
func (r *SettingsRepository) SaveVAPIDKeys(ctx context.Context, public, private string) error {
	if err := r.SetSetting(ctx, SettingVAPIDPublicKey, public); err != nil {
		return err
	}
	return r.SetSetting(ctx, SettingVAPIDPrivateKey, private)
}
