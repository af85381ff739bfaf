package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reporthub/internal/database"
	"reporthub/internal/models"
)

// PushRepository handles database operations for Web Push subscriptions
type PushRepository struct {
	db database.DBTX
}

// NewPushRepository creates a new push subscription repository
func NewPushRepository(db database.DBTX) *PushRepository {
	return &PushRepository{db: db}
}

const pushColumns = `id, endpoint, p256dh_key, auth_key, subscriber_name, user_email,
	is_active, last_report_month, last_report_year, created_at, updated_at`

func scanSubscription(row interface{ Scan(...interface{}) error }) (*models.PushSubscription, error) {
	sub := &models.PushSubscription{}
	var email, month sql.NullString
	var year sql.NullInt64
	err := row.Scan(
		&sub.ID,
		&sub.Endpoint,
		&sub.P256dhKey,
		&sub.AuthKey,
		&sub.SubscriberName,
		&email,
		&sub.IsActive,
		&month,
		&year,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sub.UserEmail = email.String
	sub.LastReportMonth = month.String
	sub.LastReportYear = int(year.Int64)
	return sub, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Upsert stores sub keyed by its endpoint and marks it active. The reported
// period of an existing row is kept.
func (r *PushRepository) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (endpoint, p256dh_key, auth_key, subscriber_name, user_email,
			is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	` + r.db.GetDialect().UpsertClause(
		[]string{"endpoint"},
		[]string{"p256dh_key", "auth_key", "subscriber_name", "user_email", "is_active", "updated_at"},
	)
	now := time.Now()
	if _, err := r.db.ExecContext(ctx, query,
		sub.Endpoint, sub.P256dhKey, sub.AuthKey, sub.SubscriberName, nullString(normalizeEmail(sub.UserEmail)),
		true, now, now,
	); err != nil {
		return fmt.Errorf("failed to upsert push subscription: %w", err)
	}
	sub.IsActive = true
	sub.UpdatedAt = now
	return nil
}

// MarkReported upserts sub by endpoint with the period it reported for
func (r *PushRepository) MarkReported(ctx context.Context, sub *models.PushSubscription, p models.Period) error {
	query := `
		INSERT INTO push_subscriptions (endpoint, p256dh_key, auth_key, subscriber_name, user_email,
			is_active, last_report_month, last_report_year, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	` + r.db.GetDialect().UpsertClause(
		[]string{"endpoint"},
		[]string{"subscriber_name", "last_report_month", "last_report_year", "updated_at"},
	)
	now := time.Now()
	if _, err := r.db.ExecContext(ctx, query,
		sub.Endpoint, sub.P256dhKey, sub.AuthKey, sub.SubscriberName, nullString(normalizeEmail(sub.UserEmail)),
		sub.IsActive, p.Month, p.Year, now, now,
	); err != nil {
		return fmt.Errorf("failed to mark subscription as reported: %w", err)
	}
	sub.LastReportMonth = p.Month
	sub.LastReportYear = p.Year
	sub.UpdatedAt = now
	return nil
}

// GetByEndpoint retrieves a subscription by endpoint
func (r *PushRepository) GetByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error) {
	query := `SELECT ` + pushColumns + ` FROM push_subscriptions WHERE endpoint = ?`
	sub, err := scanSubscription(r.db.QueryRowContext(ctx, query, endpoint))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get push subscription: %w", err)
	}
	return sub, nil
}

// ListActiveByEmail returns the active subscriptions of one user
func (r *PushRepository) ListActiveByEmail(ctx context.Context, email string) ([]models.PushSubscription, error) {
	query := `SELECT ` + pushColumns + ` FROM push_subscriptions WHERE user_email = ? AND is_active = ? ORDER BY id`
	return r.list(ctx, query, normalizeEmail(email), true)
}

// ListActive returns every active subscription
func (r *PushRepository) ListActive(ctx context.Context) ([]models.PushSubscription, error) {
	query := `SELECT ` + pushColumns + ` FROM push_subscriptions WHERE is_active = ? ORDER BY id`
	return r.list(ctx, query, true)
}

// ListAll returns every subscription, active or not
func (r *PushRepository) ListAll(ctx context.Context) ([]models.PushSubscription, error) {
	return r.list(ctx, `SELECT `+pushColumns+` FROM push_subscriptions ORDER BY id`)
}

func (r *PushRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.PushSubscription, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan push subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// Deactivate stops deliveries to endpoint
func (r *PushRepository) Deactivate(ctx context.Context, endpoint string) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE push_subscriptions SET is_active = ?, updated_at = ? WHERE endpoint = ?",
		false, time.Now(), endpoint,
	); err != nil {
		return fmt.Errorf("failed to deactivate push subscription: %w", err)
	}
	return nil
}

// DeleteByEndpoint removes a subscription the push service reported as gone
func (r *PushRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM push_subscriptions WHERE endpoint = ?", endpoint); err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}
