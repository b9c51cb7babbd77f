package notifications

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// UserEmail returns the address for an active user, or "" for inactive
// or missing users so callers can skip delivery silently.
func (s *Store) UserEmail(ctx context.Context, userID string) (string, error) {
	var email string
	err := s.DB.QueryRow(ctx,
		`SELECT email FROM users WHERE id = $1 AND status = 'active'`,
		userID).Scan(&email)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	return email, err
}

// EmailSettings reads the org-wide delivery toggle and from address out
// of system settings. Missing rows mean email is off.
func (s *Store) EmailSettings(ctx context.Context) (bool, string, error) {
	rows, err := s.DB.Query(ctx,
		`SELECT key, value FROM system_settings WHERE key IN ('email_notifications_enabled', 'email_from')`)
	if err != nil {
		return false, "", err
	}
	defer rows.Close()

	enabled := false
	from := ""
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return false, "", err
		}
		switch key {
		case "email_notifications_enabled":
			enabled = value == "true"
		case "email_from":
			from = value
		}
	}
	return enabled, from, rows.Err()
}
