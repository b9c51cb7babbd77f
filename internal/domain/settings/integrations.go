package settings

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"okrtrack/internal/platform/crypto"
)

const (
	IntegrationSlack    = "slack"
	IntegrationWebhook  = "webhook"
	IntegrationCalendar = "calendar"
)

var ErrInvalidIntegrationKind = errors.New("invalid integration kind")

func ValidIntegrationKind(kind string) bool {
	switch kind {
	case IntegrationSlack, IntegrationWebhook, IntegrationCalendar:
		return true
	}
	return false
}

// maskKey keeps the last four characters visible, matching how the
// client renders stored credentials.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func (s *Store) ListIntegrations(ctx context.Context, enc *crypto.Service) ([]Integration, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, name, kind, webhook_url, api_key_enc, enabled, created_at, updated_at
		FROM integrations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Integration, 0)
	for rows.Next() {
		in, err := scanIntegration(rows, enc)
		if err != nil {
			return nil, err
		}
		items = append(items, in)
	}
	return items, rows.Err()
}

func (s *Store) GetIntegration(ctx context.Context, enc *crypto.Service, id string) (Integration, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT id, name, kind, webhook_url, api_key_enc, enabled, created_at, updated_at
		FROM integrations WHERE id = $1`, id)
	in, err := scanIntegration(row, enc)
	if err == pgx.ErrNoRows {
		return Integration{}, ErrNotFound
	}
	return in, err
}

// APIKey decrypts the stored credential for outbound calls. Never
// returned through the HTTP layer.
func (s *Store) APIKey(ctx context.Context, enc *crypto.Service, id string) (string, error) {
	var cipher []byte
	err := s.DB.QueryRow(ctx,
		`SELECT api_key_enc FROM integrations WHERE id = $1`, id).Scan(&cipher)
	if err == pgx.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if len(cipher) == 0 {
		return "", nil
	}
	return enc.DecryptString(cipher)
}

func (s *Store) CreateIntegration(ctx context.Context, enc *crypto.Service, in IntegrationInput) (Integration, error) {
	if !ValidIntegrationKind(in.Kind) {
		return Integration{}, ErrInvalidIntegrationKind
	}
	var cipher []byte
	if in.APIKey != "" {
		var err error
		cipher, err = enc.EncryptString(in.APIKey)
		if err != nil {
			return Integration{}, err
		}
	}
	row := s.DB.QueryRow(ctx, `
		INSERT INTO integrations (name, kind, webhook_url, api_key_enc, enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, kind, webhook_url, api_key_enc, enabled, created_at, updated_at`,
		in.Name, in.Kind, in.WebhookURL, cipher, in.Enabled)
	return scanIntegration(row, enc)
}

func (s *Store) UpdateIntegration(ctx context.Context, enc *crypto.Service, id string, in IntegrationInput) (Integration, error) {
	if !ValidIntegrationKind(in.Kind) {
		return Integration{}, ErrInvalidIntegrationKind
	}
	query := `
		UPDATE integrations
		SET name = $2, kind = $3, webhook_url = $4, enabled = $5, updated_at = NOW()`
	args := []any{id, in.Name, in.Kind, in.WebhookURL, in.Enabled}
	if in.APIKey != "" {
		cipher, err := enc.EncryptString(in.APIKey)
		if err != nil {
			return Integration{}, err
		}
		args = append(args, cipher)
		query += `, api_key_enc = $6`
	}
	query += `
		WHERE id = $1
		RETURNING id, name, kind, webhook_url, api_key_enc, enabled, created_at, updated_at`

	row := s.DB.QueryRow(ctx, query, args...)
	out, err := scanIntegration(row, enc)
	if err == pgx.ErrNoRows {
		return Integration{}, ErrNotFound
	}
	return out, err
}

func (s *Store) DeleteIntegration(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM integrations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanIntegration(row pgx.Row, enc *crypto.Service) (Integration, error) {
	var in Integration
	var cipher []byte
	err := row.Scan(&in.ID, &in.Name, &in.Kind, &in.WebhookURL, &cipher, &in.Enabled, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return Integration{}, err
	}
	if len(cipher) > 0 && enc != nil {
		key, err := enc.DecryptString(cipher)
		if err != nil {
			return Integration{}, err
		}
		in.APIKeyMasked = maskKey(key)
	}
	return in, nil
}
