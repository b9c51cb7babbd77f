package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("setting not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListUserSettings(ctx context.Context, userID string) ([]UserSetting, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, user_id, key, value, updated_at
		FROM user_settings WHERE user_id = $1 ORDER BY key`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]UserSetting, 0)
	for rows.Next() {
		var us UserSetting
		if err := rows.Scan(&us.ID, &us.UserID, &us.Key, &us.Value, &us.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, us)
	}
	return items, rows.Err()
}

// UpsertUserSetting writes one (user, key) pair. The unique index on
// (user_id, key) makes repeated writes idempotent.
func (s *Store) UpsertUserSetting(ctx context.Context, userID, key, value string) (UserSetting, error) {
	var us UserSetting
	err := s.DB.QueryRow(ctx, `
		INSERT INTO user_settings (user_id, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING id, user_id, key, value, updated_at`,
		userID, key, value).Scan(&us.ID, &us.UserID, &us.Key, &us.Value, &us.UpdatedAt)
	return us, err
}

func (s *Store) DeleteUserSetting(ctx context.Context, userID, key string) error {
	tag, err := s.DB.Exec(ctx,
		`DELETE FROM user_settings WHERE user_id = $1 AND key = $2`, userID, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListSystemSettings(ctx context.Context) ([]SystemSetting, error) {
	rows, err := s.DB.Query(ctx,
		`SELECT key, value, updated_at FROM system_settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]SystemSetting, 0)
	for rows.Next() {
		var ss SystemSetting
		if err := rows.Scan(&ss.Key, &ss.Value, &ss.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, ss)
	}
	return items, rows.Err()
}

func (s *Store) GetSystemSetting(ctx context.Context, key string) (SystemSetting, error) {
	var ss SystemSetting
	err := s.DB.QueryRow(ctx,
		`SELECT key, value, updated_at FROM system_settings WHERE key = $1`,
		key).Scan(&ss.Key, &ss.Value, &ss.UpdatedAt)
	if err == pgx.ErrNoRows {
		return SystemSetting{}, ErrNotFound
	}
	return ss, err
}

func (s *Store) UpsertSystemSetting(ctx context.Context, key, value string) (SystemSetting, error) {
	var ss SystemSetting
	err := s.DB.QueryRow(ctx, `
		INSERT INTO system_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING key, value, updated_at`,
		key, value).Scan(&ss.Key, &ss.Value, &ss.UpdatedAt)
	return ss, err
}
