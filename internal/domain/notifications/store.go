package notifications

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("notification not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const notificationColumns = `id, user_id, type, title, message, entity_kind, entity_id, is_read, created_at`

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	var entityKind, entityID *string
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &entityKind, &entityID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return Notification{}, err
	}
	if entityKind != nil && entityID != nil {
		n.Entity = &EntityRef{Kind: EntityKind(*entityKind), ID: *entityID}
	}
	return n, nil
}

func (s *Store) List(ctx context.Context, f Filter) ([]Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	args := []any{f.UserID}
	if f.UnreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (s *Store) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`,
		userID).Scan(&count)
	return count, err
}

func (s *Store) Create(ctx context.Context, n Notification) (Notification, error) {
	var entityKind, entityID *string
	if n.Entity != nil {
		k := string(n.Entity.Kind)
		entityKind, entityID = &k, &n.Entity.ID
	}
	row := s.DB.QueryRow(ctx, `
		INSERT INTO notifications (user_id, type, title, message, entity_kind, entity_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+notificationColumns,
		n.UserID, n.Type, n.Title, n.Message, entityKind, entityID)
	return scanNotification(row)
}

func (s *Store) MarkRead(ctx context.Context, userID, id string) error {
	tag, err := s.DB.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	tag, err := s.DB.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`,
		userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	tag, err := s.DB.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
