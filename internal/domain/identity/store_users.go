package identity

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const userColumns = "id, username, email, full_name, job_title, role, team_id, status, last_login, created_at, updated_at"

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.JobTitle, &u.Role, &u.TeamID, &u.Status, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *Store) ListUsers(ctx context.Context, filter UserFilter) ([]User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE 1=1"
	args := []any{}
	if filter.TeamID != "" {
		args = append(args, filter.TeamID)
		query += " AND team_id = $" + itoa(len(args))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		query += " AND role = $" + itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += " AND status = $" + itoa(len(args))
	}
	query += " ORDER BY full_name, username"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + itoa(len(args))
		args = append(args, filter.Offset)
		query += " OFFSET $" + itoa(len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) GetUser(ctx context.Context, userID string) (User, error) {
	u, err := scanUser(s.DB.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", userID))
	if err != nil {
		return User{}, translateError(err)
	}
	return u, nil
}

// CreateUser inserts the user and bumps the destination team's member_count
// in the same transaction so the denormalized counter stays consistent.
func (s *Store) CreateUser(ctx context.Context, details UserDetails, passwordHash string) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `
    INSERT INTO users (username, email, password_hash, full_name, job_title, role, team_id, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, details.Username, details.Email, passwordHash, details.FullName, details.JobTitle, details.Role, details.TeamID, details.Status).Scan(&id)
	if err != nil {
		return "", translateError(err)
	}

	if details.TeamID != nil {
		if _, err := tx.Exec(ctx, "UPDATE teams SET member_count = member_count + 1, updated_at = now() WHERE id = $1", *details.TeamID); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateUser rewrites the mutable profile fields. A team change adjusts both
// teams' member_count transactionally.
func (s *Store) UpdateUser(ctx context.Context, userID string, details UserDetails) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var previousTeam *string
	if err := tx.QueryRow(ctx, "SELECT team_id FROM users WHERE id = $1 FOR UPDATE", userID).Scan(&previousTeam); err != nil {
		return translateError(err)
	}

	tag, err := tx.Exec(ctx, `
    UPDATE users
    SET username = $1, email = $2, full_name = $3, job_title = $4, role = $5, team_id = $6, status = $7, updated_at = now()
    WHERE id = $8
  `, details.Username, details.Email, details.FullName, details.JobTitle, details.Role, details.TeamID, details.Status, userID)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if !sameTeam(previousTeam, details.TeamID) {
		if previousTeam != nil {
			if _, err := tx.Exec(ctx, "UPDATE teams SET member_count = GREATEST(member_count - 1, 0), updated_at = now() WHERE id = $1", *previousTeam); err != nil {
				return err
			}
		}
		if details.TeamID != nil {
			if _, err := tx.Exec(ctx, "UPDATE teams SET member_count = member_count + 1, updated_at = now() WHERE id = $1", *details.TeamID); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func sameTeam(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
