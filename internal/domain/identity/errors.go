package identity

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("not found")

// DuplicateError reports a uniqueness violation on a named field so handlers
// can point the client at the offending input.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

// translateError maps pgx errors onto domain errors. Unique-index names
// follow the <table>_<column>_key convention from the migrations.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return &DuplicateError{Field: "username"}
		case "users_email_key":
			return &DuplicateError{Field: "email"}
		case "teams_name_key":
			return &DuplicateError{Field: "name"}
		}
		return &DuplicateError{Field: pgErr.ConstraintName}
	}
	return err
}
