package okr

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

const cycleColumns = "id, name, start_date, end_date, type, status, is_default, created_at"

func (s *Store) ListCycles(ctx context.Context) ([]Cycle, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+cycleColumns+" FROM cycles ORDER BY start_date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		var c Cycle
		if err := rows.Scan(&c.ID, &c.Name, &c.StartDate, &c.EndDate, &c.Type, &c.Status, &c.IsDefault, &c.CreatedAt); err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

func (s *Store) GetCycle(ctx context.Context, cycleID string) (Cycle, error) {
	var c Cycle
	err := s.DB.QueryRow(ctx, "SELECT "+cycleColumns+" FROM cycles WHERE id = $1", cycleID).
		Scan(&c.ID, &c.Name, &c.StartDate, &c.EndDate, &c.Type, &c.Status, &c.IsDefault, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cycle{}, ErrNotFound
	}
	if err != nil {
		return Cycle{}, err
	}
	return c, nil
}

func (s *Store) CreateCycle(ctx context.Context, name string, start, end time.Time, cycleType, status string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO cycles (name, start_date, end_date, type, status)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, name, start, end, cycleType, status).Scan(&id)
	return id, err
}

func (s *Store) UpdateCycle(ctx context.Context, cycleID, name string, start, end time.Time, cycleType, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE cycles
    SET name = $1, start_date = $2, end_date = $3, type = $4, status = $5
    WHERE id = $6
  `, name, start, end, cycleType, status, cycleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDefaultCycle clears the previous default before setting the new one in
// one transaction. A partial unique index on (is_default) WHERE is_default
// backs the at-most-one invariant.
func (s *Store) SetDefaultCycle(ctx context.Context, cycleID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "UPDATE cycles SET is_default = false WHERE is_default"); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, "UPDATE cycles SET is_default = true WHERE id = $1", cycleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// RollCycleStatuses advances cycle status by date: upcoming cycles whose
// window has opened become active, and cycles past their end date become
// completed. Driven by the jobs service.
func (s *Store) RollCycleStatuses(ctx context.Context) (int64, error) {
	var updated int64
	tag, err := s.DB.Exec(ctx, `
    UPDATE cycles SET status = $1
    WHERE status = $2 AND start_date <= CURRENT_DATE AND end_date >= CURRENT_DATE
  `, CycleStatusActive, CycleStatusUpcoming)
	if err != nil {
		return 0, err
	}
	updated += tag.RowsAffected()

	tag, err = s.DB.Exec(ctx, `
    UPDATE cycles SET status = $1
    WHERE status <> $1 AND end_date < CURRENT_DATE
  `, CycleStatusCompleted)
	if err != nil {
		return updated, err
	}
	updated += tag.RowsAffected()
	return updated, nil
}
