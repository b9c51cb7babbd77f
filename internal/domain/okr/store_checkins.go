package okr

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
)

const checkInColumns = "id, objective_id, key_result_id, author_id, previous_value, new_value, progress_delta, note, confidence, created_at"

type CheckInFilter struct {
	ObjectiveID string
	KeyResultID string
	AuthorID    string
	Limit       int
	Offset      int
}

func (s *Store) ListCheckIns(ctx context.Context, filter CheckInFilter) ([]CheckIn, error) {
	query := "SELECT " + checkInColumns + " FROM check_ins WHERE 1=1"
	args := []any{}
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.ObjectiveID != "" {
		// Key-result check-ins carry only key_result_id, so an objective
		// filter also matches check-ins of its key results.
		arg := next(filter.ObjectiveID)
		query += " AND (objective_id = " + arg +
			" OR key_result_id IN (SELECT id FROM key_results WHERE objective_id = " + arg + "))"
	}
	if filter.KeyResultID != "" {
		query += " AND key_result_id = " + next(filter.KeyResultID)
	}
	if filter.AuthorID != "" {
		query += " AND author_id = " + next(filter.AuthorID)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + next(filter.Limit) + " OFFSET " + next(filter.Offset)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checkIns []CheckIn
	for rows.Next() {
		var c CheckIn
		if err := rows.Scan(&c.ID, &c.ObjectiveID, &c.KeyResultID, &c.AuthorID, &c.PreviousValue, &c.NewValue,
			&c.ProgressDelta, &c.Note, &c.Confidence, &c.CreatedAt); err != nil {
			return nil, err
		}
		checkIns = append(checkIns, c)
	}
	return checkIns, rows.Err()
}

// CreateObjectiveCheckIn records a progress update directly against an
// objective that has no key results driving it. The objective's progress
// moves to newProgress and the check-in row captures the delta, atomically.
func (s *Store) CreateObjectiveCheckIn(ctx context.Context, objectiveID string, newProgress float64, note string, confidence int, authorID string) (CheckIn, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return CheckIn{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var oldProgress float64
	err = tx.QueryRow(ctx, "SELECT progress FROM objectives WHERE id = $1 FOR UPDATE", objectiveID).Scan(&oldProgress)
	if errors.Is(err, pgx.ErrNoRows) {
		return CheckIn{}, ErrNotFound
	}
	if err != nil {
		return CheckIn{}, err
	}

	if _, err := tx.Exec(ctx, "UPDATE objectives SET progress = $1, version = version + 1, updated_at = now() WHERE id = $2", newProgress, objectiveID); err != nil {
		return CheckIn{}, err
	}

	var checkIn CheckIn
	err = tx.QueryRow(ctx, `
    INSERT INTO check_ins (objective_id, author_id, previous_value, new_value, progress_delta, note, confidence)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING `+checkInColumns+`
  `, objectiveID, authorID, oldProgress, newProgress, newProgress-oldProgress, note, confidence).
		Scan(&checkIn.ID, &checkIn.ObjectiveID, &checkIn.KeyResultID, &checkIn.AuthorID, &checkIn.PreviousValue,
			&checkIn.NewValue, &checkIn.ProgressDelta, &checkIn.Note, &checkIn.Confidence, &checkIn.CreatedAt)
	if err != nil {
		return CheckIn{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return CheckIn{}, err
	}
	return checkIn, nil
}
