package okr

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"okrtrack/internal/progress"
)

const keyResultColumns = `id, objective_id, title, description, start_value, current_value, target_value,
  direction, progress, is_completed, owner_id, version, created_at, updated_at`

func scanKeyResult(row pgx.Row) (KeyResult, error) {
	var kr KeyResult
	err := row.Scan(&kr.ID, &kr.ObjectiveID, &kr.Title, &kr.Description, &kr.StartValue, &kr.CurrentValue,
		&kr.TargetValue, &kr.Direction, &kr.Progress, &kr.IsCompleted, &kr.OwnerID, &kr.Version,
		&kr.CreatedAt, &kr.UpdatedAt)
	if err != nil {
		return KeyResult{}, err
	}
	kr.Health = progress.Classify(kr.Progress)
	return kr, nil
}

func (s *Store) ListKeyResults(ctx context.Context, objectiveID string) ([]KeyResult, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+keyResultColumns+" FROM key_results WHERE objective_id = $1 ORDER BY created_at", objectiveID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []KeyResult
	for rows.Next() {
		kr, err := scanKeyResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, kr)
	}
	return results, rows.Err()
}

func (s *Store) GetKeyResult(ctx context.Context, keyResultID string) (KeyResult, error) {
	kr, err := scanKeyResult(s.DB.QueryRow(ctx, "SELECT "+keyResultColumns+" FROM key_results WHERE id = $1", keyResultID))
	if errors.Is(err, pgx.ErrNoRows) {
		return KeyResult{}, ErrNotFound
	}
	if err != nil {
		return KeyResult{}, err
	}
	return kr, nil
}

// CreateKeyResult inserts the key result with progress derived from its value
// triple and refreshes the parent objective's aggregate in one transaction.
func (s *Store) CreateKeyResult(ctx context.Context, objectiveID string, details KeyResultDetails, initialProgress float64) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `
    INSERT INTO key_results (objective_id, title, description, start_value, current_value, target_value,
      direction, progress, is_completed, owner_id)
    VALUES ($1,$2,$3,$4,$4,$5,$6,$7,$8,$9)
    RETURNING id
  `, objectiveID, details.Title, details.Description, details.StartValue, details.TargetValue,
		details.Direction, initialProgress, initialProgress >= 100, details.OwnerID).Scan(&id)
	if err != nil {
		return "", err
	}

	if err := recomputeObjectiveProgress(ctx, tx, objectiveID); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateKeyResultValue moves the current value, recomputes the key result's
// derived progress and the parent objective's aggregate, and appends the
// check-in row, all inside one transaction (version precondition included).
func (s *Store) UpdateKeyResultValue(ctx context.Context, keyResultID string, newValue float64, expectedVersion int, note string, confidence int, authorID string) (CheckIn, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return CheckIn{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var objectiveID string
	var startValue, targetValue, currentValue, oldProgress float64
	var direction progress.Direction
	var version int
	err = tx.QueryRow(ctx, `
    SELECT objective_id, start_value, target_value, current_value, direction, progress, version
    FROM key_results
    WHERE id = $1
    FOR UPDATE
  `, keyResultID).Scan(&objectiveID, &startValue, &targetValue, &currentValue, &direction, &oldProgress, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return CheckIn{}, ErrNotFound
	}
	if err != nil {
		return CheckIn{}, err
	}
	if expectedVersion > 0 && version != expectedVersion {
		return CheckIn{}, ErrVersionConflict
	}

	newProgress, err := progress.Derive(startValue, targetValue, newValue, direction)
	if err != nil {
		return CheckIn{}, err
	}

	if _, err := tx.Exec(ctx, `
    UPDATE key_results
    SET current_value = $1, progress = $2, is_completed = $3, version = version + 1, updated_at = now()
    WHERE id = $4
  `, newValue, newProgress, newProgress >= 100, keyResultID); err != nil {
		return CheckIn{}, err
	}

	// check_ins_target_check allows exactly one target: a key-result
	// check-in carries only key_result_id, the parent is reachable through
	// the key result.
	var checkIn CheckIn
	err = tx.QueryRow(ctx, `
    INSERT INTO check_ins (key_result_id, author_id, previous_value, new_value, progress_delta, note, confidence)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id, objective_id, key_result_id, author_id, previous_value, new_value, progress_delta, note, confidence, created_at
  `, keyResultID, authorID, currentValue, newValue, newProgress-oldProgress, note, confidence).
		Scan(&checkIn.ID, &checkIn.ObjectiveID, &checkIn.KeyResultID, &checkIn.AuthorID, &checkIn.PreviousValue,
			&checkIn.NewValue, &checkIn.ProgressDelta, &checkIn.Note, &checkIn.Confidence, &checkIn.CreatedAt)
	if err != nil {
		return CheckIn{}, err
	}

	if err := recomputeObjectiveProgress(ctx, tx, objectiveID); err != nil {
		return CheckIn{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return CheckIn{}, err
	}
	return checkIn, nil
}

// UpdateKeyResultDetails edits the descriptive fields and the value triple.
// Progress is re-derived from the new triple against the current value.
func (s *Store) UpdateKeyResultDetails(ctx context.Context, keyResultID string, details KeyResultDetails, expectedVersion int) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var objectiveID string
	var currentValue float64
	var version int
	err = tx.QueryRow(ctx, "SELECT objective_id, current_value, version FROM key_results WHERE id = $1 FOR UPDATE", keyResultID).
		Scan(&objectiveID, &currentValue, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if expectedVersion > 0 && version != expectedVersion {
		return ErrVersionConflict
	}

	newProgress, err := progress.Derive(details.StartValue, details.TargetValue, currentValue, details.Direction)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
    UPDATE key_results
    SET title = $1, description = $2, start_value = $3, target_value = $4, direction = $5,
        progress = $6, is_completed = $7, owner_id = $8, version = version + 1, updated_at = now()
    WHERE id = $9
  `, details.Title, details.Description, details.StartValue, details.TargetValue, details.Direction,
		newProgress, newProgress >= 100, details.OwnerID, keyResultID); err != nil {
		return err
	}

	if err := recomputeObjectiveProgress(ctx, tx, objectiveID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) DeleteKeyResult(ctx context.Context, keyResultID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var objectiveID string
	err = tx.QueryRow(ctx, "DELETE FROM key_results WHERE id = $1 RETURNING objective_id", keyResultID).Scan(&objectiveID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := recomputeObjectiveProgress(ctx, tx, objectiveID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// recomputeObjectiveProgress sets the objective's progress to the mean of
// its key results' progress. An objective without key results keeps its
// manually set progress.
func recomputeObjectiveProgress(ctx context.Context, tx pgx.Tx, objectiveID string) error {
	values := []float64{}
	rows, err := tx.Query(ctx, "SELECT progress FROM key_results WHERE objective_id = $1", objectiveID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return err
		}
		values = append(values, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	aggregate, ok := progress.Aggregate(values)
	if !ok {
		return nil
	}
	_, err = tx.Exec(ctx, "UPDATE objectives SET progress = $1, version = version + 1, updated_at = now() WHERE id = $2", aggregate, objectiveID)
	return err
}
