package okr

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"okrtrack/internal/progress"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const objectiveColumns = `id, title, description, progress, team_id, owner_id, is_company_objective,
  start_date, end_date, cycle_id, status, priority, confidence_score, parent_objective_id, version,
  created_at, updated_at`

func scanObjective(row pgx.Row) (Objective, error) {
	var o Objective
	var stored string
	err := row.Scan(&o.ID, &o.Title, &o.Description, &o.Progress, &o.TeamID, &o.OwnerID, &o.IsCompanyObjective,
		&o.StartDate, &o.EndDate, &o.CycleID, &stored, &o.Priority, &o.ConfidenceScore, &o.ParentObjectiveID, &o.Version,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Objective{}, err
	}
	o.Status = EffectiveStatus(stored, o.Progress)
	o.Health = progress.Classify(o.Progress)
	return o, nil
}

func (s *Store) ListObjectives(ctx context.Context, filter ObjectiveFilter) ([]Objective, error) {
	query := "SELECT " + objectiveColumns + " FROM objectives WHERE 1=1"
	args := []any{}
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.TeamID != "" {
		query += " AND team_id = " + next(filter.TeamID)
	}
	if filter.OwnerID != "" {
		query += " AND owner_id = " + next(filter.OwnerID)
	}
	if filter.CycleID != "" {
		query += " AND cycle_id = " + next(filter.CycleID)
	}
	// The filter speaks the derived vocabulary: "completed" is never stored,
	// and a draft or active row at 100% reads back as completed.
	switch filter.Status {
	case "":
	case ObjectiveStatusCompleted:
		query += " AND progress >= 100 AND status <> " + next(ObjectiveStatusCancelled)
	case ObjectiveStatusCancelled:
		query += " AND status = " + next(filter.Status)
	default:
		query += " AND status = " + next(filter.Status) + " AND progress < 100"
	}
	if filter.CompanyOnly {
		query += " AND is_company_objective"
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

	var objectives []Objective
	for rows.Next() {
		o, err := scanObjective(rows)
		if err != nil {
			return nil, err
		}
		objectives = append(objectives, o)
	}
	return objectives, rows.Err()
}

func (s *Store) GetObjective(ctx context.Context, objectiveID string) (Objective, error) {
	o, err := scanObjective(s.DB.QueryRow(ctx, "SELECT "+objectiveColumns+" FROM objectives WHERE id = $1", objectiveID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Objective{}, ErrNotFound
	}
	if err != nil {
		return Objective{}, err
	}
	return o, nil
}

func (s *Store) CreateObjective(ctx context.Context, details ObjectiveDetails) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO objectives (title, description, progress, team_id, owner_id, is_company_objective,
      start_date, end_date, cycle_id, status, priority, confidence_score, parent_objective_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    RETURNING id
  `, details.Title, details.Description, details.Progress, details.TeamID, details.OwnerID, details.IsCompanyObjective,
		details.StartDate, details.EndDate, details.CycleID, details.Status, details.Priority, details.ConfidenceScore,
		details.ParentObjectiveID).Scan(&id)
	return id, err
}

// UpdateObjective persists the details only when expectedVersion still
// matches the stored row; a concurrent editor's write makes the precondition
// fail with ErrVersionConflict.
func (s *Store) UpdateObjective(ctx context.Context, objectiveID string, details ObjectiveDetails, expectedVersion int) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE objectives
    SET title = $1, description = $2, progress = $3, team_id = $4, owner_id = $5, is_company_objective = $6,
        start_date = $7, end_date = $8, cycle_id = $9, status = $10, priority = $11, confidence_score = $12,
        parent_objective_id = $13, version = version + 1, updated_at = now()
    WHERE id = $14 AND version = $15
  `, details.Title, details.Description, details.Progress, details.TeamID, details.OwnerID, details.IsCompanyObjective,
		details.StartDate, details.EndDate, details.CycleID, details.Status, details.Priority, details.ConfidenceScore,
		details.ParentObjectiveID, objectiveID, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.DB.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM objectives WHERE id = $1)", objectiveID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// DeleteObjective removes the objective; key results, check-ins and comments
// under it go with it via ON DELETE CASCADE. Child objectives survive with
// parent_objective_id set to NULL.
func (s *Store) DeleteObjective(ctx context.Context, objectiveID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM objectives WHERE id = $1", objectiveID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ObjectiveParents(ctx context.Context) (map[string]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, parent_objective_id FROM objectives WHERE parent_objective_id IS NOT NULL")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parents := map[string]string{}
	for rows.Next() {
		var id, parent string
		if err := rows.Scan(&id, &parent); err != nil {
			return nil, err
		}
		parents[id] = parent
	}
	return parents, rows.Err()
}
