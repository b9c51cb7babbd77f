package finance

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Snapshot is a dated financial record optionally tied to an objective or
// team, consumed by the reporting views only.
type Snapshot struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Revenue     float64   `json:"revenue"`
	Cost        float64   `json:"cost"`
	Note        string    `json:"note"`
	ObjectiveID *string   `json:"objectiveId"`
	TeamID      *string   `json:"teamId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Filter struct {
	ObjectiveID string
	TeamID      string
	From        time.Time
	To          time.Time
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Snapshot, error) {
	query := "SELECT id, date, revenue, cost, note, objective_id, team_id, created_at FROM financial_data WHERE 1=1"
	args := []any{}
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.ObjectiveID != "" {
		query += " AND objective_id = " + next(filter.ObjectiveID)
	}
	if filter.TeamID != "" {
		query += " AND team_id = " + next(filter.TeamID)
	}
	if !filter.From.IsZero() {
		query += " AND date >= " + next(filter.From)
	}
	if !filter.To.IsZero() {
		query += " AND date <= " + next(filter.To)
	}
	query += " ORDER BY date DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var f Snapshot
		if err := rows.Scan(&f.ID, &f.Date, &f.Revenue, &f.Cost, &f.Note, &f.ObjectiveID, &f.TeamID, &f.CreatedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, f)
	}
	return snapshots, rows.Err()
}

func (s *Store) Create(ctx context.Context, date time.Time, revenue, cost float64, note string, objectiveID, teamID *string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO financial_data (date, revenue, cost, note, objective_id, team_id)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, date, revenue, cost, note, objectiveID, teamID).Scan(&id)
	return id, err
}
