package reports

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"okrtrack/internal/domain/okr"
	"okrtrack/internal/progress"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// periodWindow resolves a named period to a date window. Cycle-relative
// periods look the cycle up; ErrNoCycle when none exists.
func (s *Store) periodWindow(ctx context.Context, period string, now time.Time) (time.Time, time.Time, error) {
	switch period {
	case PeriodAllTime:
		return time.Time{}, time.Time{}, nil
	case PeriodYearToDate:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, now, nil
	case PeriodCurrentCycle:
		return s.cycleWindow(ctx, `
			SELECT start_date, end_date FROM cycles
			WHERE status = 'active'
			ORDER BY is_default DESC, start_date DESC
			LIMIT 1`)
	case PeriodLastCycle:
		return s.cycleWindow(ctx, `
			SELECT start_date, end_date FROM cycles
			WHERE status = 'completed'
			ORDER BY end_date DESC
			LIMIT 1`)
	}
	return time.Time{}, time.Time{}, ErrInvalidPeriod
}

func (s *Store) cycleWindow(ctx context.Context, query string) (time.Time, time.Time, error) {
	var start, end time.Time
	err := s.DB.QueryRow(ctx, query).Scan(&start, &end)
	if err == pgx.ErrNoRows {
		return time.Time{}, time.Time{}, ErrNoCycle
	}
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// Rows fetches the objectives in scope with their joined display fields
// and per-objective counts. An empty window means no date filter.
func (s *Store) Rows(ctx context.Context, req Request, now time.Time) ([]Row, error) {
	start, end, err := s.periodWindow(ctx, req.TimePeriod, now)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT o.id, o.title, o.progress,
		       COALESCE(t.name, ''), COALESCE(u.full_name, ''),
		       (SELECT COUNT(*) FROM key_results kr WHERE kr.objective_id = o.id),
		       (SELECT COUNT(*) FROM check_ins ci WHERE ci.objective_id = o.id
		          OR ci.key_result_id IN (SELECT id FROM key_results WHERE objective_id = o.id))
		FROM objectives o
		LEFT JOIN teams t ON o.team_id = t.id
		LEFT JOIN users u ON o.owner_id = u.id
		WHERE o.status <> 'cancelled'`
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if !start.IsZero() {
		query += ` AND o.start_date <= ` + next(end) + ` AND o.end_date >= ` + next(start)
	}
	if req.TeamID != "" {
		query += ` AND o.team_id = ` + next(req.TeamID)
	}
	query += ` ORDER BY o.progress DESC, o.title`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Row, 0)
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ObjectiveID, &r.Title, &r.Progress, &r.TeamName, &r.OwnerName, &r.KeyResultCount, &r.CheckInCount); err != nil {
			return nil, err
		}
		r.Health = progress.Classify(r.Progress)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) TeamName(ctx context.Context, teamID string) (string, error) {
	var name string
	err := s.DB.QueryRow(ctx, `SELECT name FROM teams WHERE id = $1`, teamID).Scan(&name)
	if err == pgx.ErrNoRows {
		return "", okr.ErrNotFound
	}
	return name, err
}
