package okr

import "context"

// RefreshCycleSummaries rebuilds the per-user and per-team roll-up rows for
// every cycle from the objective table. Uniqueness on (user_id, cycle_id)
// and (team_id, cycle_id) makes the upsert idempotent.
func (s *Store) RefreshCycleSummaries(ctx context.Context) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    INSERT INTO cycle_user_summaries (cycle_id, user_id, objective_count, avg_progress, updated_at)
    SELECT cycle_id, owner_id, COUNT(1), AVG(progress), now()
    FROM objectives
    WHERE cycle_id IS NOT NULL AND owner_id IS NOT NULL
    GROUP BY cycle_id, owner_id
    ON CONFLICT (user_id, cycle_id)
    DO UPDATE SET objective_count = EXCLUDED.objective_count, avg_progress = EXCLUDED.avg_progress, updated_at = now()
  `); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO cycle_team_summaries (cycle_id, team_id, objective_count, avg_progress, updated_at)
    SELECT cycle_id, team_id, COUNT(1), AVG(progress), now()
    FROM objectives
    WHERE cycle_id IS NOT NULL AND team_id IS NOT NULL
    GROUP BY cycle_id, team_id
    ON CONFLICT (team_id, cycle_id)
    DO UPDATE SET objective_count = EXCLUDED.objective_count, avg_progress = EXCLUDED.avg_progress, updated_at = now()
  `); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) UserCycleSummaries(ctx context.Context, cycleID string) ([]CycleSummary, error) {
	return s.cycleSummaries(ctx, "SELECT cycle_id, user_id, objective_count, avg_progress FROM cycle_user_summaries WHERE cycle_id = $1", cycleID)
}

func (s *Store) TeamCycleSummaries(ctx context.Context, cycleID string) ([]CycleSummary, error) {
	return s.cycleSummaries(ctx, "SELECT cycle_id, team_id, objective_count, avg_progress FROM cycle_team_summaries WHERE cycle_id = $1", cycleID)
}

func (s *Store) cycleSummaries(ctx context.Context, query, cycleID string) ([]CycleSummary, error) {
	rows, err := s.DB.Query(ctx, query, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []CycleSummary
	for rows.Next() {
		var cs CycleSummary
		if err := rows.Scan(&cs.CycleID, &cs.SubjectID, &cs.ObjectiveCount, &cs.AvgProgress); err != nil {
			return nil, err
		}
		summaries = append(summaries, cs)
	}
	return summaries, rows.Err()
}
