package identity

import (
	"context"
)

const teamColumns = "id, name, description, leader_id, parent_team_id, member_count, created_at, updated_at"

func (s *Store) ListTeams(ctx context.Context) ([]Team, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+teamColumns+" FROM teams ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.LeaderID, &t.ParentTeamID, &t.MemberCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *Store) GetTeam(ctx context.Context, teamID string) (Team, error) {
	var t Team
	err := s.DB.QueryRow(ctx, "SELECT "+teamColumns+" FROM teams WHERE id = $1", teamID).
		Scan(&t.ID, &t.Name, &t.Description, &t.LeaderID, &t.ParentTeamID, &t.MemberCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return Team{}, translateError(err)
	}
	return t, nil
}

func (s *Store) CreateTeam(ctx context.Context, details TeamDetails) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO teams (name, description, leader_id, parent_team_id)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, details.Name, details.Description, details.LeaderID, details.ParentTeamID).Scan(&id)
	if err != nil {
		return "", translateError(err)
	}
	return id, nil
}

func (s *Store) UpdateTeam(ctx context.Context, teamID string, details TeamDetails) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE teams
    SET name = $1, description = $2, leader_id = $3, parent_team_id = $4, updated_at = now()
    WHERE id = $5
  `, details.Name, details.Description, details.LeaderID, details.ParentTeamID, teamID)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TeamParents loads the whole child-to-parent map in one query for the cycle
// check walk. Team counts are small enough that this stays cheap.
func (s *Store) TeamParents(ctx context.Context) (map[string]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, parent_team_id FROM teams WHERE parent_team_id IS NOT NULL")
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

func (s *Store) TeamMembers(ctx context.Context, teamID string) ([]User, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+userColumns+" FROM users WHERE team_id = $1 ORDER BY full_name", teamID)
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

// ReconcileMemberCounts rewrites member_count from the actual user rows. Run
// periodically by the jobs service as a safety net for the incremental
// bookkeeping.
func (s *Store) ReconcileMemberCounts(ctx context.Context) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE teams t
    SET member_count = counted.n, updated_at = now()
    FROM (
      SELECT t2.id, COUNT(u.id) AS n
      FROM teams t2
      LEFT JOIN users u ON u.team_id = t2.id
      GROUP BY t2.id
    ) counted
    WHERE counted.id = t.id AND t.member_count <> counted.n
  `)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
