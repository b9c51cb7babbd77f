package db

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"okrtrack/internal/domain/auth"
	"okrtrack/internal/platform/config"
)

// Seed ensures the bootstrap admin account and, when a fixture file is
// configured, loads demo data. All steps are idempotent.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureAdminUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return err
	}
	if cfg.SeedFixturesPath != "" {
		if err := loadFixtures(ctx, pool, cfg.SeedFixturesPath); err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	username := strings.SplitN(email, "@", 2)[0]
	_, err = pool.Exec(ctx, `
    INSERT INTO users (username, email, full_name, role, password_hash, status)
    VALUES ($1, $2, $3, $4, $5, 'active')
    ON CONFLICT (username) DO NOTHING
  `, username, email, "Administrator", auth.RoleAdmin, hash)
	return err
}

// fixtures is the YAML shape for demo data. References between records
// go through the name fields, not database ids, so the file stays
// hand-editable.
type fixtures struct {
	Teams []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		ParentTeam  string `yaml:"parentTeam"`
	} `yaml:"teams"`
	Users []struct {
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
		FullName string `yaml:"fullName"`
		Role     string `yaml:"role"`
		Password string `yaml:"password"`
		Team     string `yaml:"team"`
	} `yaml:"users"`
	Cycles []struct {
		Name      string `yaml:"name"`
		Type      string `yaml:"type"`
		StartDate string `yaml:"startDate"`
		EndDate   string `yaml:"endDate"`
		IsDefault bool   `yaml:"isDefault"`
	} `yaml:"cycles"`
	Objectives []struct {
		Title       string  `yaml:"title"`
		Description string  `yaml:"description"`
		Team        string  `yaml:"team"`
		Owner       string  `yaml:"owner"`
		Cycle       string  `yaml:"cycle"`
		IsCompany   bool    `yaml:"isCompany"`
		Priority    string  `yaml:"priority"`
		Progress    float64 `yaml:"progress"`
		StartDate   string  `yaml:"startDate"`
		EndDate     string  `yaml:"endDate"`
	} `yaml:"objectives"`
}

func loadFixtures(ctx context.Context, pool *pgxpool.Pool, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fx fixtures
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return fmt.Errorf("parse fixtures: %w", err)
	}

	teamIDs := map[string]string{}
	for _, t := range fx.Teams {
		var id string
		err := pool.QueryRow(ctx, `
      INSERT INTO teams (name, description)
      VALUES ($1, $2)
      ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
      RETURNING id
    `, t.Name, t.Description).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed team %q: %w", t.Name, err)
		}
		teamIDs[t.Name] = id
	}
	// Parent links in a second pass so order in the file does not matter.
	for _, t := range fx.Teams {
		if t.ParentTeam == "" {
			continue
		}
		parentID, ok := teamIDs[t.ParentTeam]
		if !ok {
			return fmt.Errorf("seed team %q: unknown parent %q", t.Name, t.ParentTeam)
		}
		if _, err := pool.Exec(ctx,
			`UPDATE teams SET parent_team_id = $1 WHERE id = $2`,
			parentID, teamIDs[t.Name]); err != nil {
			return err
		}
	}

	userIDs := map[string]string{}
	for _, u := range fx.Users {
		role := u.Role
		if !auth.ValidRole(role) {
			role = auth.RoleUser
		}
		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return err
		}
		var teamID *string
		if u.Team != "" {
			id, ok := teamIDs[u.Team]
			if !ok {
				return fmt.Errorf("seed user %q: unknown team %q", u.Username, u.Team)
			}
			teamID = &id
		}
		var id string
		err = pool.QueryRow(ctx, `
      INSERT INTO users (username, email, full_name, role, password_hash, team_id, status)
      VALUES ($1, $2, $3, $4, $5, $6, 'active')
      ON CONFLICT (username) DO UPDATE SET full_name = EXCLUDED.full_name
      RETURNING id
    `, u.Username, u.Email, u.FullName, role, hash, teamID).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed user %q: %w", u.Username, err)
		}
		userIDs[u.Username] = id
	}
	if len(fx.Users) > 0 {
		// Fixture inserts bypass the service layer, so recount directly.
		if _, err := pool.Exec(ctx, `
      UPDATE teams SET member_count = counted.n
      FROM (SELECT team_id, COUNT(*) AS n FROM users WHERE team_id IS NOT NULL GROUP BY team_id) AS counted
      WHERE teams.id = counted.team_id
    `); err != nil {
			return err
		}
	}

	cycleIDs := map[string]string{}
	for _, c := range fx.Cycles {
		var id string
		err := pool.QueryRow(ctx, `
      INSERT INTO cycles (name, type, start_date, end_date, is_default, status)
      VALUES ($1, $2, $3::date, $4::date, FALSE,
              CASE WHEN $4::date < CURRENT_DATE THEN 'completed'
                   WHEN $3::date > CURRENT_DATE THEN 'upcoming'
                   ELSE 'active' END)
      ON CONFLICT (name) DO UPDATE SET start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date
      RETURNING id
    `, c.Name, c.Type, c.StartDate, c.EndDate).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed cycle %q: %w", c.Name, err)
		}
		cycleIDs[c.Name] = id
		if c.IsDefault {
			if _, err := pool.Exec(ctx, `UPDATE cycles SET is_default = FALSE WHERE is_default`); err != nil {
				return err
			}
			if _, err := pool.Exec(ctx, `UPDATE cycles SET is_default = TRUE WHERE id = $1`, id); err != nil {
				return err
			}
		}
	}

	for _, o := range fx.Objectives {
		var exists bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM objectives WHERE title = $1)`, o.Title).Scan(&exists); err != nil {
			return err
		}
		if exists {
			continue
		}
		var teamID, ownerID, cycleID *string
		if o.Team != "" {
			if id, ok := teamIDs[o.Team]; ok {
				teamID = &id
			}
		}
		if o.Owner != "" {
			if id, ok := userIDs[o.Owner]; ok {
				ownerID = &id
			}
		}
		if o.Cycle != "" {
			if id, ok := cycleIDs[o.Cycle]; ok {
				cycleID = &id
			}
		}
		priority := o.Priority
		if priority == "" {
			priority = "medium"
		}
		if _, err := pool.Exec(ctx, `
      INSERT INTO objectives (title, description, team_id, owner_id, cycle_id, is_company_objective,
                              priority, progress, status, confidence_score, start_date, end_date)
      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'active', 5, $9::date, $10::date)
    `, o.Title, o.Description, teamID, ownerID, cycleID, o.IsCompany, priority, o.Progress, o.StartDate, o.EndDate); err != nil {
			return fmt.Errorf("seed objective %q: %w", o.Title, err)
		}
	}

	return nil
}
