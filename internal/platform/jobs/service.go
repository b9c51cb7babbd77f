// Package jobs runs the background maintenance loops: cycle status
// rollover, denormalized member count reconciliation, and per-cycle
// summary refresh. Every run is recorded in job_runs.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"okrtrack/internal/domain/identity"
	"okrtrack/internal/domain/okr"
	"okrtrack/internal/platform/config"
)

const (
	JobCycleRollover   = "cycle_rollover"
	JobMemberReconcile = "member_count_reconcile"
	JobSummaryRefresh  = "cycle_summary_refresh"
)

type Service struct {
	DB       *pgxpool.Pool
	Cfg      config.Config
	OKR      *okr.Store
	Identity *identity.Store
	queue    chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, okrStore *okr.Store, identityStore *identity.Store) *Service {
	return &Service{
		DB:       db,
		Cfg:      cfg,
		OKR:      okrStore,
		Identity: identityStore,
		queue:    make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.CycleRollInterval > 0 {
		go s.schedule(ctx, s.Cfg.CycleRollInterval, func() {
			s.Enqueue(JobCycleRollover, s.runCycleRollover)
			s.Enqueue(JobMemberReconcile, s.runMemberReconcile)
		})
	}
	if s.Cfg.SummaryInterval > 0 {
		go s.schedule(ctx, s.Cfg.SummaryInterval, func() {
			s.Enqueue(JobSummaryRefresh, s.runSummaryRefresh)
		})
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

// RunNow executes a job inline, for the admin trigger endpoints.
func (s *Service) RunNow(ctx context.Context, jobType string) (any, error) {
	var run func(context.Context) (any, error)
	switch jobType {
	case JobCycleRollover:
		run = s.runCycleRollover
	case JobMemberReconcile:
		run = s.runMemberReconcile
	case JobSummaryRefresh:
		run = s.runSummaryRefresh
	default:
		return nil, ErrUnknownJob
	}
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) schedule(ctx context.Context, interval time.Duration, tick func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}

func (s *Service) runCycleRollover(ctx context.Context) (any, error) {
	updated, err := s.OKR.RollCycleStatuses(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"updated": updated}, nil
}

func (s *Service) runMemberReconcile(ctx context.Context) (any, error) {
	corrected, err := s.Identity.ReconcileMemberCounts(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"corrected": corrected}, nil
}

func (s *Service) runSummaryRefresh(ctx context.Context) (any, error) {
	if err := s.OKR.RefreshCycleSummaries(ctx); err != nil {
		return nil, err
	}
	return map[string]any{"refreshed": true}, nil
}

// ListRuns backs the admin job history endpoint.
func (s *Service) ListRuns(ctx context.Context, jobType string, limit, offset int) ([]Run, error) {
	query := `
    SELECT id, job_type, status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at
    FROM job_runs`
	args := []any{}
	if jobType != "" {
		query += ` WHERE job_type = $1`
		args = append(args, jobType)
	}
	query += ` ORDER BY started_at DESC`
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Run, 0)
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.JobType, &r.Status, &r.Details, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
