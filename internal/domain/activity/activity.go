// Package activity keeps an append-only log of mutating actions. Events
// are never updated or deleted through the API.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"okrtrack/internal/domain/notifications"
)

type Event struct {
	ID        string                  `json:"id"`
	ActorID   string                  `json:"actorId"`
	Action    string                  `json:"action"`
	Entity    notifications.EntityRef `json:"entity"`
	RequestID string                  `json:"requestId"`
	IP        string                  `json:"ip"`
	CreatedAt time.Time               `json:"createdAt"`
	Before    json.RawMessage         `json:"before,omitempty"`
	After     json.RawMessage         `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityKind string
	ActorID    string
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record inserts one event. Before and after are marshalled as given;
// pass nil to omit either side.
func (s *Service) Record(ctx context.Context, actorID, action string, entity notifications.EntityRef, requestID, ip string, before, after any) error {
	var beforeJSON, afterJSON []byte
	if before != nil {
		payload, err := json.Marshal(before)
		if err != nil {
			return err
		}
		beforeJSON = payload
	}
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return err
		}
		afterJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO activity_events (actor_user_id, action, entity_kind, entity_id, before_json, after_json, request_id, ip)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, actorID, action, string(entity.Kind), entity.ID, beforeJSON, afterJSON, requestID, ip)
	return err
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, filter Filter, includeDetails bool, limit, offset int) ([]Event, error) {
	selectCols := "id, actor_user_id, action, entity_kind, entity_id, request_id, ip, created_at"
	if includeDetails {
		selectCols += ", before_json, after_json"
	}
	query, args := buildBaseQuery("SELECT "+selectCols, filter)
	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", limitPos, offsetPos)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		var kind, entityID string
		if includeDetails {
			err = rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &kind, &entityID, &evt.RequestID, &evt.IP, &evt.CreatedAt, &evt.Before, &evt.After)
		} else {
			err = rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &kind, &entityID, &evt.RequestID, &evt.IP, &evt.CreatedAt)
		}
		if err != nil {
			return nil, err
		}
		evt.Entity = notifications.EntityRef{Kind: notifications.EntityKind(kind), ID: entityID}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM activity_events WHERE 1=1"
	var args []any
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.EntityKind != "" {
		query += fmt.Sprintf(" AND entity_kind = $%d", len(args)+1)
		args = append(args, filter.EntityKind)
	}
	if filter.ActorID != "" {
		query += fmt.Sprintf(" AND actor_user_id::text = $%d", len(args)+1)
		args = append(args, filter.ActorID)
	}
	return query, args
}
