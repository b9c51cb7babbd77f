package meetings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const meetingColumns = "id, user_id_1, user_id_2, objective_id, title, notes, start_time, end_time, created_at"

func scanMeeting(row pgx.Row) (Meeting, error) {
	var m Meeting
	err := row.Scan(&m.ID, &m.UserID1, &m.UserID2, &m.ObjectiveID, &m.Title, &m.Notes, &m.StartTime, &m.EndTime, &m.CreatedAt)
	return m, err
}

// ListMeetings returns meetings the given user participates in; an empty
// userID lists everything (admin view).
func (s *Store) ListMeetings(ctx context.Context, userID string) ([]Meeting, error) {
	query := "SELECT " + meetingColumns + " FROM meetings"
	args := []any{}
	if userID != "" {
		query += " WHERE user_id_1 = $1 OR user_id_2 = $1"
		args = append(args, userID)
	}
	query += " ORDER BY start_time DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (s *Store) GetMeeting(ctx context.Context, meetingID string) (Meeting, error) {
	m, err := scanMeeting(s.DB.QueryRow(ctx, "SELECT "+meetingColumns+" FROM meetings WHERE id = $1", meetingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Meeting{}, ErrNotFound
	}
	if err != nil {
		return Meeting{}, err
	}
	return m, nil
}

func (s *Store) CreateMeeting(ctx context.Context, details MeetingDetails) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO meetings (user_id_1, user_id_2, objective_id, title, notes, start_time, end_time)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, details.UserID1, details.UserID2, details.ObjectiveID, details.Title, details.Notes, details.StartTime, details.EndTime).Scan(&id)
	return id, err
}

func (s *Store) UpdateMeeting(ctx context.Context, meetingID string, details MeetingDetails) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE meetings
    SET user_id_1 = $1, user_id_2 = $2, objective_id = $3, title = $4, notes = $5, start_time = $6, end_time = $7
    WHERE id = $8
  `, details.UserID1, details.UserID2, details.ObjectiveID, details.Title, details.Notes, details.StartTime, details.EndTime, meetingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListAgendaItems(ctx context.Context, meetingID string) ([]AgendaItem, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, meeting_id, title, status, assignee_id, sort_order, created_at
    FROM meeting_agenda_items
    WHERE meeting_id = $1
    ORDER BY sort_order, created_at
  `, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []AgendaItem
	for rows.Next() {
		var item AgendaItem
		if err := rows.Scan(&item.ID, &item.MeetingID, &item.Title, &item.Status, &item.AssigneeID, &item.SortOrder, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) CreateAgendaItem(ctx context.Context, meetingID, title, status string, assigneeID *string, sortOrder int) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO meeting_agenda_items (meeting_id, title, status, assignee_id, sort_order)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, meetingID, title, status, assigneeID, sortOrder).Scan(&id)
	return id, err
}

func (s *Store) UpdateAgendaItem(ctx context.Context, itemID, title, status string, assigneeID *string, sortOrder int) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE meeting_agenda_items
    SET title = $1, status = $2, assignee_id = $3, sort_order = $4
    WHERE id = $5
  `, title, status, assigneeID, sortOrder, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
