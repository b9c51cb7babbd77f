package meetings

import "context"

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListMeetings(ctx context.Context, userID string) ([]Meeting, error) {
	return s.store.ListMeetings(ctx, userID)
}

func (s *Service) GetMeeting(ctx context.Context, meetingID string) (Meeting, error) {
	return s.store.GetMeeting(ctx, meetingID)
}

func (s *Service) CreateMeeting(ctx context.Context, details MeetingDetails) (string, error) {
	if err := details.Validate(); err != nil {
		return "", err
	}
	return s.store.CreateMeeting(ctx, details)
}

func (s *Service) UpdateMeeting(ctx context.Context, meetingID string, details MeetingDetails) error {
	if err := details.Validate(); err != nil {
		return err
	}
	return s.store.UpdateMeeting(ctx, meetingID, details)
}

func (s *Service) ListAgendaItems(ctx context.Context, meetingID string) ([]AgendaItem, error) {
	return s.store.ListAgendaItems(ctx, meetingID)
}

func (s *Service) CreateAgendaItem(ctx context.Context, meetingID, title, status string, assigneeID *string, sortOrder int) (string, error) {
	if status == "" {
		status = AgendaStatusPending
	}
	return s.store.CreateAgendaItem(ctx, meetingID, title, status, assigneeID, sortOrder)
}

func (s *Service) UpdateAgendaItem(ctx context.Context, itemID, title, status string, assigneeID *string, sortOrder int) error {
	return s.store.UpdateAgendaItem(ctx, itemID, title, status, assigneeID, sortOrder)
}
