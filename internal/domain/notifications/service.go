package notifications

import (
	"context"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store       *Store
	Mailer      Mailer
	DefaultFrom string
}

func New(store *Store, mailer Mailer) *Service {
	return &Service{store: store, Mailer: mailer, DefaultFrom: "no-reply@okrtrack.local"}
}

// Notify records an in-app notification and, when org settings allow,
// mirrors it to email. Email failures never fail the caller.
func (s *Service) Notify(ctx context.Context, n Notification) error {
	created, err := s.store.Create(ctx, n)
	if err != nil {
		return err
	}

	if s.Mailer == nil {
		return nil
	}
	enabled, from, err := s.store.EmailSettings(ctx)
	if err != nil {
		slog.Warn("notification email settings lookup failed", "err", err)
		return nil
	}
	if !enabled {
		return nil
	}
	if from == "" {
		from = s.DefaultFrom
	}

	email, err := s.store.UserEmail(ctx, created.UserID)
	if err != nil {
		slog.Warn("notification email lookup failed", "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, from, email, created.Title, created.Message); err != nil {
		slog.Warn("notification email send failed", "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]Notification, error) {
	return s.store.List(ctx, f)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.store.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.store.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.store.Delete(ctx, userID, id)
}
