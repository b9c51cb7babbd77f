package identity

import (
	"context"

	"okrtrack/internal/hierarchy"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]User, error) {
	return s.store.ListUsers(ctx, filter)
}

func (s *Service) GetUser(ctx context.Context, userID string) (User, error) {
	return s.store.GetUser(ctx, userID)
}

func (s *Service) CreateUser(ctx context.Context, details UserDetails, passwordHash string) (string, error) {
	return s.store.CreateUser(ctx, details, passwordHash)
}

func (s *Service) UpdateUser(ctx context.Context, userID string, details UserDetails) error {
	return s.store.UpdateUser(ctx, userID, details)
}

func (s *Service) ListTeams(ctx context.Context) ([]Team, error) {
	return s.store.ListTeams(ctx)
}

func (s *Service) GetTeam(ctx context.Context, teamID string) (Team, error) {
	return s.store.GetTeam(ctx, teamID)
}

func (s *Service) TeamMembers(ctx context.Context, teamID string) ([]User, error) {
	return s.store.TeamMembers(ctx, teamID)
}

func (s *Service) CreateTeam(ctx context.Context, details TeamDetails) (string, error) {
	// A new team has no children yet, so only a self-parent is possible and
	// the id does not exist; still reject a parent that does not resolve.
	if details.ParentTeamID != nil {
		if _, err := s.store.GetTeam(ctx, *details.ParentTeamID); err != nil {
			return "", err
		}
	}
	return s.store.CreateTeam(ctx, details)
}

// UpdateTeam validates the parent pointer against the current tree before
// persisting; reparenting a team under one of its own descendants is
// rejected with hierarchy.ErrWouldCreateCycle.
func (s *Service) UpdateTeam(ctx context.Context, teamID string, details TeamDetails) error {
	if details.ParentTeamID != nil {
		parents, err := s.store.TeamParents(ctx)
		if err != nil {
			return err
		}
		if err := hierarchy.CheckParent(teamID, *details.ParentTeamID, hierarchy.MapParentFunc(parents)); err != nil {
			return err
		}
	}
	return s.store.UpdateTeam(ctx, teamID, details)
}

func (s *Service) ReconcileMemberCounts(ctx context.Context) (int64, error) {
	return s.store.ReconcileMemberCounts(ctx)
}
