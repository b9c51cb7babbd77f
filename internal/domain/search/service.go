package search

import (
	"context"

	"okrtrack/internal/domain/identity"
	"okrtrack/internal/domain/okr"
	"okrtrack/internal/domain/resources"
	"okrtrack/internal/platform/cache"
)

var collectionOrder = []string{ResultUser, ResultTeam, ResultObjective, ResultResource}

// Service answers global searches over users, teams, objectives, and
// resources. Collections are fetched whole and held in the shared query
// cache; matching happens in memory.
type Service struct {
	identity  *identity.Service
	okr       *okr.Service
	resources *resources.Store
	cache     *cache.Cache
}

func New(identitySvc *identity.Service, okrSvc *okr.Service, resourceStore *resources.Store, c *cache.Cache) *Service {
	return &Service{identity: identitySvc, okr: okrSvc, resources: resourceStore, cache: c}
}

func (s *Service) Search(ctx context.Context, term string, limit int) (Results, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	collections := make(map[string][]Candidate, len(collectionOrder))

	users, err := s.cache.Get(ctx, "search:users", func(ctx context.Context) (any, error) {
		list, err := s.identity.ListUsers(ctx, identity.UserFilter{})
		if err != nil {
			return nil, err
		}
		return userCandidates(list), nil
	})
	if err != nil {
		return Results{}, err
	}
	collections[ResultUser] = users.([]Candidate)

	teams, err := s.cache.Get(ctx, "search:teams", func(ctx context.Context) (any, error) {
		list, err := s.identity.ListTeams(ctx)
		if err != nil {
			return nil, err
		}
		return teamCandidates(list), nil
	})
	if err != nil {
		return Results{}, err
	}
	collections[ResultTeam] = teams.([]Candidate)

	objectives, err := s.cache.Get(ctx, "search:objectives", func(ctx context.Context) (any, error) {
		list, err := s.okr.ListObjectives(ctx, okr.ObjectiveFilter{})
		if err != nil {
			return nil, err
		}
		return objectiveCandidates(list), nil
	})
	if err != nil {
		return Results{}, err
	}
	collections[ResultObjective] = objectives.([]Candidate)

	res, err := s.cache.Get(ctx, "search:resources", func(ctx context.Context) (any, error) {
		list, err := s.resources.List(ctx, "")
		if err != nil {
			return nil, err
		}
		return resourceCandidates(list), nil
	})
	if err != nil {
		return Results{}, err
	}
	collections[ResultResource] = res.([]Candidate)

	return Match(term, collections, collectionOrder, limit), nil
}

// InvalidateAll drops the cached collections after any mutation that
// could change search results.
func (s *Service) InvalidateAll() {
	s.cache.Invalidate("search:users")
	s.cache.Invalidate("search:teams")
	s.cache.Invalidate("search:objectives")
	s.cache.Invalidate("search:resources")
}

func userCandidates(users []identity.User) []Candidate {
	out := make([]Candidate, 0, len(users))
	for _, u := range users {
		out = append(out, Candidate{
			ID:          u.ID,
			Title:       u.FullName,
			Description: u.Email,
			Fields:      []string{u.FullName, u.Username, u.Email, u.Role},
		})
	}
	return out
}

func teamCandidates(teams []identity.Team) []Candidate {
	out := make([]Candidate, 0, len(teams))
	for _, t := range teams {
		out = append(out, Candidate{
			ID:          t.ID,
			Title:       t.Name,
			Description: t.Description,
			Fields:      []string{t.Name, t.Description},
		})
	}
	return out
}

func objectiveCandidates(objectives []okr.Objective) []Candidate {
	out := make([]Candidate, 0, len(objectives))
	for _, o := range objectives {
		out = append(out, Candidate{
			ID:          o.ID,
			Title:       o.Title,
			Description: o.Description,
			Fields:      []string{o.Title, o.Description},
		})
	}
	return out
}

func resourceCandidates(list []resources.Resource) []Candidate {
	out := make([]Candidate, 0, len(list))
	for _, r := range list {
		out = append(out, Candidate{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Fields:      []string{r.Title, r.Description},
		})
	}
	return out
}
