package okr

import (
	"context"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"okrtrack/internal/hierarchy"
	"okrtrack/internal/progress"
)

// ugcPolicy strips markup from user-supplied rich text (check-in notes,
// comment bodies) down to a safe subset before it is stored.
var ugcPolicy = bluemonday.UGCPolicy()

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListCycles(ctx context.Context) ([]Cycle, error) {
	return s.store.ListCycles(ctx)
}

func (s *Service) GetCycle(ctx context.Context, cycleID string) (Cycle, error) {
	return s.store.GetCycle(ctx, cycleID)
}

func (s *Service) CreateCycle(ctx context.Context, name string, start, end time.Time, cycleType, status string) (string, error) {
	return s.store.CreateCycle(ctx, name, start, end, cycleType, status)
}

func (s *Service) UpdateCycle(ctx context.Context, cycleID, name string, start, end time.Time, cycleType, status string) error {
	return s.store.UpdateCycle(ctx, cycleID, name, start, end, cycleType, status)
}

func (s *Service) SetDefaultCycle(ctx context.Context, cycleID string) error {
	return s.store.SetDefaultCycle(ctx, cycleID)
}

func (s *Service) ListObjectives(ctx context.Context, filter ObjectiveFilter) ([]Objective, error) {
	return s.store.ListObjectives(ctx, filter)
}

func (s *Service) GetObjective(ctx context.Context, objectiveID string) (Objective, error) {
	return s.store.GetObjective(ctx, objectiveID)
}

func (s *Service) CreateObjective(ctx context.Context, details ObjectiveDetails) (string, error) {
	details.Status = NormalizeStoredStatus(details.Status)
	details.Progress = progress.Clamp(details.Progress, 0, 100)
	if details.ParentObjectiveID != nil {
		if _, err := s.store.GetObjective(ctx, *details.ParentObjectiveID); err != nil {
			return "", err
		}
	}
	return s.store.CreateObjective(ctx, details)
}

// UpdateObjective applies the optimistic-locking precondition and validates
// the alignment tree before persisting a parent change.
func (s *Service) UpdateObjective(ctx context.Context, objectiveID string, details ObjectiveDetails, expectedVersion int) error {
	details.Status = NormalizeStoredStatus(details.Status)
	details.Progress = progress.Clamp(details.Progress, 0, 100)
	if details.ParentObjectiveID != nil {
		parents, err := s.store.ObjectiveParents(ctx)
		if err != nil {
			return err
		}
		if err := hierarchy.CheckParent(objectiveID, *details.ParentObjectiveID, hierarchy.MapParentFunc(parents)); err != nil {
			return err
		}
	}
	return s.store.UpdateObjective(ctx, objectiveID, details, expectedVersion)
}

func (s *Service) DeleteObjective(ctx context.Context, objectiveID string) error {
	return s.store.DeleteObjective(ctx, objectiveID)
}

func (s *Service) ListKeyResults(ctx context.Context, objectiveID string) ([]KeyResult, error) {
	return s.store.ListKeyResults(ctx, objectiveID)
}

func (s *Service) GetKeyResult(ctx context.Context, keyResultID string) (KeyResult, error) {
	return s.store.GetKeyResult(ctx, keyResultID)
}

// CreateKeyResult derives the starting progress from the value triple; a
// target equal to start is rejected here rather than left to produce NaN.
func (s *Service) CreateKeyResult(ctx context.Context, objectiveID string, details KeyResultDetails) (string, error) {
	if _, err := s.store.GetObjective(ctx, objectiveID); err != nil {
		return "", err
	}
	initial, err := progress.Derive(details.StartValue, details.TargetValue, details.StartValue, details.Direction)
	if err != nil {
		return "", err
	}
	return s.store.CreateKeyResult(ctx, objectiveID, details, initial)
}

func (s *Service) UpdateKeyResultDetails(ctx context.Context, keyResultID string, details KeyResultDetails, expectedVersion int) error {
	return s.store.UpdateKeyResultDetails(ctx, keyResultID, details, expectedVersion)
}

func (s *Service) DeleteKeyResult(ctx context.Context, keyResultID string) error {
	return s.store.DeleteKeyResult(ctx, keyResultID)
}

func (s *Service) ListCheckIns(ctx context.Context, filter CheckInFilter) ([]CheckIn, error) {
	return s.store.ListCheckIns(ctx, filter)
}

// CheckInKeyResult moves a key result's current value and rolls the parent
// objective's aggregate forward in one transaction.
func (s *Service) CheckInKeyResult(ctx context.Context, keyResultID string, newValue float64, expectedVersion int, note string, confidence int, authorID string) (CheckIn, error) {
	note = sanitizeNote(note)
	return s.store.UpdateKeyResultValue(ctx, keyResultID, newValue, expectedVersion, note, confidence, authorID)
}

func (s *Service) CheckInObjective(ctx context.Context, objectiveID string, newProgress float64, note string, confidence int, authorID string) (CheckIn, error) {
	note = sanitizeNote(note)
	newProgress = progress.Clamp(newProgress, 0, 100)
	return s.store.CreateObjectiveCheckIn(ctx, objectiveID, newProgress, note, confidence, authorID)
}

func (s *Service) ListComments(ctx context.Context, objectiveID, keyResultID string) ([]Comment, error) {
	return s.store.ListComments(ctx, objectiveID, keyResultID)
}

// CreateComment validates the reply target: the parent must live in the same
// thread and the chain must stay acyclic and within the depth bound.
func (s *Service) CreateComment(ctx context.Context, objectiveID, keyResultID *string, authorID string, parentCommentID *string, body string) (string, error) {
	if objectiveID == nil && keyResultID == nil {
		return "", ErrCommentTarget
	}
	body = strings.TrimSpace(ugcPolicy.Sanitize(body))
	if parentCommentID != nil {
		parents, err := s.store.CommentParents(ctx, objectiveID, keyResultID)
		if err != nil {
			return "", err
		}
		// The new comment has no id yet; walking from the proposed parent
		// still bounds reply depth and catches corrupted chains.
		if err := hierarchy.CheckParent("", *parentCommentID, hierarchy.MapParentFunc(parents)); err != nil {
			return "", err
		}
	}
	return s.store.CreateComment(ctx, objectiveID, keyResultID, authorID, parentCommentID, body)
}

func (s *Service) UserCycleSummaries(ctx context.Context, cycleID string) ([]CycleSummary, error) {
	return s.store.UserCycleSummaries(ctx, cycleID)
}

func (s *Service) TeamCycleSummaries(ctx context.Context, cycleID string) ([]CycleSummary, error) {
	return s.store.TeamCycleSummaries(ctx, cycleID)
}

func (s *Service) RefreshCycleSummaries(ctx context.Context) error {
	return s.store.RefreshCycleSummaries(ctx)
}

func (s *Service) RollCycleStatuses(ctx context.Context) (int64, error) {
	return s.store.RollCycleStatuses(ctx)
}

// NormalizeStoredStatus maps client-supplied status onto a storable
// lifecycle state. "completed" is derived from progress and never stored.
func NormalizeStoredStatus(status string) string {
	switch status {
	case ObjectiveStatusDraft, ObjectiveStatusCancelled:
		return status
	default:
		return ObjectiveStatusActive
	}
}

func sanitizeNote(note string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(note))
}
