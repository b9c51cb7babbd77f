package okr

const (
	ObjectiveStatusDraft     = "draft"
	ObjectiveStatusActive    = "active"
	ObjectiveStatusCompleted = "completed"
	ObjectiveStatusCancelled = "cancelled"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	CycleTypeQuarterly = "quarterly"
	CycleTypeAnnual    = "annual"
	CycleTypeCustom    = "custom"

	CycleStatusUpcoming  = "upcoming"
	CycleStatusActive    = "active"
	CycleStatusCompleted = "completed"
)

var (
	Priorities    = []string{PriorityLow, PriorityMedium, PriorityHigh}
	CycleTypes    = []string{CycleTypeQuarterly, CycleTypeAnnual, CycleTypeCustom}
	CycleStatuses = []string{CycleStatusUpcoming, CycleStatusActive, CycleStatusCompleted}

	// StoredStatuses are the lifecycle states a client may set. "completed"
	// is never stored directly; it is derived from progress.
	StoredStatuses = []string{ObjectiveStatusDraft, ObjectiveStatusActive, ObjectiveStatusCancelled}
)

// EffectiveStatus resolves the status reported by the API. Progress is the
// source of truth: an objective at 100% reads as completed unless it was
// explicitly cancelled, and a cancelled objective stays cancelled regardless
// of progress. This replaces the independently settable status field that
// let status and progress contradict each other.
func EffectiveStatus(stored string, progressValue float64) string {
	if stored == ObjectiveStatusCancelled {
		return ObjectiveStatusCancelled
	}
	if progressValue >= 100 {
		return ObjectiveStatusCompleted
	}
	if stored == ObjectiveStatusDraft {
		return ObjectiveStatusDraft
	}
	return ObjectiveStatusActive
}
