package okr

import (
	"time"

	"okrtrack/internal/progress"
)

type Cycle struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

type Objective struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Progress           float64         `json:"progress"`
	TeamID             *string         `json:"teamId"`
	OwnerID            *string         `json:"ownerId"`
	IsCompanyObjective bool            `json:"isCompanyObjective"`
	StartDate          time.Time       `json:"startDate"`
	EndDate            time.Time       `json:"endDate"`
	CycleID            *string         `json:"cycleId"`
	Status             string          `json:"status"`
	Health             progress.Health `json:"health"`
	Priority           string          `json:"priority"`
	ConfidenceScore    int             `json:"confidenceScore"`
	ParentObjectiveID  *string         `json:"parentObjectiveId"`
	Version            int             `json:"version"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

type KeyResult struct {
	ID           string             `json:"id"`
	ObjectiveID  string             `json:"objectiveId"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	StartValue   float64            `json:"startValue"`
	CurrentValue float64            `json:"currentValue"`
	TargetValue  float64            `json:"targetValue"`
	Direction    progress.Direction `json:"direction"`
	Progress     float64            `json:"progress"`
	IsCompleted  bool               `json:"isCompleted"`
	Health       progress.Health    `json:"health"`
	OwnerID      *string            `json:"ownerId"`
	Version      int                `json:"version"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// CheckIn rows are append-only; there is no update or delete path. The audit
// trail is the point.
type CheckIn struct {
	ID            string    `json:"id"`
	ObjectiveID   *string   `json:"objectiveId"`
	KeyResultID   *string   `json:"keyResultId"`
	AuthorID      string    `json:"authorId"`
	PreviousValue float64   `json:"previousValue"`
	NewValue      float64   `json:"newValue"`
	ProgressDelta float64   `json:"progressDelta"`
	Note          string    `json:"note"`
	Confidence    int       `json:"confidence"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Comment struct {
	ID              string    `json:"id"`
	ObjectiveID     *string   `json:"objectiveId"`
	KeyResultID     *string   `json:"keyResultId"`
	AuthorID        string    `json:"authorId"`
	ParentCommentID *string   `json:"parentCommentId"`
	Body            string    `json:"body"`
	CreatedAt       time.Time `json:"createdAt"`
}

type ObjectiveDetails struct {
	Title              string
	Description        string
	Progress           float64
	TeamID             *string
	OwnerID            *string
	IsCompanyObjective bool
	StartDate          time.Time
	EndDate            time.Time
	CycleID            *string
	Status             string
	Priority           string
	ConfidenceScore    int
	ParentObjectiveID  *string
}

type KeyResultDetails struct {
	Title       string
	Description string
	StartValue  float64
	TargetValue float64
	Direction   progress.Direction
	OwnerID     *string
}

type ObjectiveFilter struct {
	TeamID      string
	OwnerID     string
	CycleID     string
	Status      string
	CompanyOnly bool
	Limit       int
	Offset      int
}

type CycleSummary struct {
	CycleID        string  `json:"cycleId"`
	SubjectID      string  `json:"subjectId"`
	ObjectiveCount int     `json:"objectiveCount"`
	AvgProgress    float64 `json:"avgProgress"`
}
