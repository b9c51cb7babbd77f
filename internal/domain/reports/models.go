package reports

import (
	"errors"
	"time"

	"okrtrack/internal/progress"
)

const (
	PeriodCurrentCycle = "current_cycle"
	PeriodLastCycle    = "last_cycle"
	PeriodYearToDate   = "year_to_date"
	PeriodAllTime      = "all_time"
)

const (
	TypeSummary    = "okr_summary"
	TypeTeam       = "team_performance"
	TypeIndividual = "individual_performance"
)

var (
	ErrInvalidPeriod = errors.New("invalid time period")
	ErrInvalidType   = errors.New("invalid report type")
	ErrNoCycle       = errors.New("no cycle matches the requested period")
)

func ValidPeriod(period string) bool {
	switch period {
	case PeriodCurrentCycle, PeriodLastCycle, PeriodYearToDate, PeriodAllTime:
		return true
	}
	return false
}

func ValidType(reportType string) bool {
	switch reportType {
	case TypeSummary, TypeTeam, TypeIndividual:
		return true
	}
	return false
}

type Request struct {
	TimePeriod string `json:"timePeriod"`
	ReportType string `json:"reportType"`
	TeamID     string `json:"teamId,omitempty"`
}

// Row is one objective with the joined display fields a report needs.
type Row struct {
	ObjectiveID    string          `json:"objectiveId"`
	Title          string          `json:"title"`
	TeamName       string          `json:"teamName,omitempty"`
	OwnerName      string          `json:"ownerName,omitempty"`
	Progress       float64         `json:"progress"`
	Health         progress.Health `json:"health"`
	KeyResultCount int             `json:"keyResultCount"`
	CheckInCount   int             `json:"checkInCount"`
}

// Summary is the aggregate block shown at the top of every report.
type Summary struct {
	ObjectiveCount     int                     `json:"objectiveCount"`
	KeyResultCount     int                     `json:"keyResultCount"`
	CheckInCount       int                     `json:"checkInCount"`
	AverageProgress    float64                 `json:"averageProgress"`
	StatusDistribution map[progress.Health]int `json:"statusDistribution"`
}

type Preview struct {
	GeneratedAt time.Time `json:"generatedAt"`
	TimePeriod  string    `json:"timePeriod"`
	ReportType  string    `json:"reportType"`
	TeamName    string    `json:"teamName,omitempty"`
	Summary     Summary   `json:"summary"`
	Rows        []Row     `json:"rows"`
}

// Generated points at a finished export file.
type Generated struct {
	ReportURL string `json:"reportUrl"`
	FileName  string `json:"fileName"`
}
