package reports

import (
	"math"

	"okrtrack/internal/progress"
)

// Summarize folds report rows into the aggregate block. Health for the
// distribution comes from each row's already-classified value so report
// totals and list views never disagree.
func Summarize(rows []Row) Summary {
	s := Summary{
		ObjectiveCount:     len(rows),
		StatusDistribution: make(map[progress.Health]int),
	}
	if len(rows) == 0 {
		return s
	}

	var sum float64
	for _, r := range rows {
		sum += r.Progress
		s.KeyResultCount += r.KeyResultCount
		s.CheckInCount += r.CheckInCount
		s.StatusDistribution[r.Health]++
	}
	s.AverageProgress = round2(sum / float64(len(rows)))
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
