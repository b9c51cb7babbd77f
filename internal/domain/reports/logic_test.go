package reports

import (
	"testing"

	"okrtrack/internal/progress"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.ObjectiveCount != 0 || s.AverageProgress != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if len(s.StatusDistribution) != 0 {
		t.Fatalf("expected empty distribution, got %v", s.StatusDistribution)
	}
}

func TestSummarizeAggregates(t *testing.T) {
	rows := []Row{
		{Progress: 100, Health: progress.HealthCompleted, KeyResultCount: 3, CheckInCount: 5},
		{Progress: 75, Health: progress.HealthOnTrack, KeyResultCount: 2, CheckInCount: 4},
		{Progress: 50, Health: progress.HealthAtRisk, KeyResultCount: 1, CheckInCount: 0},
		{Progress: 10, Health: progress.HealthBehind, KeyResultCount: 0, CheckInCount: 1},
	}
	s := Summarize(rows)
	if s.ObjectiveCount != 4 {
		t.Errorf("objective count = %d, want 4", s.ObjectiveCount)
	}
	if s.KeyResultCount != 6 {
		t.Errorf("key result count = %d, want 6", s.KeyResultCount)
	}
	if s.CheckInCount != 10 {
		t.Errorf("check-in count = %d, want 10", s.CheckInCount)
	}
	if s.AverageProgress != 58.75 {
		t.Errorf("average progress = %v, want 58.75", s.AverageProgress)
	}
	for _, h := range []progress.Health{progress.HealthCompleted, progress.HealthOnTrack, progress.HealthAtRisk, progress.HealthBehind} {
		if s.StatusDistribution[h] != 1 {
			t.Errorf("distribution[%s] = %d, want 1", h, s.StatusDistribution[h])
		}
	}
}

func TestSummarizeRounding(t *testing.T) {
	rows := []Row{
		{Progress: 33.333, Health: progress.HealthAtRisk},
		{Progress: 33.333, Health: progress.HealthAtRisk},
		{Progress: 33.335, Health: progress.HealthAtRisk},
	}
	s := Summarize(rows)
	if s.AverageProgress != 33.33 {
		t.Errorf("average progress = %v, want 33.33", s.AverageProgress)
	}
}

func TestValidPeriodAndType(t *testing.T) {
	for _, p := range []string{PeriodCurrentCycle, PeriodLastCycle, PeriodYearToDate, PeriodAllTime} {
		if !ValidPeriod(p) {
			t.Errorf("expected %q valid", p)
		}
	}
	if ValidPeriod("fortnight") {
		t.Error("expected fortnight invalid")
	}
	for _, rt := range []string{TypeSummary, TypeTeam, TypeIndividual} {
		if !ValidType(rt) {
			t.Errorf("expected %q valid", rt)
		}
	}
	if ValidType("pdf") {
		t.Error("expected pdf invalid as report type")
	}
}
