package okr

import "testing"

func TestEffectiveStatus(t *testing.T) {
	cases := []struct {
		stored   string
		progress float64
		want     string
	}{
		{ObjectiveStatusActive, 45, ObjectiveStatusActive},
		{ObjectiveStatusActive, 100, ObjectiveStatusCompleted},
		{ObjectiveStatusDraft, 0, ObjectiveStatusDraft},
		{ObjectiveStatusDraft, 100, ObjectiveStatusCompleted},
		{ObjectiveStatusCancelled, 100, ObjectiveStatusCancelled},
		{ObjectiveStatusCancelled, 40, ObjectiveStatusCancelled},
		// Legacy rows that stored "completed" directly resolve by progress.
		{ObjectiveStatusCompleted, 40, ObjectiveStatusActive},
		{ObjectiveStatusCompleted, 100, ObjectiveStatusCompleted},
	}
	for _, tc := range cases {
		if got := EffectiveStatus(tc.stored, tc.progress); got != tc.want {
			t.Errorf("EffectiveStatus(%s, %v) = %s, want %s", tc.stored, tc.progress, got, tc.want)
		}
	}
}
