package progress

import "testing"

func TestClassifyBands(t *testing.T) {
	cases := []struct {
		progress float64
		want     Health
	}{
		{100, HealthCompleted},
		{99, HealthOnTrack},
		{70, HealthOnTrack},
		{69.9999, HealthAtRisk},
		{50, HealthAtRisk},
		{30.0001, HealthAtRisk},
		{30, HealthBehind},
		{0, HealthBehind},
		{101, HealthCompleted},
	}
	for _, tc := range cases {
		if got := Classify(tc.progress); got != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", tc.progress, got, tc.want)
		}
	}
}

func TestDeriveIncreasing(t *testing.T) {
	got, err := Derive(0, 100, 76, DirectionIncreasing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 76 {
		t.Fatalf("expected 76, got %v", got)
	}
}

func TestDeriveDecreasing(t *testing.T) {
	got, err := Derive(8, 2, 3.5, DirectionDecreasing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 75 {
		t.Fatalf("expected 75, got %v", got)
	}
}

func TestDeriveClampsOutOfRange(t *testing.T) {
	over, err := Derive(0, 10, 25, DirectionIncreasing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if over != 100 {
		t.Fatalf("expected clamp to 100, got %v", over)
	}

	under, err := Derive(0, 10, -5, DirectionIncreasing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if under != 0 {
		t.Fatalf("expected clamp to 0, got %v", under)
	}
}

func TestDeriveRejectsTargetEqualsStart(t *testing.T) {
	if _, err := Derive(5, 5, 5, DirectionIncreasing); err != ErrTargetEqualsStart {
		t.Fatalf("expected ErrTargetEqualsStart, got %v", err)
	}
	if _, err := Derive(5, 5, 5, DirectionDecreasing); err != ErrTargetEqualsStart {
		t.Fatalf("expected ErrTargetEqualsStart, got %v", err)
	}
}

func TestAggregate(t *testing.T) {
	mean, ok := Aggregate([]float64{100, 50, 0})
	if !ok {
		t.Fatal("expected aggregate over non-empty set")
	}
	if mean != 50 {
		t.Fatalf("expected 50, got %v", mean)
	}

	if _, ok := Aggregate(nil); ok {
		t.Fatal("expected no aggregate for empty set")
	}
}
