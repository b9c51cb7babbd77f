// Package progress holds the shared progress arithmetic for objectives and
// key results. Every view of progress in the API goes through Classify so the
// thresholds cannot drift between consumers.
package progress

import "errors"

type Health string

const (
	HealthCompleted Health = "completed"
	HealthOnTrack   Health = "on_track"
	HealthAtRisk    Health = "at_risk"
	HealthBehind    Health = "behind"
)

type Direction string

const (
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
)

var ErrTargetEqualsStart = errors.New("target value must differ from start value")

// Classify maps a progress percentage onto a health band. Only exact 100
// counts as completed; 70 up to but excluding 100 is on track; strictly
// between 30 and 70 is at risk; 30 and below is behind.
func Classify(progress float64) Health {
	switch {
	case progress >= 100:
		return HealthCompleted
	case progress >= 70:
		return HealthOnTrack
	case progress > 30:
		return HealthAtRisk
	default:
		return HealthBehind
	}
}

// Derive computes percentage progress from a start/target/current triple.
// For increasing metrics progress grows as current approaches target from
// below; for decreasing metrics the ratio inverts. The result is clamped to
// [0,100]. A target equal to start has no defined ratio and is rejected.
func Derive(start, target, current float64, direction Direction) (float64, error) {
	if target == start {
		return 0, ErrTargetEqualsStart
	}
	var ratio float64
	if direction == DirectionDecreasing {
		ratio = (start - current) / (start - target)
	} else {
		ratio = (current - start) / (target - start)
	}
	return Clamp(ratio*100, 0, 100), nil
}

func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Aggregate is the mean progress over a set of key results. An objective
// with no key results keeps whatever progress it already has, signalled by
// the second return value.
func Aggregate(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return Clamp(sum/float64(len(values)), 0, 100), true
}
