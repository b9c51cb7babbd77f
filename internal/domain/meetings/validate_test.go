package meetings

import (
	"testing"
	"time"
)

func TestValidateRejectsSameParticipant(t *testing.T) {
	d := MeetingDetails{
		UserID1:   "u1",
		UserID2:   "u1",
		StartTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC),
	}
	if err := d.Validate(); err != ErrSameParticipant {
		t.Fatalf("expected ErrSameParticipant, got %v", err)
	}
}

func TestValidateRejectsInvertedWindow(t *testing.T) {
	d := MeetingDetails{
		UserID1:   "u1",
		UserID2:   "u2",
		StartTime: time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := d.Validate(); err != ErrInvalidTimeWindow {
		t.Fatalf("expected ErrInvalidTimeWindow, got %v", err)
	}
}

func TestValidateRejectsZeroLengthWindow(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	d := MeetingDetails{UserID1: "u1", UserID2: "u2", StartTime: at, EndTime: at}
	if err := d.Validate(); err != ErrInvalidTimeWindow {
		t.Fatalf("expected ErrInvalidTimeWindow for start == end, got %v", err)
	}
}

func TestValidateAccepts(t *testing.T) {
	d := MeetingDetails{
		UserID1:   "u1",
		UserID2:   "u2",
		StartTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("expected valid meeting, got %v", err)
	}
}
