package meetings

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrSameParticipant   = errors.New("a meeting needs two distinct participants")
	ErrInvalidTimeWindow = errors.New("meeting start must be before its end")
)

// Validate checks the participant and time-window invariants shared by
// create and update.
func (d MeetingDetails) Validate() error {
	if d.UserID1 == d.UserID2 {
		return ErrSameParticipant
	}
	if !d.StartTime.Before(d.EndTime) {
		return ErrInvalidTimeWindow
	}
	return nil
}
