package notifications

const (
	TypeCheckInDue       = "check_in_due"
	TypeCommentAdded     = "comment_added"
	TypeObjectiveUpdated = "objective_updated"
	TypeMeetingScheduled = "meeting_scheduled"
	TypeMeetingUpdated   = "meeting_updated"
	TypeTeamChanged      = "team_changed"
	TypeCycleEnding      = "cycle_ending"
	TypeSystem           = "system"
)
