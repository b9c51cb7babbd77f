package meetings

import "time"

type Meeting struct {
	ID          string    `json:"id"`
	UserID1     string    `json:"userId1"`
	UserID2     string    `json:"userId2"`
	ObjectiveID *string   `json:"objectiveId"`
	Title       string    `json:"title"`
	Notes       string    `json:"notes"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	CreatedAt   time.Time `json:"createdAt"`
}

type AgendaItem struct {
	ID         string    `json:"id"`
	MeetingID  string    `json:"meetingId"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	AssigneeID *string   `json:"assigneeId"`
	SortOrder  int       `json:"sortOrder"`
	CreatedAt  time.Time `json:"createdAt"`
}

type MeetingDetails struct {
	UserID1     string
	UserID2     string
	ObjectiveID *string
	Title       string
	Notes       string
	StartTime   time.Time
	EndTime     time.Time
}
