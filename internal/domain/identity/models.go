package identity

import "time"

type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"fullName"`
	JobTitle  string     `json:"jobTitle"`
	Role      string     `json:"role"`
	TeamID    *string    `json:"teamId"`
	Status    string     `json:"status"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Team struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	LeaderID     *string   `json:"leaderId"`
	ParentTeamID *string   `json:"parentTeamId"`
	MemberCount  int       `json:"memberCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type UserDetails struct {
	Username string
	Email    string
	FullName string
	JobTitle string
	Role     string
	TeamID   *string
	Status   string
}

type TeamDetails struct {
	Name         string
	Description  string
	LeaderID     *string
	ParentTeamID *string
}

type UserFilter struct {
	TeamID string
	Role   string
	Status string
	Limit  int
	Offset int
}
