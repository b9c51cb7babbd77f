package identity

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

var UserStatuses = []string{UserStatusActive, UserStatusInactive}
