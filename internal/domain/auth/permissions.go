package auth

const (
	RoleAdmin      = "admin"
	RoleExecutive  = "executive"
	RoleTeamLeader = "team_leader"
	RoleUser       = "user"
)

const (
	PermUsersRead         = "users.read"
	PermUsersWrite        = "users.write"
	PermTeamsRead         = "teams.read"
	PermTeamsWrite        = "teams.write"
	PermOKRRead           = "okr.read"
	PermOKRWrite          = "okr.write"
	PermOKRDelete         = "okr.delete"
	PermCyclesWrite       = "cycles.write"
	PermCheckinsWrite     = "checkins.write"
	PermMeetingsRead      = "meetings.read"
	PermMeetingsWrite     = "meetings.write"
	PermResourcesRead     = "resources.read"
	PermResourcesWrite    = "resources.write"
	PermFinanceRead       = "finance.read"
	PermFinanceWrite      = "finance.write"
	PermReportsRead       = "reports.read"
	PermReportsExport     = "reports.export"
	PermSettingsWrite     = "settings.write"
	PermIntegrationsWrite = "integrations.write"
	PermActivityRead      = "activity.read"
	PermSystemAdmin       = "admin.system"
)

var rolePermissions = map[string]map[string]bool{
	RoleUser: permSet(
		PermUsersRead,
		PermTeamsRead,
		PermOKRRead,
		PermOKRWrite,
		PermCheckinsWrite,
		PermMeetingsRead,
		PermMeetingsWrite,
		PermResourcesRead,
		PermReportsRead,
	),
	RoleTeamLeader: permSet(
		PermUsersRead,
		PermTeamsRead,
		PermTeamsWrite,
		PermOKRRead,
		PermOKRWrite,
		PermOKRDelete,
		PermCyclesWrite,
		PermCheckinsWrite,
		PermMeetingsRead,
		PermMeetingsWrite,
		PermResourcesRead,
		PermResourcesWrite,
		PermFinanceRead,
		PermReportsRead,
		PermReportsExport,
	),
	RoleExecutive: permSet(
		PermUsersRead,
		PermTeamsRead,
		PermTeamsWrite,
		PermOKRRead,
		PermOKRWrite,
		PermOKRDelete,
		PermCyclesWrite,
		PermCheckinsWrite,
		PermMeetingsRead,
		PermMeetingsWrite,
		PermResourcesRead,
		PermResourcesWrite,
		PermFinanceRead,
		PermFinanceWrite,
		PermReportsRead,
		PermReportsExport,
		PermActivityRead,
	),
	RoleAdmin: permSet(
		PermUsersRead,
		PermUsersWrite,
		PermTeamsRead,
		PermTeamsWrite,
		PermOKRRead,
		PermOKRWrite,
		PermOKRDelete,
		PermCyclesWrite,
		PermCheckinsWrite,
		PermMeetingsRead,
		PermMeetingsWrite,
		PermResourcesRead,
		PermResourcesWrite,
		PermFinanceRead,
		PermFinanceWrite,
		PermReportsRead,
		PermReportsExport,
		PermSettingsWrite,
		PermIntegrationsWrite,
		PermActivityRead,
		PermSystemAdmin,
	),
}

var Roles = []string{RoleAdmin, RoleExecutive, RoleTeamLeader, RoleUser}

func permSet(perms ...string) map[string]bool {
	set := make(map[string]bool, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return set
}

func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// RoleHasPermission resolves permissions from the static role map. Roles are
// an enum on the user record, not tenant-configurable rows.
func RoleHasPermission(role, permission string) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return perms[permission]
}
