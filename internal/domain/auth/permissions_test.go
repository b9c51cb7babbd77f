package auth

import "testing"

func TestRolePermissionBoundaries(t *testing.T) {
	cases := []struct {
		role       string
		permission string
		want       bool
	}{
		{RoleUser, PermOKRWrite, true},
		{RoleUser, PermOKRDelete, false},
		{RoleUser, PermUsersWrite, false},
		{RoleUser, PermSettingsWrite, false},
		{RoleTeamLeader, PermTeamsWrite, true},
		{RoleTeamLeader, PermFinanceWrite, false},
		{RoleTeamLeader, PermReportsExport, true},
		{RoleExecutive, PermFinanceWrite, true},
		{RoleExecutive, PermUsersWrite, false},
		{RoleExecutive, PermActivityRead, true},
		{RoleAdmin, PermUsersWrite, true},
		{RoleAdmin, PermSystemAdmin, true},
	}
	for _, tc := range cases {
		if got := RoleHasPermission(tc.role, tc.permission); got != tc.want {
			t.Errorf("RoleHasPermission(%s, %s) = %v, want %v", tc.role, tc.permission, got, tc.want)
		}
	}
}

func TestUnknownRoleHasNoPermissions(t *testing.T) {
	if RoleHasPermission("superuser", PermOKRRead) {
		t.Fatal("unknown role must not resolve permissions")
	}
	if ValidRole("superuser") {
		t.Fatal("unknown role must not validate")
	}
}

func TestEveryRoleCanReadOKRs(t *testing.T) {
	for _, role := range Roles {
		if !RoleHasPermission(role, PermOKRRead) {
			t.Errorf("role %s cannot read okrs", role)
		}
	}
}
