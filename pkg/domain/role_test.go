package domain

import "testing"

func TestAllow(t *testing.T) {
	cases := []struct {
		name   string
		role   Role
		class  ActionClass
		caller string
		target string
		want   bool
	}{
		{"supervisor admin", RoleSupervisor, ActionAdmin, "", "", true},
		{"supervisor self", RoleSupervisor, ActionSelfService, "a@x", "b@x", true},
		{"student read", RoleStudent, ActionRead, "", "", true},
		{"student admin", RoleStudent, ActionAdmin, "a@x", "a@x", false},
		{"student own record", RoleStudent, ActionSelfService, "a@x", "a@x", true},
		{"student other record", RoleStudent, ActionSelfService, "a@x", "b@x", false},
		{"student empty emails", RoleStudent, ActionSelfService, "", "", false},
		{"unknown role", Role("visitor"), ActionRead, "", "", false},
	}
	for _, tc := range cases {
		if got := Allow(tc.role, tc.class, tc.caller, tc.target); got != tc.want {
			t.Errorf("%s: Allow=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleStudent.Valid() || !RoleSupervisor.Valid() {
		t.Fatalf("known roles reported invalid")
	}
	if Role("warden").Valid() {
		t.Fatalf("unknown role reported valid")
	}
}
