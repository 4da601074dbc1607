package rbac

import "testing"

func TestCan(t *testing.T) {
	cases := []struct {
		name   string
		roles  []Role
		action Action
		allow  bool
	}{
		{name: "user read", roles: []Role{RoleUser}, action: ActionRead, allow: true},
		{name: "user write", roles: []Role{RoleUser}, action: ActionWrite, allow: false},
		{name: "admin read", roles: []Role{RoleAdmin}, action: ActionRead, allow: true},
		{name: "admin write", roles: []Role{RoleAdmin}, action: ActionWrite, allow: true},
		{name: "admin and user write", roles: []Role{RoleUser, RoleAdmin}, action: ActionWrite, allow: true},
		{name: "no roles read", roles: nil, action: ActionRead, allow: false},
		{name: "unknown role read", roles: []Role{"GUEST"}, action: ActionRead, allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Can(tc.roles, tc.action); got != tc.allow {
				t.Fatalf("Can(%v, %q) = %v, want %v", tc.roles, tc.action, got, tc.allow)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]Role{
		"USER":       RoleUser,
		"user":       RoleUser,
		"ROLE_ADMIN": RoleAdmin,
		" admin ":    RoleAdmin,
		"viewer":     "",
		"":           "",
	}
	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}

	got := NormalizeAll([]string{"ROLE_USER", "bogus", "ADMIN"})
	if len(got) != 2 || got[0] != RoleUser || got[1] != RoleAdmin {
		t.Fatalf("NormalizeAll() = %v", got)
	}
}
