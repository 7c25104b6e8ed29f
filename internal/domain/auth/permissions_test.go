package auth

import "testing"

func TestRolePermissionsSubset(t *testing.T) {
	allowed := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		allowed[perm] = struct{}{}
	}

	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			if _, ok := allowed[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
		}
	}
}

func TestDefaultPermissionsUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		if _, ok := seen[perm]; ok {
			t.Fatalf("duplicate permission %s", perm)
		}
		seen[perm] = struct{}{}
	}
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role string
		perm string
		want bool
	}{
		{role: RoleAdmin, perm: PermEmployeesWrite, want: true},
		{role: RoleAdmin, perm: PermSystemReset, want: false},
		{role: RoleMaster, perm: PermSystemReset, want: true},
		{role: RoleMaster, perm: PermEmployeesDelete, want: true},
		{role: "guest", perm: PermEmployeesRead, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.role+"/"+tc.perm, func(t *testing.T) {
			if got := HasPermission(tc.role, tc.perm); got != tc.want {
				t.Fatalf("HasPermission(%s, %s) = %v", tc.role, tc.perm, got)
			}
		})
	}
}
