package auth

import "testing"

func TestUserCapabilities(t *testing.T) {
	root := User{Name: "root", Groups: []string{"singular:root"}}
	if !root.IsRoot() || !root.IsAdmin() || !root.Has(PermRead) || !root.Has(PermRemove) {
		t.Fatal("root should hold every capability")
	}

	admin := User{Name: "a", Groups: []string{"permission:admin"}}
	if admin.IsRoot() {
		t.Fatal("admin is not root")
	}
	if !admin.IsAdmin() || !admin.Has(PermExecute) {
		t.Fatal("admin should hold every permission")
	}

	executor := User{Name: "u1", Groups: []string{"permission:execute"}}
	if executor.Has(PermWrite) {
		t.Fatal("executor should not hold write")
	}
	if !executor.Has(PermExecute) {
		t.Fatal("executor should hold execute")
	}

	plain := User{Name: "u2"}
	if plain.Has(PermRead) || plain.IsAdmin() {
		t.Fatal("user with no groups should hold no capabilities")
	}
}

func TestInGroup(t *testing.T) {
	u := User{Name: "u1", Groups: []string{"custom:team-a"}}
	if !u.InGroup("custom:team-a") {
		t.Fatal("expected membership in own group")
	}
	if u.InGroup("custom:team-b") {
		t.Fatal("expected no membership in unrelated group")
	}
	if !u.InGroup("") {
		t.Fatal("empty group requirement should always pass")
	}

	admin := User{Name: "a", Groups: []string{"permission:admin"}}
	if !admin.InGroup("custom:team-z") {
		t.Fatal("admin should satisfy any group requirement")
	}
}

func TestValidateGroups(t *testing.T) {
	cases := []struct {
		groups  []string
		wantErr bool
	}{
		{[]string{"permission:read"}, false},
		{[]string{"permission:bogus"}, true},
		{[]string{"custom:team-a"}, false},
		{[]string{"custom:"}, true},
		{[]string{"singular:root"}, false},
		{[]string{"nonsense"}, true},
	}
	for _, c := range cases {
		err := ValidateGroups(c.groups)
		if (err != nil) != c.wantErr {
			t.Errorf("ValidateGroups(%v) err = %v, wantErr %v", c.groups, err, c.wantErr)
		}
	}
}
