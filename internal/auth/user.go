// Package auth implements the user/group/token model guarding the
// management API. Users and tokens persist as JSON files under the
// platform root; there is no database.
package auth

import (
	"regexp"
	"strings"

	"github.com/JieningYu/yfass/internal/yerr"
)

var userNameRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Perm is one of the four additive capabilities below ADMIN.
type Perm string

const (
	PermRead    Perm = "read"
	PermWrite   Perm = "write"
	PermExecute Perm = "execute"
	PermRemove  Perm = "remove"
)

// User is a name plus its group memberships. Name is immutable once created.
type User struct {
	Name   string   `json:"name"`
	Groups []string `json:"groups"`
}

const rootGroup = "singular:root"

func ValidName(name string) error {
	if !userNameRe.MatchString(name) {
		return yerr.BadRequestf("invalid user name %q: must match [A-Za-z0-9-]+", name)
	}
	return nil
}

// IsRoot reports whether the user carries the bootstrap root group.
func (u User) IsRoot() bool {
	for _, g := range u.Groups {
		if g == rootGroup {
			return true
		}
	}
	return false
}

// IsAdmin reports ROOT or an explicit permission:admin group. ROOT sits
// above ADMIN, which in turn sits above the four plain permissions.
func (u User) IsAdmin() bool {
	if u.IsRoot() {
		return true
	}
	for _, g := range u.Groups {
		if g == "permission:admin" {
			return true
		}
	}
	return false
}

// Has reports whether u holds perm directly, via ADMIN, or via ROOT.
// Permissions are additive; there are no negative grants.
func (u User) Has(perm Perm) bool {
	if u.IsAdmin() {
		return true
	}
	want := "permission:" + string(perm)
	for _, g := range u.Groups {
		if g == want {
			return true
		}
	}
	return false
}

// InGroup reports plain membership, used for the "+ group" checks on
// per-function operations: membership in the function's configured group,
// or the bearer has ADMIN/ROOT.
func (u User) InGroup(group string) bool {
	if group == "" {
		return true
	}
	if u.IsAdmin() {
		return true
	}
	for _, g := range u.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// ValidateGroups checks each group string matches one of the three
// allowed forms: permission:<p>, custom:<free>, singular:<name>.
func ValidateGroups(groups []string) error {
	for _, g := range groups {
		switch {
		case strings.HasPrefix(g, "permission:"):
			p := strings.TrimPrefix(g, "permission:")
			switch Perm(p) {
			case PermRead, PermWrite, PermExecute, PermRemove, "admin":
			default:
				return yerr.BadRequestf("invalid permission group %q", g)
			}
		case strings.HasPrefix(g, "custom:"), strings.HasPrefix(g, "singular:"):
			if g == "custom:" || g == "singular:" {
				return yerr.BadRequestf("empty group suffix in %q", g)
			}
		default:
			return yerr.BadRequestf("invalid group %q: must be permission:*, custom:*, or singular:*", g)
		}
	}
	return nil
}
