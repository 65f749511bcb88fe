package store

import (
	"regexp"
	"strings"

	"github.com/JieningYu/yfass/internal/yerr"
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Key is either a specific (Name, Version) pair or a bare alias Name.
type Key struct {
	Name    string
	Version string // empty when Key is a bare alias
}

func (k Key) String() string {
	if k.Version == "" {
		return k.Name
	}
	return k.Name + "@" + k.Version
}

func (k Key) IsAlias() bool { return k.Version == "" }

// ParseKey parses "name@version" or a bare alias name.
func ParseKey(raw string) (Key, error) {
	if raw == "" {
		return Key{}, yerr.BadRequestf("empty function key")
	}
	parts := strings.SplitN(raw, "@", 2)
	name := parts[0]
	if !nameRe.MatchString(name) {
		return Key{}, yerr.BadRequestf("invalid function name %q", name)
	}
	if len(parts) == 1 {
		return Key{Name: name}, nil
	}
	version := parts[1]
	if !nameRe.MatchString(version) {
		return Key{}, yerr.BadRequestf("invalid version %q", version)
	}
	return Key{Name: name, Version: version}, nil
}

func validName(s string) error {
	if !nameRe.MatchString(s) {
		return yerr.BadRequestf("invalid name %q: must match [A-Za-z0-9._-]+", s)
	}
	return nil
}

func validNameVersion(name, version string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := validName(version); err != nil {
		return err
	}
	return nil
}
