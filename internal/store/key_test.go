package store

import (
	"testing"

	"github.com/JieningYu/yfass/internal/yerr"
)

func TestParseKey(t *testing.T) {
	cases := []struct {
		raw     string
		want    Key
		wantErr bool
	}{
		{"echo@v1", Key{Name: "echo", Version: "v1"}, false},
		{"prod", Key{Name: "prod"}, false},
		{"", Key{}, true},
		{"bad name@v1", Key{}, true},
		{"echo@bad version", Key{}, true},
		{"a.b-c_9@1.0.0", Key{Name: "a.b-c_9", Version: "1.0.0"}, false},
	}
	for _, c := range cases {
		got, err := ParseKey(c.raw)
		if (err != nil) != c.wantErr {
			t.Errorf("ParseKey(%q) err = %v, wantErr %v", c.raw, err, c.wantErr)
			continue
		}
		if err != nil {
			if yerr.KindOf(err) != yerr.BadRequest {
				t.Errorf("ParseKey(%q) err kind = %v, want BadRequest", c.raw, yerr.KindOf(err))
			}
			continue
		}
		if got != c.want {
			t.Errorf("ParseKey(%q) = %+v, want %+v", c.raw, got, c.want)
		}
	}
}

func TestKeyStringAndAlias(t *testing.T) {
	k := Key{Name: "echo", Version: "v1"}
	if k.String() != "echo@v1" {
		t.Errorf("String() = %q, want echo@v1", k.String())
	}
	if k.IsAlias() {
		t.Error("expected IsAlias() false for versioned key")
	}

	alias := Key{Name: "prod"}
	if alias.String() != "prod" {
		t.Errorf("String() = %q, want prod", alias.String())
	}
	if !alias.IsAlias() {
		t.Error("expected IsAlias() true for bare name")
	}
}
