package auth

import (
	"testing"
	"time"

	"github.com/JieningYu/yfass/internal/yerr"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestBootstrapAndAuthenticate(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	tok, err := s.Bootstrap(now)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	u, err := s.Authenticate(tok.Bearer, now)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !u.IsRoot() {
		t.Fatalf("expected root user, got %+v", u)
	}
}

func TestAuthenticateUnknownToken(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Authenticate("nope", time.Now())
	if yerr.KindOf(err) != yerr.Unauthenticated {
		t.Fatalf("kind = %v, want Unauthenticated", yerr.KindOf(err))
	}
}

func TestAddGetModifyRemoveUser(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddUser(User{Name: "alice", Groups: []string{"permission:read"}}); err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	if err := s.AddUser(User{Name: "alice"}); yerr.KindOf(err) != yerr.AlreadyExists {
		t.Fatalf("duplicate add kind = %v, want AlreadyExists", yerr.KindOf(err))
	}

	u, err := s.GetUser("alice")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if len(u.Groups) != 1 || u.Groups[0] != "permission:read" {
		t.Fatalf("unexpected groups: %v", u.Groups)
	}

	u2, err := s.ModifyUser("alice", []string{"permission:write"})
	if err != nil {
		t.Fatalf("ModifyUser: %v", err)
	}
	if u2.Groups[0] != "permission:write" {
		t.Fatalf("modify did not take effect: %v", u2.Groups)
	}

	if err := s.RemoveUser("alice"); err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}
	if _, err := s.GetUser("alice"); yerr.KindOf(err) != yerr.NotFound {
		t.Fatalf("expected NotFound after remove, got %v", err)
	}
}

func TestIssueAndStoreExpiry(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddUser(User{Name: "bob"}); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	now := time.Now()
	tok, err := s.IssueAndStore("bob", 1, now)
	if err != nil {
		t.Fatalf("IssueAndStore: %v", err)
	}

	if _, err := s.Authenticate(tok.Bearer, now); err != nil {
		t.Fatalf("Authenticate before expiry: %v", err)
	}

	future := now.Add(2 * 24 * time.Hour)
	if _, err := s.Authenticate(tok.Bearer, future); yerr.KindOf(err) != yerr.Unauthenticated {
		t.Fatalf("expected Unauthenticated after expiry, got %v", err)
	}
}

func TestIssueAndStoreUsesConfiguredDefaultTTL(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddUser(User{Name: "carol"}); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	s.SetDefaultTTLDays(2)

	now := time.Now()
	tok, err := s.IssueAndStore("carol", 0, now)
	if err != nil {
		t.Fatalf("IssueAndStore: %v", err)
	}

	withinConfiguredTTL := now.Add(36 * time.Hour)
	if _, err := s.Authenticate(tok.Bearer, withinConfiguredTTL); err != nil {
		t.Fatalf("Authenticate within configured TTL: %v", err)
	}

	pastConfiguredTTL := now.Add(3 * 24 * time.Hour)
	if _, err := s.Authenticate(tok.Bearer, pastConfiguredTTL); yerr.KindOf(err) != yerr.Unauthenticated {
		t.Fatalf("expected token to have expired at the configured 2-day TTL (not the 10-day default), got %v", err)
	}
}
