package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/JieningYu/yfass/internal/yerr"
)

// Store persists Users under <root>/users/<name>.json and Tokens under
// <root>/tokens/<bearer>.json. The platform's root token is held only in
// memory and never persists across runs.
type Store struct {
	root string

	mu             sync.RWMutex
	rootToken      Token
	defaultTTLDays int
}

func NewStore(root string) (*Store, error) {
	for _, dir := range []string{"users", "tokens"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("auth: create %s dir: %w", dir, err)
		}
	}
	return &Store{root: root}, nil
}

// SetDefaultTTLDays overrides the token lifetime IssueAndStore falls back to
// when a caller doesn't request a specific duration (days <= 0 leaves
// IssueToken's own DefaultTTLDays in effect).
func (s *Store) SetDefaultTTLDays(days int) {
	s.mu.Lock()
	s.defaultTTLDays = days
	s.mu.Unlock()
}

func (s *Store) userPath(name string) string   { return filepath.Join(s.root, "users", name+".json") }
func (s *Store) tokenPath(bearer string) string { return filepath.Join(s.root, "tokens", bearer+".json") }

// Bootstrap generates the root user and its root token, the latter held
// only in memory and returned for the caller to print to stdout once.
func (s *Store) Bootstrap(now time.Time) (Token, error) {
	root := User{Name: "root", Groups: []string{rootGroup}}
	if err := s.writeUser(root); err != nil {
		return Token{}, err
	}
	tok, err := IssueToken("root", 36500, now) // effectively non-expiring for the process lifetime
	if err != nil {
		return Token{}, err
	}
	s.mu.Lock()
	s.rootToken = tok
	s.mu.Unlock()
	return tok, nil
}

func (s *Store) writeUser(u User) error {
	body, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return fmt.Errorf("auth: marshal user: %w", err)
	}
	tmp := s.userPath(u.Name) + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return fmt.Errorf("auth: write user: %w", err)
	}
	return os.Rename(tmp, s.userPath(u.Name))
}

// AddUser creates a new user. Fails with AlreadyExists if name is taken.
func (s *Store) AddUser(u User) error {
	if err := ValidName(u.Name); err != nil {
		return err
	}
	if err := ValidateGroups(u.Groups); err != nil {
		return err
	}
	if _, err := os.Stat(s.userPath(u.Name)); err == nil {
		return yerr.AlreadyExistsf("user %q", u.Name)
	}
	return s.writeUser(u)
}

// GetUser loads a persisted user by name.
func (s *Store) GetUser(name string) (User, error) {
	data, err := os.ReadFile(s.userPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return User{}, yerr.NotFoundf("user %q", name)
	}
	if err != nil {
		return User{}, fmt.Errorf("auth: read user: %w", err)
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return User{}, yerr.BadRequestf("corrupt user record %q: %v", name, err)
	}
	return u, nil
}

// ModifyUser overwrites an existing user's groups.
func (s *Store) ModifyUser(name string, groups []string) (User, error) {
	if err := ValidateGroups(groups); err != nil {
		return User{}, err
	}
	u, err := s.GetUser(name)
	if err != nil {
		return User{}, err
	}
	u.Groups = groups
	if err := s.writeUser(u); err != nil {
		return User{}, err
	}
	return u, nil
}

// RemoveUser deletes a user's persisted record.
func (s *Store) RemoveUser(name string) error {
	if _, err := s.GetUser(name); err != nil {
		return err
	}
	if err := os.Remove(s.userPath(name)); err != nil {
		return fmt.Errorf("auth: remove user: %w", err)
	}
	return nil
}

// IssueAndStore mints a token for user and persists it to disk.
func (s *Store) IssueAndStore(user string, ttlDays int, now time.Time) (Token, error) {
	if _, err := s.GetUser(user); err != nil {
		return Token{}, err
	}
	if ttlDays <= 0 {
		s.mu.RLock()
		ttlDays = s.defaultTTLDays
		s.mu.RUnlock()
	}
	tok, err := IssueToken(user, ttlDays, now)
	if err != nil {
		return Token{}, err
	}
	body, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return Token{}, fmt.Errorf("auth: marshal token: %w", err)
	}
	if err := os.WriteFile(s.tokenPath(tok.Bearer), body, 0o600); err != nil {
		return Token{}, fmt.Errorf("auth: write token: %w", err)
	}
	return tok, nil
}

// Authenticate resolves a bearer string to its User, rejecting missing or
// expired tokens with Unauthenticated. The in-memory root token is checked
// first so no filesystem write is ever needed for it.
func (s *Store) Authenticate(bearer string, now time.Time) (User, error) {
	s.mu.RLock()
	root := s.rootToken
	s.mu.RUnlock()
	if root.Bearer != "" && bearer == root.Bearer {
		if root.Expired(now) {
			return User{}, yerr.Unauthenticatedf("token expired")
		}
		return s.GetUser(root.User)
	}

	data, err := os.ReadFile(s.tokenPath(bearer))
	if errors.Is(err, fs.ErrNotExist) {
		return User{}, yerr.Unauthenticatedf("unknown token")
	}
	if err != nil {
		return User{}, fmt.Errorf("auth: read token: %w", err)
	}
	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return User{}, yerr.Unauthenticatedf("corrupt token")
	}
	if tok.Expired(now) {
		return User{}, yerr.Unauthenticatedf("token expired")
	}
	return s.GetUser(tok.User)
}
