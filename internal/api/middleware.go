package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/JieningYu/yfass/internal/auth"
	"github.com/JieningYu/yfass/internal/logger"
	"github.com/JieningYu/yfass/internal/store"
	"github.com/JieningYu/yfass/internal/yerr"
)

// rule inspects the authenticated request and returns nil if it may
// proceed, or a *yerr.Error (typically PermissionDenied) otherwise.
type rule func(s *Server, r *http.Request, u auth.User) error

// guard wraps handler with bearer authentication — every endpoint
// authenticates via "Authorization: Bearer <token>", 401 on missing or
// invalid credentials, 403 on a denied authorization rule — followed by
// the route's authorization rule.
func (s *Server) guard(check rule, handler func(http.ResponseWriter, *http.Request, auth.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-Id", reqID)
		log := logger.Named("api")

		bearer, ok := bearerFromHeader(r.Header.Get("Authorization"))
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		user, err := s.Auth.Authenticate(bearer, time.Now())
		if err != nil {
			writeErrorFromErr(w, err)
			return
		}

		if !s.allow(bearer) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		if check != nil {
			if err := check(s, r, user); err != nil {
				writeErrorFromErr(w, err)
				return
			}
		}

		if r.Method == http.MethodGet {
			log.Debug("request", "method", r.Method, "path", r.URL.Path, "user", user.Name, "request_id", reqID)
		} else {
			logger.Named("audit").Info("management operation", "method", r.Method, "path", r.URL.Path,
				"user", user.Name, "request_id", reqID)
		}
		handler(w, r, user)
	}
}

func bearerFromHeader(h string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, prefix))
	if tok == "" {
		return "", false
	}
	return tok, true
}

// allow applies an ambient per-bearer rate limit, carried as the
// project's general request-shaping posture.
func (s *Server) allow(bearer string) bool {
	s.limiterMu.Lock()
	lim, ok := s.limiters[bearer]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(50), 100)
		s.limiters[bearer] = lim
	}
	s.limiterMu.Unlock()
	return lim.Allow()
}

func writeErrorFromErr(w http.ResponseWriter, err error) {
	code := statusFor(yerr.KindOf(err))
	writeError(w, code, err.Error())
}

// statusFor maps a domain error kind to its HTTP status.
func statusFor(k yerr.Kind) int {
	switch k {
	case yerr.NotFound:
		return http.StatusNotFound
	case yerr.AlreadyExists, yerr.Conflict:
		return http.StatusConflict
	case yerr.PermissionDenied:
		return http.StatusForbidden
	case yerr.Unauthenticated:
		return http.StatusUnauthorized
	case yerr.BadRequest:
		return http.StatusBadRequest
	case yerr.SandboxSpawn:
		return http.StatusInternalServerError
	case yerr.Upstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Authorization rules

func requireAdmin(s *Server, r *http.Request, u auth.User) error {
	if !u.IsAdmin() {
		return yerr.PermissionDeniedf("admin required")
	}
	return nil
}

func requireRoot(s *Server, r *http.Request, u auth.User) error {
	if !u.IsRoot() {
		return yerr.PermissionDeniedf("root required")
	}
	return nil
}

func requireSelfOrAdmin(s *Server, r *http.Request, u auth.User) error {
	if u.IsAdmin() || u.Name == r.PathValue("name") {
		return nil
	}
	return yerr.PermissionDeniedf("self or admin required")
}

func requirePerm(p auth.Perm) rule {
	return func(s *Server, r *http.Request, u auth.User) error {
		if !u.Has(p) {
			return yerr.PermissionDeniedf("%s permission required", p)
		}
		return nil
	}
}

// requirePermAndGroup implements the "+ group" rule some routes need: the
// permission check applies, and additionally the bearer must be in the
// function's configured group (or hold ADMIN/ROOT, which Has already
// grants transitively — but group membership does not follow from a bare
// permission grant, so it is checked independently).
func requirePermAndGroup(p auth.Perm) rule {
	return func(s *Server, r *http.Request, u auth.User) error {
		if !u.Has(p) {
			return yerr.PermissionDeniedf("%s permission required", p)
		}
		key, err := store.ParseKey(r.PathValue("key"))
		if err != nil {
			return err
		}
		rec, err := s.Store.Resolve(key)
		if err != nil {
			return err
		}
		if !u.InGroup(rec.Config.Group) {
			return yerr.PermissionDeniedf("group %q required", rec.Config.Group)
		}
		return nil
	}
}
