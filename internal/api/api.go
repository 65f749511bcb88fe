// Package api implements the management HTTP surface: user administration,
// function upload/get/override/alias/remove, and deploy/kill/status, all
// guarded by bearer-token auth and the permission/group model in
// internal/auth.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/JieningYu/yfass/internal/auth"
	"github.com/JieningYu/yfass/internal/registry"
	"github.com/JieningYu/yfass/internal/store"
)

// Server wires the auth store, function store, and registry behind the
// management route table.
type Server struct {
	Auth     *auth.Store
	Store    *store.Store
	Registry *registry.Registry

	mux *http.ServeMux

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// New builds the server's route table. Every route is wrapped by the
// bearer-auth middleware; rate limiting is ambient, keyed per bearer.
func New(a *auth.Store, s *store.Store, r *registry.Registry) *Server {
	srv := &Server{
		Auth:     a,
		Store:    s,
		Registry: r,
		mux:      http.NewServeMux(),
		limiters: make(map[string]*rate.Limiter),
	}
	srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/user/add", s.guard(requireAdmin, s.handleUserAdd))
	s.mux.HandleFunc("GET /api/user/get/{name}", s.guard(requireSelfOrAdmin, s.handleUserGet))
	s.mux.HandleFunc("DELETE /api/user/remove/{name}", s.guard(requireRoot, s.handleUserRemove))
	s.mux.HandleFunc("POST /api/user/request-token", s.guard(requireAdmin, s.handleRequestToken))
	s.mux.HandleFunc("PUT /api/user/modify", s.guard(requireAdmin, s.handleUserModify))

	s.mux.HandleFunc("POST /api/upload/{key}", s.guard(requirePerm(auth.PermWrite), s.handleUpload))
	s.mux.HandleFunc("GET /api/get/{key}", s.guard(requirePerm(auth.PermRead), s.handleGet))
	s.mux.HandleFunc("PUT /api/override/{key}", s.guard(requirePermAndGroup(auth.PermWrite), s.handleOverride))
	s.mux.HandleFunc("PUT /api/alias/{key}", s.guard(requirePermAndGroup(auth.PermWrite), s.handleAlias))
	s.mux.HandleFunc("DELETE /api/remove/{key}", s.guard(requirePermAndGroup(auth.PermRemove), s.handleRemove))
	s.mux.HandleFunc("POST /api/deploy/{key}", s.guard(requirePermAndGroup(auth.PermExecute), s.handleDeploy))
	s.mux.HandleFunc("POST /api/kill/{key}", s.guard(requirePermAndGroup(auth.PermExecute), s.handleKill))
	s.mux.HandleFunc("GET /api/status/{key}", s.guard(requirePermAndGroup(auth.PermExecute), s.handleStatus))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
