package api

import (
	"context"
	"mime"
	"net/http"
	"time"

	"github.com/JieningYu/yfass/internal/auth"
	"github.com/JieningYu/yfass/internal/store"
	"github.com/JieningYu/yfass/internal/yerr"
)

var acceptedArchiveTypes = map[string]bool{
	"application/x-tar":   true,
	"application/gzip":    true,
	"application/x-gzip":  true,
	"application/octet-stream": true, // many clients don't set this accurately
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, _ auth.User) {
	key, err := store.ParseKey(r.PathValue("key"))
	if err != nil || key.IsAlias() {
		writeError(w, http.StatusBadRequest, "upload requires a name@version key")
		return
	}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "" && !acceptedArchiveTypes[ct] {
		writeError(w, http.StatusBadRequest, "unsupported content type: "+ct)
		return
	}

	// Upload's body is the archive alone; config.addr and the sandbox
	// configuration are set afterward via PUT /api/override/{key}.
	rec, err := s.Store.Upload(r.Context(), key.Name, key.Version, r.Body, store.Config{})
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, _ auth.User) {
	key, err := store.ParseKey(r.PathValue("key"))
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	rec, err := s.Store.Resolve(key)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"meta": rec.Meta, "config": rec.Config})
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request, _ auth.User) {
	key, err := store.ParseKey(r.PathValue("key"))
	if err != nil || key.IsAlias() {
		writeError(w, http.StatusBadRequest, "override requires a name@version key")
		return
	}
	if s.Registry.Status(key.Name, key.Version) {
		writeErrorFromErr(w, yerr.Wrap(yerr.Conflict, "function is running", nil))
		return
	}
	var cfg store.Config
	if err := decodeStrict(r, &cfg); err != nil {
		writeErrorFromErr(w, err)
		return
	}
	rec, err := s.Store.Override(key.Name, key.Version, cfg)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type aliasRequest struct {
	Alias *string `json:"alias"`
}

func (s *Server) handleAlias(w http.ResponseWriter, r *http.Request, _ auth.User) {
	key, err := store.ParseKey(r.PathValue("key"))
	if err != nil || key.IsAlias() {
		writeError(w, http.StatusBadRequest, "alias target requires a name@version key")
		return
	}
	var req aliasRequest
	if err := decodeStrict(r, &req); err != nil {
		writeErrorFromErr(w, err)
		return
	}
	if req.Alias == nil {
		if err := s.Store.RemoveAlias(key.Name, key.Version); err != nil {
			writeErrorFromErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"alias": nil})
		return
	}
	if err := s.Store.Alias(key.Name, *req.Alias, key.Version); err != nil {
		writeErrorFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"alias": *req.Alias})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request, _ auth.User) {
	key, err := store.ParseKey(r.PathValue("key"))
	if err != nil || key.IsAlias() {
		writeError(w, http.StatusBadRequest, "remove requires a name@version key")
		return
	}
	if s.Registry.Status(key.Name, key.Version) {
		writeErrorFromErr(w, yerr.Wrap(yerr.Conflict, "remove refused: function is running", nil))
		return
	}
	if err := s.Store.Remove(key.Name, key.Version); err != nil {
		writeErrorFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"removed": key.String()})
}

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request, _ auth.User) {
	key, err := resolveRuntimeKey(s, r)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	if err := s.Registry.Deploy(ctx, key.Name, key.Version); err != nil {
		writeErrorFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deployed": key.String()})
}

func (s *Server) handleKill(w http.ResponseWriter, r *http.Request, _ auth.User) {
	key, err := resolveRuntimeKey(s, r)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := s.Registry.Kill(ctx, key.Name, key.Version); err != nil {
		writeErrorFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"killed": key.String()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, _ auth.User) {
	key, err := resolveRuntimeKey(s, r)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"running": s.Registry.Status(key.Name, key.Version)})
}

// resolveRuntimeKey resolves a possibly-aliased key to a concrete
// (name, version) pair, since deploy/kill/status act on running sandboxes
// keyed by concrete version.
func resolveRuntimeKey(s *Server, r *http.Request) (store.Key, error) {
	key, err := store.ParseKey(r.PathValue("key"))
	if err != nil {
		return store.Key{}, err
	}
	if !key.IsAlias() {
		return key, nil
	}
	rec, err := s.Store.Resolve(key)
	if err != nil {
		return store.Key{}, err
	}
	return store.Key{Name: rec.Meta.Name, Version: rec.Meta.Version}, nil
}
