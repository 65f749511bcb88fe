package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/JieningYu/yfass/internal/auth"
	"github.com/JieningYu/yfass/internal/yerr"
)

type userAddRequest struct {
	Name   string   `json:"name"`
	Groups []string `json:"groups,omitempty"`
}

func (s *Server) handleUserAdd(w http.ResponseWriter, r *http.Request, _ auth.User) {
	var req userAddRequest
	if err := decodeStrict(r, &req); err != nil {
		writeErrorFromErr(w, err)
		return
	}
	if err := auth.ValidName(req.Name); err != nil {
		writeErrorFromErr(w, err)
		return
	}
	if err := s.Auth.AddUser(auth.User{Name: req.Name, Groups: req.Groups}); err != nil {
		writeErrorFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": req.Name})
}

func (s *Server) handleUserGet(w http.ResponseWriter, r *http.Request, _ auth.User) {
	name := r.PathValue("name")
	u, err := s.Auth.GetUser(name)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUserRemove(w http.ResponseWriter, r *http.Request, _ auth.User) {
	name := r.PathValue("name")
	if err := s.Auth.RemoveUser(name); err != nil {
		writeErrorFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

type requestTokenRequest struct {
	User     string `json:"user"`
	Duration int    `json:"duration,omitempty"` // days
}

func (s *Server) handleRequestToken(w http.ResponseWriter, r *http.Request, _ auth.User) {
	var req requestTokenRequest
	if err := decodeStrict(r, &req); err != nil {
		writeErrorFromErr(w, err)
		return
	}
	tok, err := s.Auth.IssueAndStore(req.User, req.Duration, time.Now())
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(tok.Bearer))
}

type userModifyRequest struct {
	Name   string   `json:"name"`
	Groups []string `json:"groups,omitempty"`
}

func (s *Server) handleUserModify(w http.ResponseWriter, r *http.Request, _ auth.User) {
	var req userModifyRequest
	if err := decodeStrict(r, &req); err != nil {
		writeErrorFromErr(w, err)
		return
	}
	u, err := s.Auth.ModifyUser(req.Name, req.Groups)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// decodeStrict JSON-decodes the request body, rejecting unknown fields.
// Applied uniformly to all request bodies, not only the function config.
func decodeStrict(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return yerr.BadRequestf("malformed request body: %v", err)
	}
	return nil
}
