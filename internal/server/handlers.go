package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/socialauth/internal/oauth"
	"github.com/dropDatabas3/socialauth/internal/observability/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code, desc string) {
	writeJSON(w, status, map[string]string{"error": code, "error_description": desc})
}

// params aplana query (y form en POST) a la forma que espera el engine.
func params(r *http.Request) map[string]string {
	_ = r.ParseForm()
	out := make(map[string]string, len(r.Form))
	for k, v := range r.Form {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Cache.Ping(r.Context()); err != nil {
		writeErr(w, http.StatusServiceUnavailable, "cache_unavailable", err.Error())
		return
	}
	out := map[string]any{"status": "ok"}
	if st, err := s.opts.Cache.Stats(r.Context()); err == nil {
		out["cache"] = st
	}
	writeJSON(w, http.StatusOK, out)
}

type providerInfo struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

func (s *Server) providers(w http.ResponseWriter, _ *http.Request) {
	names := s.opts.Registry.Names()
	out := make([]providerInfo, 0, len(names))
	for _, n := range names {
		configured := false
		if s.opts.ConfigFunc != nil {
			_, configured = s.opts.ConfigFunc(n)
		}
		out = append(out, providerInfo{Name: n, Configured: configured})
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": out})
}

// login: GET /login/{provider}?state=...; el resto de la query va al
// adapter como extra (zxxk usa service, open_id, extra).
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	f, err := s.flow(name)
	if err != nil {
		writeErr(w, http.StatusNotFound, "provider_not_configured", err.Error())
		return
	}

	extra := params(r)
	state := extra["state"]
	delete(extra, "state")

	u, err := f.AuthorizeWith(r.Context(), state, extra)
	if err != nil {
		logger.FromWithFields(r.Context(), logger.Provider(f.Provider())).Warn("authorize failed", logger.Err(err))
		status := http.StatusBadGateway
		if errors.Is(err, oauth.ErrConfig) {
			status = http.StatusBadRequest
		}
		writeErr(w, status, "authorize_failed", err.Error())
		return
	}
	http.Redirect(w, r, u, http.StatusFound)
}

// callback corre Login y devuelve el Response tal cual, con su code como
// status HTTP.
func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	f, err := s.flow(name)
	if err != nil {
		writeErr(w, http.StatusNotFound, "provider_not_configured", err.Error())
		return
	}

	resp := f.Login(r.Context(), params(r), nil)
	if resp.OK() {
		logger.FromWithFields(r.Context(), logger.Provider(f.Provider())).Info("login ok",
			logger.UserUUID(resp.Data.UUID), logger.Email(resp.Data.Email))
	}
	writeJSON(w, resp.Code, resp)
}
