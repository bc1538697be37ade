package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gitlab.com/tinyland/lab/hydro-pulse/pkg/sources"
)

// Health is the body of GET /health.
type Health struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Published bool      `json:"published"`
	Taken     time.Time `json:"taken,omitzero"`
}

type errorBody struct {
	Error string `json:"error"`
}

func sendJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, code int, msg string) {
	sendJSON(w, code, errorBody{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h := Health{
		Status:  "ok",
		Version: s.version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	}
	if snap, ok := s.Latest(); ok {
		h.Published = true
		h.Taken = snap.Taken
	}
	sendJSON(w, http.StatusOK, h)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.Latest()
	if !ok {
		sendError(w, http.StatusServiceUnavailable, "no snapshot published yet")
		return
	}
	sendJSON(w, http.StatusOK, snap)
}

func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.Latest()
	if !ok {
		sendError(w, http.StatusServiceUnavailable, "no snapshot published yet")
		return
	}
	id := chi.URLParam(r, "id")
	for _, wd := range snap.Widgets {
		if wd.ID == id {
			sendJSON(w, http.StatusOK, wd)
			return
		}
	}
	sendError(w, http.StatusNotFound, "unknown widget "+id)
}

func (s *Server) handleSources(w http.ResponseWriter, _ *http.Request) {
	out := []sources.SourceStatus{}
	if s.reg != nil {
		if st := s.reg.AllStatus(); st != nil {
			out = st
		}
	}
	sendJSON(w, http.StatusOK, out)
}
