// Package api exposes the parse results over REST for the monitoring server.
package api

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/feedlab/itchvwap/internal/vwap"
)

// SessionInfo describes the parsed session window and tape counters.
type SessionInfo struct {
	Source     string `json:"source"`
	OpenNanos  uint64 `json:"openNanos"`
	CloseNanos uint64 `json:"closeNanos"`
	Trades     int    `json:"trades"`
	Securities int    `json:"securities"`
}

// reportState is the immutable snapshot published once the fold completes.
type reportState struct {
	session SessionInfo
	rows    []vwap.Row
	byTick  map[string]*vwap.Row
}

// Server provides REST endpoints for the finished VWAP report.
// Report endpoints return 503 until Publish is called.
type Server struct {
	state atomic.Pointer[reportState]
}

// NewServer creates an API server with no report yet.
func NewServer() *Server {
	return &Server{}
}

// Publish makes the finished report visible to the endpoints.
func (s *Server) Publish(session SessionInfo, rows []vwap.Row) {
	byTick := make(map[string]*vwap.Row, len(rows))
	for i := range rows {
		byTick[rows[i].Ticker] = &rows[i]
	}
	s.state.Store(&reportState{session: session, rows: rows, byTick: byTick})
}

// Register attaches API routes to the given mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/vwap", s.handleReport)
	mux.HandleFunc("GET /api/vwap/{ticker}", s.handleTicker)
	mux.HandleFunc("GET /api/session", s.handleSession)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ready returns the published state, writing a 503 if the fold has not
// completed yet.
func (s *Server) ready(w http.ResponseWriter) *reportState {
	st := s.state.Load()
	if st == nil {
		writeError(w, http.StatusServiceUnavailable, "report not ready")
		return nil
	}
	return st
}

type reportResponse struct {
	Hours []string   `json:"hours"`
	Rows  []vwap.Row `json:"rows"`
}

// handleReport returns the full VWAP table.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	st := s.ready(w)
	if st == nil {
		return
	}
	labels := vwap.Labels()
	writeJSON(w, http.StatusOK, reportResponse{Hours: labels[:], Rows: st.rows})
}

// handleTicker returns one security's row.
func (s *Server) handleTicker(w http.ResponseWriter, r *http.Request) {
	st := s.ready(w)
	if st == nil {
		return
	}
	ticker := r.PathValue("ticker")
	row, ok := st.byTick[ticker]
	if !ok {
		writeError(w, http.StatusNotFound, "symbol not found: "+ticker)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// handleSession returns the session window and tape counters.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	st := s.ready(w)
	if st == nil {
		return
	}
	writeJSON(w, http.StatusOK, st.session)
}
