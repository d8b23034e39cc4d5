// Package web provides the HTTP control surface for the telemetry daemon:
// status page, control endpoints, fault injection, log export, and a
// websocket live feed for the presentation layer.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sweeney/telemetry-sim/internal/fault"
	"github.com/sweeney/telemetry-sim/internal/sensor"
	"github.com/sweeney/telemetry-sim/internal/session"
)

// Server serves the status page and control API over HTTP.
type Server struct {
	httpServer *http.Server
	sess       *session.Session
}

// New creates a Server controlling the given session.
func New(addr string, sess *session.Session) *Server {
	s := &Server{sess: sess}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/control/", s.handleControl)
	mux.HandleFunc("/fault", s.handleFault)
	mux.HandleFunc("/fault/", s.handleFaultRevoke)
	mux.HandleFunc("/log.json", s.handleLog)
	mux.HandleFunc("/summary.json", s.handleSummary)
	mux.HandleFunc("/live", s.handleLive)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.sess.Tracker().Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.sess.Tracker().Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(statusJSON(snap))
}

// handleControl dispatches POST /control/{start,pause,resume,stop}.
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	op := strings.TrimPrefix(r.URL.Path, "/control/")
	now := time.Now()

	var err error
	switch op {
	case "start":
		err = s.sess.Start(now)
	case "pause":
		err = s.sess.Pause(now)
	case "resume":
		err = s.sess.Resume(now)
	case "stop":
		err = s.sess.Stop(now, "operator")
	default:
		http.NotFound(w, r)
		return
	}

	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]any{"state": string(s.sess.Status())})
}

// faultRequest is the POST /fault body.
type faultRequest struct {
	Channel   string  `json:"channel"`
	Kind      string  `json:"kind"`
	TickStart int64   `json:"tick_start"`
	TickEnd   *int64  `json:"tick_end"`
	Magnitude float64 `json:"magnitude"`
}

func (s *Server) handleFault(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req faultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		ev, err := s.sess.Inject(fault.Event{
			Channel:   sensor.Channel(req.Channel),
			Kind:      fault.Kind(req.Kind),
			TickStart: req.TickStart,
			TickEnd:   req.TickEnd,
			Magnitude: req.Magnitude,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeOK(w, map[string]any{"event": ev})

	case http.MethodGet:
		writeOK(w, map[string]any{"events": s.sess.FaultEvents()})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleFaultRevoke dispatches DELETE /fault/{id}.
func (s *Server) handleFaultRevoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/fault/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if err := s.sess.RevokeFault(id); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]any{"revoked": id})
}

// handleLog serves the full ordered session log. Export collaborators read
// this once the session is stopped; serialization beyond JSON is theirs.
func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	data, _ := json.MarshalIndent(s.sess.Log(), "", "  ")
	w.Write(data)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	data, _ := json.MarshalIndent(s.sess.Summary(), "", "  ")
	w.Write(data)
}

func writeOK(w http.ResponseWriter, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError

	var invalid *session.InvalidTransitionError
	var closed *session.SessionClosedError
	var overlap *fault.OverlapError
	var tooLate *fault.TooLateError

	switch {
	case errors.As(err, &invalid), errors.As(err, &overlap), errors.As(err, &tooLate):
		code = http.StatusConflict
	case errors.As(err, &closed):
		code = http.StatusGone
	case errors.Is(err, fault.ErrUnknownEvent):
		code = http.StatusNotFound
	default:
		code = http.StatusBadRequest
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
