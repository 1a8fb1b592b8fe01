// Package web serves the status page of the running exercise.
package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/sweeney/labkit/internal/display"
	"github.com/sweeney/labkit/internal/status"
)

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/display.txt", s.handleDisplay)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener.
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
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// handleDisplay mirrors the character display as plain text. Exercises
// without a display answer 404.
func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	if snap.Lines == [display.Rows]string{} {
		http.Error(w, "no display on "+snap.Exercise, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, frameLCD(snap.Lines))
}

// frameLCD draws both rows padded to the display width inside a border.
func frameLCD(lines [display.Rows]string) string {
	edge := "+" + strings.Repeat("-", display.Columns) + "+\n"
	var b strings.Builder
	b.WriteString(edge)
	for _, line := range lines {
		line = display.Truncate(line, 0)
		pad := display.Columns - utf8.RuneCountInString(line)
		b.WriteString("|" + line + strings.Repeat(" ", pad) + "|\n")
	}
	b.WriteString(edge)
	return b.String()
}
