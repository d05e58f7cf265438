// Package web serves the tracker as a single HTML page.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/rewired-gh/putcall/internal/logger"
	"github.com/rewired-gh/putcall/internal/models"
	"github.com/rewired-gh/putcall/internal/tracker"
)

const invalidInputAlert = "Please enter valid numeric values!"

// Server renders the page and forwards form actions to the session.
type Server struct {
	session *tracker.Session
	addr    string
	page    *template.Template
}

func NewServer(addr string, session *tracker.Session) *Server {
	return &Server{
		session: session,
		addr:    addr,
		page:    template.Must(template.New("page").Parse(pageTemplate)),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Web page listening on http://%s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down web server: %w", err)
		}
		return nil
	}
}

type pageData struct {
	Put   string
	Call  string
	Alert string
	Trend string
	Rows  []models.Row
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, pageData{})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	put, call := r.PostForm.Get("put"), r.PostForm.Get("call")

	_, err := s.session.Analyze(r.Context(), put, call)
	if errors.Is(err, tracker.ErrNotNumeric) {
		s.render(w, http.StatusBadRequest, pageData{Put: put, Call: call, Alert: invalidInputAlert})
		return
	}
	if err != nil {
		logger.Error("Analyze failed: %v", err)
		s.render(w, http.StatusInternalServerError, pageData{Alert: "History could not be saved: " + err.Error()})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.session.Reset(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.session.Rows()); err != nil {
		logger.Warn("Failed to write history response: %v", err)
	}
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	data.Rows = s.session.Rows()
	data.Trend = s.session.Trend().String()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.Execute(w, data); err != nil {
		logger.Warn("Failed to render page: %v", err)
	}
}
