// Package server exposes the bulk-grading pipeline over HTTP: multipart
// batch submission, live progress streaming (SSE and websocket), and
// artifact downloads.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"gradeflow/internal/batch"
	"gradeflow/internal/config"
	"gradeflow/internal/metrics"
)

// Server wires the HTTP handlers to the batch runner and session store.
type Server struct {
	cfg      config.Config
	runner   *batch.Runner
	store    *batch.SessionStore
	metrics  *metrics.Collector
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New creates a Server.
func New(cfg config.Config, runner *batch.Runner, store *batch.SessionStore, collector *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		runner:  runner,
		store:   store,
		metrics: collector,
		logger:  logger,
	}
}

// Handler returns the routed HTTP handler with logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /process", s.handleProcess)
	mux.HandleFunc("GET /stream/{session}", s.handleStream)
	mux.HandleFunc("GET /ws/{session}", s.handleWebsocket)
	mux.HandleFunc("GET /download/{session}/{kind}", s.handleDownload)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	return LoggingMiddleware(s.logger)(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

// handleProcess accepts a submission archive and roster upload and
// registers a session for them.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	taskType := r.FormValue("task_type")
	if _, ok := s.cfg.Tasks[taskType]; !ok {
		writeError(w, http.StatusBadRequest, "invalid task type")
		return
	}

	zipPath, err := s.saveUpload(r, "zip_file", ".zip")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rosterPath, err := s.saveUpload(r, "csv_file", ".csv")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := s.store.Create(taskType, zipPath, rosterPath)

	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": sess.ID,
		"task_type":  taskType,
	})
}

// handleStream runs the batch and relays its events as SSE frames. The
// run always drains to completion; a disconnected client just stops
// receiving frames.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sess, err := s.sessionFor(r)
	if err != nil {
		writeSSE(w, flusher, batch.Event{Type: batch.EventFatalError, Message: err.Error()})
		return
	}

	clientGone := r.Context().Done()
	writable := true
	for ev := range s.runner.Run(context.Background(), sess) {
		select {
		case <-clientGone:
			writable = false
		default:
		}
		if writable {
			if err := writeSSE(w, flusher, ev); err != nil {
				writable = false
			}
		}
	}
}

// handleWebsocket mirrors the SSE stream over a websocket connection.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFor(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	writable := true
	for ev := range s.runner.Run(context.Background(), sess) {
		if writable {
			if err := conn.WriteJSON(ev); err != nil {
				writable = false
			}
		}
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// handleDownload serves a completed run's artifacts. The result fields
// are read through the store so the handler never races with the runner
// goroutine completing the session.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	artifacts, err := s.store.Artifacts(r.PathValue("session"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if !artifacts.Done {
		writeError(w, http.StatusConflict, "batch not finished")
		return
	}

	var path, name string
	switch r.PathValue("kind") {
	case "csv":
		path, name = artifacts.CSVPath, artifacts.CSVFilename
	case "excel":
		path, name = artifacts.ExcelPath, artifacts.ExcelFilename
	default:
		writeError(w, http.StatusBadRequest, "invalid file type")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) sessionFor(r *http.Request) (*batch.Session, error) {
	return s.store.Get(r.PathValue("session"))
}

// saveUpload writes one uploaded file under the upload dir, enforcing
// the expected extension and sanitizing the client-supplied name.
func (s *Server) saveUpload(r *http.Request, field, wantExt string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("missing %s upload", field)
	}
	defer file.Close()

	name := sanitizeFilename(header.Filename)
	if !strings.EqualFold(filepath.Ext(name), wantExt) {
		return "", fmt.Errorf("invalid %s file", strings.TrimPrefix(wantExt, "."))
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	dest := filepath.Join(s.cfg.UploadDir, name)
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		return "", fmt.Errorf("save upload: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return dest, nil
}

// sanitizeFilename reduces a client-supplied filename to a safe basename.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func writeSSE(w io.Writer, flusher http.Flusher, ev batch.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
