// Package server serves shape descriptors over HTTP and streams
// recomputed frames to WebSocket viewers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"icos-renderer/internal/descriptor"
	"icos-renderer/internal/scheduler"
	"icos-renderer/internal/symmetry"
)

// Server wraps http.Server with graceful shutdown and the viewer
// sessions it hosts.
type Server struct {
	*http.Server
	healthy atomic.Bool
	logger  *slog.Logger

	src       descriptor.Source
	frameRate int
	upgrader  websocket.Upgrader

	mu       sync.Mutex
	axes     symmetry.Axes
	sessions map[chan string]struct{}
}

// New creates a server on addr. frameRate is the tick rate of every
// viewer session.
func New(addr string, src descriptor.Source, axes symmetry.Axes, frameRate int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if frameRate <= 0 {
		frameRate = 30
	}
	s := &Server{
		Server: &http.Server{
			Addr:         addr,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger:    logger,
		src:       src,
		frameRate: frameRate,
		axes:      axes,
		sessions:  make(map[chan string]struct{}),
	}
	s.Handler = s.routes()
	s.healthy.Store(true)
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /geometry/{$}", s.handleList)
	mux.HandleFunc("GET /geometry/{file}", s.handleGeometry)
	mux.HandleFunc("GET /session", s.handleSession)
	return mux
}

// ListenAndServeWithGracefulShutdown serves until ctx is done, then
// shuts down within 30 seconds.
func (s *Server) ListenAndServeWithGracefulShutdown(ctx context.Context) error {
	done := make(chan error, 1)

	go func() {
		<-ctx.Done()

		s.logger.Info("shutting down server")
		s.healthy.Store(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		done <- s.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting server", "addr", s.Addr)
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-done
}

// Reload tells every session that shape's descriptor changed. An empty
// shape means the constants changed: the axes are reloaded and every
// session rebuilds.
func (s *Server) Reload(ctx context.Context, shape string) {
	if shape == "" {
		axes, err := scheduler.LoadAxes(ctx, s.src)
		if err != nil {
			s.logger.Warn("constants reload failed", "err", err)
			return
		}
		s.mu.Lock()
		s.axes = axes
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.sessions {
		select {
		case ch <- shape:
		default:
			s.logger.Debug("reload dropped for busy session", "shape", shape)
		}
	}
}

func (s *Server) currentAxes() symmetry.Axes {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.axes
}

func (s *Server) register() chan string {
	ch := make(chan string, 8)
	s.mu.Lock()
	s.sessions[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unregister(ch chan string) {
	s.mu.Lock()
	delete(s.sessions, ch)
	s.mu.Unlock()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.healthy.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	l, ok := s.src.(descriptor.Lister)
	if !ok {
		jsonResponse(w, http.StatusOK, []string{})
		return
	}
	names, err := l.Names(r.Context())
	if err != nil {
		s.logger.Error("list shapes", "err", err)
		errorResponse(w, http.StatusInternalServerError, "cannot list shapes")
		return
	}
	if names == nil {
		names = []string{}
	}
	jsonResponse(w, http.StatusOK, names)
}

func (s *Server) handleGeometry(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	shape, ok := strings.CutSuffix(file, ".json")
	if !ok || !descriptor.ValidName(shape) {
		errorResponse(w, http.StatusNotFound, "not found")
		return
	}

	var (
		v   any
		err error
	)
	if shape == "consts" {
		v, err = s.src.Consts(r.Context())
	} else {
		v, err = s.src.Geometry(r.Context(), shape)
	}
	switch {
	case errors.Is(err, descriptor.ErrNotFound):
		errorResponse(w, http.StatusNotFound, "not found")
	case err != nil:
		s.logger.Error("load descriptor", "shape", shape, "err", err)
		errorResponse(w, http.StatusInternalServerError, "cannot load descriptor")
	default:
		jsonResponse(w, http.StatusOK, v)
	}
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}
