// Package server exposes the authoritative configuration to clients over
// HTTP together with its fingerprint, health and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/modsync/internal/config"
)

// FingerprintHeader carries the fingerprint of the served document.
const FingerprintHeader = "X-Config-Fingerprint"

// maxHandshakeBytes bounds a handshake request body.
const maxHandshakeBytes = 1 << 10

// Server serves one config.Service.
type Server struct {
	svc      *config.Service
	gatherer prometheus.Gatherer
	log      *slog.Logger

	mu     sync.Mutex // protects server
	server *http.Server
}

// New creates a server for svc. A nil gatherer disables /metrics.
func New(svc *config.Service, gatherer prometheus.Gatherer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		svc:      svc,
		gatherer: gatherer,
		log:      log.With("component", "server"),
	}
}

// Handler returns the routes:
//
//	GET  /config       current document, fingerprint in X-Config-Fingerprint
//	GET  /fingerprint  fingerprint as text
//	POST /handshake    body is the peer fingerprint; 409 on mismatch
//	GET  /health       JSON health, 503 until a configuration is loaded
//	GET  /metrics      Prometheus exposition
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /config", s.handleConfig)
	mux.HandleFunc("GET /fingerprint", s.handleFingerprint)
	mux.HandleFunc("POST /handshake", s.handleHandshake)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
	}
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.mu.Lock()
	if s.server != nil {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.server = srv
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.server = nil
		s.mu.Unlock()
	}()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving configuration", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	cfg := s.svc.Current()
	store, err := config.Encode(cfg)
	if err != nil {
		s.log.Error("encode configuration", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	data, err := store.Bytes()
	if err != nil {
		s.log.Error("encode configuration", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(FingerprintHeader, config.Fingerprint(cfg))
	_, _ = w.Write(data)
}

func (s *Server) handleFingerprint(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, s.svc.Fingerprint()+"\n")
}

func (s *Server) handleHandshake(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxHandshakeBytes))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	w.Header().Set(FingerprintHeader, s.svc.Fingerprint())
	if err := s.svc.Handshake(string(body)); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type healthResponse struct {
	Status       string    `json:"status"`
	LoadTimeMS   int64     `json:"load_time_ms"`
	LastReloadAt time.Time `json:"last_reload_at,omitzero"`
	LastError    string    `json:"last_error,omitempty"`
	Generation   string    `json:"generation"`
	Fingerprint  string    `json:"fingerprint"`
	Remote       bool      `json:"remote"`
	Enabled      []string  `json:"enabled"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h := s.svc.Health()
	resp := healthResponse{
		Status:       h.Status.String(),
		LoadTimeMS:   h.LoadTime.Milliseconds(),
		LastReloadAt: h.LastReloadAt,
		Generation:   h.Generation,
		Fingerprint:  h.Fingerprint,
		Remote:       h.Remote,
		Enabled:      h.Enabled,
	}
	if h.LastError != nil {
		resp.LastError = h.LastError.Error()
	}
	if resp.Enabled == nil {
		resp.Enabled = []string{}
	}

	code := http.StatusOK
	if h.Status == config.HealthUnhealthy {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("write health response", "error", err)
	}
}
