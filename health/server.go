// Package health serves the liveness/readiness endpoint.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

type healthResponse struct {
	Status string `json:"status"`
}

// Server is a minimal health check HTTP server. It reports "starting" with
// 503 until SetOK(true), then "ok" with 200.
type Server struct {
	srv *http.Server

	mu sync.Mutex
	ok bool
}

// NewServer builds a health server listening on the given port.
func NewServer(port int) *Server {
	s := &Server{}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// SetOK flips the reported health status.
func (s *Server) SetOK(ok bool) {
	s.mu.Lock()
	s.ok = ok
	s.mu.Unlock()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ok := s.ok
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	resp := healthResponse{Status: "ok"}
	if !ok {
		resp.Status = "starting"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// Start listens in the background.
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("health server error: %v", err)
		}
	}()
	log.Printf("health server listening on %s", s.srv.Addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
