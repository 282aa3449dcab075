// Package health exposes the minimal liveness endpoint deployment
// probes expect.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Server serves GET /healthz with a fixed "ok" response.
type Server struct {
	port       int
	logger     *slog.Logger
	httpServer *http.Server
	addr       string
}

// NewServer creates a liveness [Server] on the given port. The server
// is not started until [Server.Start] is called.
func NewServer(port int, logger *slog.Logger) *Server {
	return &Server{port: port, logger: logger}
}

// Start begins serving in a background goroutine.
//
// The listener is created first so a port conflict fails synchronously.
// When the context is cancelled the server shuts down gracefully with
// a short timeout.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to bind health port %d: %w", s.port, err)
	}
	s.addr = ln.Addr().String()

	s.httpServer = &http.Server{
		Handler: mux,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("health server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("health server shutdown error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address. Valid after a successful
// [Server.Start]; useful when the configured port is 0.
func (s *Server) Addr() string {
	return s.addr
}
