package services

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Jeffail/shutdown"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server runs an HTTP handler until its context is cancelled.
type Server struct {
	name    string
	server  *http.Server
	log     *slog.Logger
	shutSig *shutdown.Signaller
}

// NewServer creates a server listening on addr.
func NewServer(name, addr string, h http.Handler, log *slog.Logger) *Server {
	return &Server{
		name: name,
		server: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		log:     log.With("service", name),
		shutSig: shutdown.NewSignaller(),
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts the
// server down gracefully. In flight requests are given a bounded amount of
// time to complete.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		defer s.shutSig.TriggerHasStopped()

		s.log.Info("Listening for HTTP requests", "address", ln.Addr().String())
		if err := s.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	s.shutSig.TriggerSoftStop()
	shutCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()

	if err := s.server.Shutdown(shutCtx); err != nil {
		s.log.Warn("Graceful shutdown timed out, closing connections", "error", err)
		_ = s.server.Close()
	}

	select {
	case <-s.shutSig.HasStoppedChan():
	case <-shutCtx.Done():
	}
	s.log.Info("Server stopped")
	return nil
}

// Stopping returns a channel closed once the server has begun shutting down.
func (s *Server) Stopping() <-chan struct{} {
	return s.shutSig.SoftStopChan()
}
