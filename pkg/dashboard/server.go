package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"awsdash/pkg/config"
	"awsdash/pkg/logger"
	"awsdash/pkg/ratelimit"
)

// Server serves the status page until its context is cancelled
type Server struct {
	cfg    config.DashboardConfig
	http   *http.Server
	logger logger.Logger
}

// NewServer creates a server for lister using cfg. The request guard is
// enabled when cfg.RequestsPerMin is positive.
func NewServer(cfg config.DashboardConfig, lister InstanceLister, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	var limiter ratelimit.Limiter
	if cfg.RequestsPerMin > 0 {
		limiter = ratelimit.PerMinute(cfg.RequestsPerMin)
	}

	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           NewHandler(lister, limiter, log),
			ReadHeaderTimeout: cfg.ReadTimeout,
			ReadTimeout:       cfg.ReadTimeout,
		},
		logger: log,
	}
}

// ListenAndServe listens on the configured address and serves until ctx
// is done
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
// Requests stuck in a retry loop are abandoned once the shutdown timeout
// elapses.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.InfoWithFields("dashboard listening", map[string]interface{}{
		"addr":   ln.Addr().String(),
		"region": s.cfg.Region,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down dashboard")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		_ = s.http.Close()
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	return nil
}
