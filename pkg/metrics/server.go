package metrics

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/arthur-debert/busy/pkg/errors"
	"github.com/arthur-debert/busy/pkg/logging"
	"github.com/arthur-debert/busy/pkg/ui"
	"github.com/arthur-debert/busy/pkg/wait"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// Server exposes /metrics and /loaders
type Server struct {
	addr     string
	reg      *wait.Registry
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
}

// NewServer creates a server for addr. Nothing listens until Serve.
func NewServer(addr string, reg *wait.Registry, gatherer prometheus.Gatherer) *Server {
	return &Server{
		addr:     addr,
		reg:      reg,
		gatherer: gatherer,
		logger:   logging.GetLogger("metrics.Server"),
	}
}

// Handler returns the server's routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/loaders", s.loadersHandler)
	return mux
}

func (s *Server) loadersHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Trace().Str("remote_addr", r.RemoteAddr).Msg("Loaders endpoint hit")

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ui.NewStatus(s.reg.Snapshot())); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write loaders response")
	}
}

// Serve listens on the configured address and blocks until ctx is done,
// then shuts down gracefully
func (s *Server) Serve(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// Listen binds the configured address without serving, so callers can fail
// before starting work that the server is meant to observe
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrServe, "failed to listen on %s", s.addr).
			WithDetail("addr", s.addr)
	}
	return ln, nil
}

// ServeListener is Serve on an already bound listener. ln is closed on return.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info().Str("address", ln.Addr().String()).Msg("Metrics server started")

	select {
	case err := <-errCh:
		return errors.Wrap(err, errors.ErrServe, "metrics server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, errors.ErrServe, "failed to shut down metrics server")
	}
	s.logger.Debug().Msg("Metrics server stopped")
	return nil
}
