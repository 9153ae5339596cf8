package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vtree/pkg/session"
)

// Server streams session patches to WebSocket clients and exposes a small
// HTTP API over the same sessions.
type Server struct {
	manager  *session.Manager
	config   *Config
	upgrader websocket.Upgrader
	handler  http.Handler
	logger   *slog.Logger

	mu   sync.Mutex
	hubs map[string]*hub

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a Server over the sessions of manager. A nil config uses
// DefaultConfig; unset fields are filled from it.
func New(manager *session.Manager, config *Config, opts ...Option) *Server {
	config = config.withDefaults()
	s := &Server{
		manager: manager,
		config:  config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: slog.Default(),
		hubs:   make(map[string]*hub),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")
	s.handler = s.routes()
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Manager returns the session manager.
func (s *Server) Manager() *session.Manager {
	return s.manager
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Connections returns the number of clients connected to session id.
func (s *Server) Connections(id string) int {
	s.mu.Lock()
	h, ok := s.hubs[id]
	s.mu.Unlock()
	if !ok {
		return 0
	}
	return h.count()
}

// hubFor returns the hub of session id, opening the session if needed.
func (s *Server) hubFor(ctx context.Context, id string) (*hub, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.manager.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if h, ok := s.hubs[id]; ok {
		if h.session == sess {
			return h, nil
		}
		// The session was closed and reopened behind our back.
		h.close()
	}

	h := newHub(sess, s.config.HistorySize, s.logger)
	s.hubs[id] = h
	return h, nil
}

// closeSession disconnects every client of session id and closes it.
func (s *Server) closeSession(id string) error {
	s.mu.Lock()
	h, ok := s.hubs[id]
	delete(s.hubs, id)
	s.mu.Unlock()

	if ok {
		h.close()
	}
	return s.manager.Close(id)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.httpServer == nil {
		s.httpServer = &http.Server{
			Handler:           s.handler,
			ReadHeaderTimeout: s.config.ReadTimeout,
		}
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("server starting", "address", ln.Addr().String(), "base_path", s.config.BasePath)
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Run listens on the configured address and serves until SIGINT or
// SIGTERM, then shuts down gracefully.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown disconnects every client, closes every session and stops the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	hubs := s.hubs
	s.hubs = make(map[string]*hub)
	srv := s.httpServer
	s.mu.Unlock()

	for _, h := range hubs {
		h.close()
	}
	s.manager.Shutdown()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
