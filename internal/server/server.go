package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/zeusync/btengine/internal/config"
	"github.com/zeusync/btengine/internal/core/bt"
	"github.com/zeusync/btengine/internal/core/observability/log"
	"github.com/zeusync/btengine/internal/core/runner"
	"github.com/zeusync/btengine/internal/core/world"
)

// Server feeds evaluation reports of one tree over websocket.
type Server struct {
	config   config.ServerConfig
	runner   *runner.Runner
	tree     bt.Task
	scenario world.Snapshot
	auth     TokenAuth
	logger   log.Log

	http     *http.Server
	listener net.Listener

	clients     sync.Map // map[*websocket.Conn]struct{}
	clientCount atomic.Int64

	running atomic.Bool
	closed  atomic.Bool
	wg      sync.WaitGroup
}

// NewServer builds a server that evaluates tree against a fresh state built
// from scenario for every request.
func NewServer(cfg config.ServerConfig, r *runner.Runner, tree bt.Task, scenario world.Snapshot, logger log.Log) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Server{
		config:   cfg,
		runner:   r,
		tree:     tree,
		scenario: scenario,
		auth:     TokenAuth{Token: cfg.Token},
		logger:   logger.With(log.String("component", "server")),
	}
	s.http = &http.Server{
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return err
	}
	s.listener = ln
	s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Serve failed", log.Error(err))
		}
	}()
	return nil
}

// Addr is the bound address, valid after Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts the HTTP server down and closes open websocket connections.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}
	s.closed.Store(true)
	s.logger.Info("Stopping server", log.Int("clients", int(s.clientCount.Load())))

	// hijacked connections are not tracked by Shutdown
	s.clients.Range(func(key, _ any) bool {
		conn := key.(*websocket.Conn)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"), deadline(ctx))
		_ = conn.Close()
		return true
	})

	err := s.http.Shutdown(ctx)
	s.wg.Wait()
	s.logger.Info("Server stopped")
	return err
}

// ClientCount reports open websocket connections.
func (s *Server) ClientCount() int {
	return int(s.clientCount.Load())
}
