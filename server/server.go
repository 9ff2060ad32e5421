// Package server serves the dashboard: the embedded page, a websocket per
// browser session and a few read-only JSON endpoints.
package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/teranos/graphscope/am"
	"github.com/teranos/graphscope/graph"
	"github.com/teranos/graphscope/logger"
	"github.com/teranos/graphscope/metrics"
	"github.com/teranos/graphscope/pipeline"
)

// Server provides the live dashboard over one immutable dataset
type Server struct {
	pipe    *pipeline.Pipeline
	cfg     am.ServerConfig
	metrics *metrics.Registry
	base    *zap.SugaredLogger // parent of per-session loggers
	logger  *zap.SugaredLogger

	clients  map[*Client]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader

	optionsMu sync.RWMutex
	options   graph.Options

	verbosity  atomic.Int32
	maxClients atomic.Int32

	mux        *http.ServeMux
	httpServer *http.Server

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	state  atomic.Int32
}

// Options configures a Server. Zero values fall back to the global logger,
// a fresh metrics registry and the default renderer options.
type Options struct {
	Config    am.ServerConfig
	Render    graph.Options
	Metrics   *metrics.Registry
	Logger    *zap.SugaredLogger
	Verbosity int
}

// New creates a server over the pipeline's dataset
func New(pipe *pipeline.Pipeline, opts Options) *Server {
	base := opts.Logger
	if base == nil {
		base = logger.Logger
	}
	reg := opts.Metrics
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	render := opts.Render
	if render == nil {
		render = graph.DefaultOptions(true)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		pipe:    pipe,
		cfg:     opts.Config,
		metrics: reg,
		base:    base,
		logger:  base.Named("server"),
		clients: make(map[*Client]bool),
		options: render,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	s.verbosity.Store(int32(opts.Verbosity))
	s.maxClients.Store(int32(opts.Config.MaxClients))
	s.state.Store(int32(ServerStateRunning))

	nodes, edges := pipe.Dataset().Len()
	reg.SetDataset(nodes, edges)

	s.setupHTTPRoutes()
	return s
}

// Handler returns the HTTP handler with every route registered
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Options returns the current renderer options
func (s *Server) Options() graph.Options {
	s.optionsMu.RLock()
	defer s.optionsMu.RUnlock()
	return s.options
}

// ClientCount returns the number of connected sessions
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// handleClientRegister adds a client unless the session cap is reached
func (s *Server) handleClientRegister(client *Client) error {
	s.mu.Lock()
	if limit := int(s.maxClients.Load()); limit > 0 && len(s.clients) >= limit {
		s.mu.Unlock()
		s.logger.Warnw("Max clients reached, rejecting connection",
			logger.FieldClientID, client.id,
			"max_clients", limit,
		)
		return ErrTooManyClients
	}
	s.clients[client] = true
	total := len(s.clients)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(total)
	if logger.ShouldOutput(int(s.verbosity.Load()), logger.OutputSessions) {
		s.logger.Infow("Client connected",
			logger.FieldClientID, client.id,
			"total_clients", total,
		)
	}
	return nil
}

// handleClientUnregister removes a client and closes its queue
func (s *Server) handleClientUnregister(client *Client) {
	s.mu.Lock()
	_, ok := s.clients[client]
	delete(s.clients, client)
	total := len(s.clients)
	s.mu.Unlock()

	client.close()
	if !ok {
		return
	}

	s.metrics.SetActiveSessions(total)
	if logger.ShouldOutput(int(s.verbosity.Load()), logger.OutputSessions) {
		s.logger.Infow("Client disconnected",
			logger.FieldClientID, client.id,
			"total_clients", total,
		)
	}
}

// broadcast queues a message for every connected client
func (s *Server) broadcast(msgType string, v interface{}) {
	s.mu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		c.sendJSON(msgType, v)
	}
}
