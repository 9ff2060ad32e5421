package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/teranos/graphscope/am"
	"github.com/teranos/graphscope/errors"
	"github.com/teranos/graphscope/graph"
	"github.com/teranos/graphscope/logger"
)

// getState returns the current server state
func (s *Server) getState() ServerState {
	return ServerState(s.state.Load())
}

// setState atomically updates the server state
func (s *Server) setState(newState ServerState) {
	s.state.Store(int32(newState))
	s.logger.Infow("Server state changed", "new_state", stateString(newState))
}

// stateString returns human-readable state name
func stateString(state ServerState) string {
	switch state {
	case ServerStateRunning:
		return "running"
	case ServerStateDraining:
		return "draining"
	case ServerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Listen binds the configured address. When the port is taken the next ten
// ports are tried; the returned listener reports the one actually bound.
func (s *Server) Listen() (net.Listener, error) {
	host := s.cfg.Host
	if host == "" {
		host = am.DefaultHost
	}
	port := am.DefaultServerPort
	if s.cfg.Port != nil {
		port = *s.cfg.Port
	}

	l, err := listenAvailable(host, port)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find available port")
	}
	if actual := l.Addr().(*net.TCPAddr).Port; actual != port && port != 0 {
		s.logger.Infow("Port in use, using alternative",
			"requested_port", port,
			"actual_port", actual,
		)
	}
	return l, nil
}

// Serve serves HTTP on l until Stop is called
func (s *Server) Serve(l net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.ctx },
	}

	s.logger.Infow("Server ready", logger.FieldAddress, l.Addr().String())

	if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server failed")
	}
	return nil
}

// Reload applies a reloaded configuration: verbosity, the session cap and the
// renderer options file. Connected clients receive the new options.
func (s *Server) Reload(cfg *am.Config) error {
	logger.SetVerbosity(cfg.Log.Verbosity)
	s.verbosity.Store(int32(cfg.Log.Verbosity))
	s.maxClients.Store(int32(cfg.Server.MaxClients))

	opts, err := graph.LoadOptions(cfg.Data.OptionsFile, cfg.Data.Directed)
	if err != nil {
		return errors.Wrap(err, "keeping previous renderer options")
	}

	s.optionsMu.Lock()
	s.options = opts
	s.optionsMu.Unlock()

	if logger.ShouldOutput(int(s.verbosity.Load()), logger.OutputConfig) {
		s.logger.Infow("Configuration applied",
			"verbosity", cfg.Log.Verbosity,
			"max_clients", cfg.Server.MaxClients,
			logger.FieldFile, cfg.Data.OptionsFile,
		)
	}

	s.broadcast(MsgOptions, OptionsMessage{Type: MsgOptions, Options: opts})
	return nil
}

// Stop gracefully shuts down the server. Sessions are closed with a going-away
// frame, then Stop waits for their goroutines or until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	if s.getState() == ServerStateStopped {
		return nil
	}
	s.logger.Infow("Initiating server shutdown")
	s.setState(ServerStateDraining)

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ShutdownTimeout)
		defer cancel()
	}

	var shutdownErr error
	if s.httpServer != nil {
		shutdownErr = s.httpServer.Shutdown(ctx)
	}

	// Cancelling the server context makes every writePump send a close frame
	s.cancel()

	s.mu.Lock()
	clients := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infow("All sessions stopped cleanly")
	case <-ctx.Done():
		s.logger.Warnw("Session shutdown timed out, closing connections",
			"remaining", len(clients),
		)
		for _, c := range clients {
			c.conn.Close()
		}
		<-done
	}

	s.setState(ServerStateStopped)
	return shutdownErr
}
