package server

import (
	"embed"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teranos/graphscope/dashboard"
	grapherr "github.com/teranos/graphscope/graph/error"
	"github.com/teranos/graphscope/logger"
	"github.com/teranos/graphscope/version"
)

//go:embed web/index.html
var webFiles embed.FS

// HandleWebSocket upgrades the connection and starts a dashboard session on it
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.getState() != ServerStateRunning {
		writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	}
	if limit := int(s.maxClients.Load()); limit > 0 && s.ClientCount() >= limit {
		writeError(w, http.StatusServiceUnavailable, ErrTooManyClients.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		graphErr := grapherr.New(
			grapherr.CategoryWebSocket,
			err,
			"Failed to upgrade WebSocket connection",
		).WithSubcategory(grapherr.SubcategoryWSUpgrade)

		s.logger.Errorw("WebSocket upgrade failed",
			graphErr.ToLogFields()...,
		)
		return
	}

	session := dashboard.NewSession(uuid.NewString(), s.pipe, s.metrics, s.base)
	client := newClient(s, conn, session)

	// The cap may have been reached between the check above and now
	if err := s.handleClientRegister(client); err != nil {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()))
		conn.Close()
		return
	}

	// Queue init and the first render before the pumps start so they arrive in order
	client.sendJSON(MsgInit, InitMessage{
		Type:      MsgInit,
		SessionID: session.ID,
		Version:   version.Get().Version,
		Features:  s.pipe.Dataset().Features(),
		Options:   s.Options(),
		Controls:  session.Controls(),
		BaseYear:  s.pipe.Config().BaseYear,
	})
	payload, err := session.Apply(s.ctx, session.Controls(), "")
	if err != nil {
		// Defaults always validate; anything else is a configuration bug
		s.logger.Errorw("Initial render failed",
			logger.FieldSessionID, session.ID,
			logger.FieldError, err,
		)
	} else {
		client.sendGraph(payload)
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		client.writePump(s.ctx)
	}()
	go func() {
		defer s.wg.Done()
		client.readPump()
	}()
}

// HandleFeatures serves the attributes offered for coloring and sizing
func (s *Server) HandleFeatures(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.pipe.Dataset().Features())
}

// HandleOptions serves the renderer options
func (s *Server) HandleOptions(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.Options())
}

// HandleHealth serves liveness and a small status summary
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	versionInfo := version.Get()
	nodes, edges := s.pipe.Dataset().Len()

	status := http.StatusOK
	state := stateString(s.getState())
	if s.getState() != ServerStateRunning {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]interface{}{
		"status":      state,
		"version":     versionInfo.Version,
		"commit":      versionInfo.CommitHash,
		"clients":     s.ClientCount(),
		"max_clients": int(s.maxClients.Load()),
		"verbosity":   int(s.verbosity.Load()),
		"nodes":       nodes,
		"edges":       edges,
	})
}

// HandleStatic serves the embedded dashboard page
func (s *Server) HandleStatic(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}

	data, err := webFiles.ReadFile("web/index.html")
	if err != nil {
		s.logger.Errorw("Failed to read embedded page", logger.FieldError, err)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(data); err != nil {
		s.logger.Debugw("Failed to write response", logger.FieldError, err)
	}
}
