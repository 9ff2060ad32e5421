package server

import (
	"context"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/teranos/graphscope/dashboard"
	"github.com/teranos/graphscope/errors"
	grapherr "github.com/teranos/graphscope/graph/error"
	"github.com/teranos/graphscope/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer. Controls are small; filter
	// expressions are capped well below this by validation.
	maxMessageSize = 64 * 1024
)

// Client is one websocket connection and its dashboard session
type Client struct {
	server  *Server
	conn    *websocket.Conn
	session *dashboard.Session
	limiter *rate.Limiter
	id      string

	mu     sync.Mutex // guards send against close
	send   chan []byte
	closed bool
}

func newClient(s *Server, conn *websocket.Conn, session *dashboard.Session) *Client {
	rps := rate.Limit(s.cfg.MessageRate)
	if s.cfg.MessageRate <= 0 {
		rps = rate.Inf
	}
	burst := s.cfg.MessageBurst
	if burst < 1 {
		burst = 1
	}
	return &Client{
		server:  s,
		conn:    conn,
		session: session,
		limiter: rate.NewLimiter(rps, burst),
		id:      session.ID,
		send:    make(chan []byte, MaxClientMessageQueueSize),
	}
}

// pingPeriod returns the keepalive interval; pongWait is slightly longer
func (c *Client) pingPeriod() time.Duration {
	if c.server.cfg.PingInterval <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.server.cfg.PingInterval) * time.Second
}

func (c *Client) pongWait() time.Duration {
	return c.pingPeriod() * 10 / 9
}

// readPump handles reading messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.server.handleClientUnregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		if !c.limiter.Allow() {
			c.sendError(grapherr.New(grapherr.CategoryWebSocket,
				errors.New("rate limit exceeded"),
				"Too many updates at once. The last change was ignored, try again.",
			).WithSubcategory(grapherr.SubcategoryWSMessage))
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.server.logger.Debugw("JSON unmarshal error",
				logger.FieldClientID, c.id,
				logger.FieldError, err,
			)
			c.sendError(grapherr.New(grapherr.CategoryWebSocket, err,
				"The message could not be read.",
			).WithSubcategory(grapherr.SubcategoryWSMessage))
			continue
		}

		c.server.metrics.RecordMessage("in", msg.Type)
		c.routeMessage(&msg)
	}
}

// handleReadError logs unexpected WebSocket read errors.
// Expected closure codes (going away, abnormal, no status) are silently ignored.
func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseNormalClosure,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		graphErr := grapherr.New(
			grapherr.CategoryWebSocket,
			err,
			"WebSocket connection closed unexpectedly",
		).WithSubcategory(grapherr.SubcategoryWSRead)

		c.server.logger.Warnw("WebSocket read error",
			append(graphErr.ToLogFields(), logger.FieldClientID, c.id)...,
		)
	}
}

// routeMessage dispatches incoming WebSocket messages to appropriate handlers
func (c *Client) routeMessage(msg *ClientMessage) {
	switch msg.Type {
	case MsgControls:
		c.handleControls(msg)
	case MsgPing:
		// Keepalive only; the read deadline is refreshed by pongs
	default:
		c.sendError(grapherr.Newf(grapherr.CategoryWebSocket,
			"Unknown message type.",
			"unknown message type %q", msg.Type,
		).WithSubcategory(grapherr.SubcategoryWSMessage))
	}
}

// handleControls applies one interaction and sends the resulting payload
func (c *Client) handleControls(msg *ClientMessage) {
	if msg.Controls == nil {
		c.sendError(grapherr.Newf(grapherr.CategoryWebSocket,
			"The update carried no control values.",
			"controls message without controls",
		).WithSubcategory(grapherr.SubcategoryWSMessage))
		return
	}
	if msg.Trigger != "" && !dashboard.KnownControl(msg.Trigger) {
		c.sendError(grapherr.Newf(grapherr.CategoryWebSocket,
			"Unknown control "+msg.Trigger+".",
			"unknown trigger %q", msg.Trigger,
		).WithSubcategory(grapherr.SubcategoryWSMessage))
		return
	}

	verbosity := int(c.server.verbosity.Load())
	if logger.ShouldOutput(verbosity, logger.OutputControls) {
		c.server.logger.Debugw("Controls received",
			logger.FieldClientID, c.id,
			logger.FieldTrigger, msg.Trigger,
			"controls", *msg.Controls,
		)
	}

	ctx := logger.WithRequestID(c.server.ctx, c.id+"/"+msg.Trigger)
	payload, err := c.session.Apply(ctx, *msg.Controls, msg.Trigger)
	if err != nil {
		c.sendError(grapherr.New(grapherr.CategoryWebSocket, err, err.Error()).
			WithSubcategory(grapherr.SubcategoryWSMessage))
		return
	}
	c.sendGraph(payload)
}

// sendGraph queues a render payload
func (c *Client) sendGraph(payload dashboard.Payload) {
	if logger.ShouldOutput(int(c.server.verbosity.Load()), logger.OutputPayloads) {
		c.server.logger.Debugw("Sending graph",
			logger.FieldClientID, c.id,
			logger.FieldNodes, payload.Stats.Nodes,
			logger.FieldEdges, payload.Stats.Edges,
			logger.FieldHidden, payload.Stats.HiddenNodes,
			"notices", len(payload.Notices),
		)
	}
	c.sendJSON(MsgGraph, GraphMessage{Type: MsgGraph, Data: payload})
}

// sendError queues an error message built from a GraphError
func (c *Client) sendError(e *grapherr.GraphError) {
	c.server.logger.Debugw("Rejected client message",
		append(e.ToLogFields(), logger.FieldClientID, c.id)...,
	)
	c.sendJSON(MsgError, ErrorMessage{
		Type:     MsgError,
		Message:  e.ToUIMessage(),
		Category: string(e.Category),
	})
}

// sendJSON encodes v and queues it without blocking. A full queue drops the message.
func (c *Client) sendJSON(msgType string, v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		c.server.logger.Errorw("Failed to encode message",
			logger.FieldClientID, c.id,
			"type", msgType,
			logger.FieldError, err,
		)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		c.server.metrics.RecordMessage("out", msgType)
		return true
	default:
		c.server.logger.Warnw("Client send channel full, dropping message",
			logger.FieldClientID, c.id,
			"type", msgType,
		)
		return false
	}
}

// writePump writes queued messages and keepalive pings to the connection
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.pingPeriod())
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return

		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				graphErr := grapherr.New(
					grapherr.CategoryWebSocket,
					err,
					"Failed to send update to client",
				).WithSubcategory(grapherr.SubcategoryWSWrite)

				c.server.logger.Warnw("Websocket write error",
					append(graphErr.ToLogFields(), logger.FieldClientID, c.id)...,
				)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close closes the send queue once
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
