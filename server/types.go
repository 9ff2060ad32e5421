package server

import (
	"time"

	"github.com/teranos/graphscope/dashboard"
	"github.com/teranos/graphscope/graph"
)

const (
	// MaxClientMessageQueueSize is the size of per-client message queues
	MaxClientMessageQueueSize = 64
	// ShutdownTimeout bounds Stop when the caller's context has no deadline
	ShutdownTimeout = 10 * time.Second
)

// ServerState represents the server lifecycle state
type ServerState int

const (
	ServerStateRunning  ServerState = iota // Normal operation
	ServerStateDraining                    // Graceful shutdown in progress
	ServerStateStopped                     // Shutdown complete
)

// Websocket message types
const (
	MsgControls = "controls" // client: apply dashboard controls
	MsgPing     = "ping"     // client: keepalive
	MsgInit     = "init"     // server: features, options and default controls
	MsgGraph    = "graph"    // server: render payload
	MsgOptions  = "options"  // server: renderer options changed
	MsgError    = "error"    // server: malformed or rejected message
)

// ClientMessage is a message sent by the browser
type ClientMessage struct {
	Type     string              `json:"type"`
	Controls *dashboard.Controls `json:"controls,omitempty"`
	Trigger  string              `json:"trigger,omitempty"`
}

// InitMessage is the first message of every session
type InitMessage struct {
	Type      string             `json:"type"`
	SessionID string             `json:"session_id"`
	Version   string             `json:"version"`
	Features  graph.Features     `json:"features"`
	Options   graph.Options      `json:"options"`
	Controls  dashboard.Controls `json:"controls"`
	BaseYear  int                `json:"base_year"`
}

// GraphMessage carries the payload of one interaction
type GraphMessage struct {
	Type string            `json:"type"`
	Data dashboard.Payload `json:"data"`
}

// OptionsMessage is broadcast when the renderer options file is reloaded
type OptionsMessage struct {
	Type    string        `json:"type"`
	Options graph.Options `json:"options"`
}

// ErrorMessage reports a message the server could not act on
type ErrorMessage struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Category string `json:"category,omitempty"`
}
