// Package janus implements the gateway session layer: the websocket
// signaling transport, session and handle lifecycle, and the transaction
// table that correlates each request with its single terminal reply.
// Plugin semantics live above it (see the videoroom package).
package janus

import (
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"
)

// Message is one decoded frame from the gateway. Frames with a Sender are
// addressed to a plugin handle; frames without belong to the session.
type Message struct {
	Janus       string                     `json:"janus"`
	Transaction string                     `json:"transaction,omitempty"`
	SessionID   uint64                     `json:"session_id,omitempty"`
	Sender      uint64                     `json:"sender,omitempty"`
	Plugindata  *Plugindata                `json:"plugindata,omitempty"`
	Jsep        *webrtc.SessionDescription `json:"jsep,omitempty"`
	Error       *ServerError               `json:"error,omitempty"`
	Data        json.RawMessage            `json:"data,omitempty"`
}

// Plugindata carries a plugin's payload. Data stays raw here: plugin-layer
// code owns its decoding.
type Plugindata struct {
	Plugin string          `json:"plugin"`
	Data   json.RawMessage `json:"data"`
}

// ServerError is a gateway-core error frame payload.
type ServerError struct {
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("janus: gateway error %d: %s", e.Code, e.Reason)
}

// request is one outgoing frame.
type request struct {
	Janus       string                     `json:"janus"`
	Transaction string                     `json:"transaction"`
	SessionID   uint64                     `json:"session_id,omitempty"`
	HandleID    uint64                     `json:"handle_id,omitempty"`
	Plugin      string                     `json:"plugin,omitempty"`
	Body        any                        `json:"body,omitempty"`
	Jsep        *webrtc.SessionDescription `json:"jsep,omitempty"`
	Candidate   any                        `json:"candidate,omitempty"`
	APISecret   string                     `json:"apisecret,omitempty"`
}
