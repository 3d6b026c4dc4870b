package janus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// ErrHandleDetached fails requests pending on a handle that was detached.
var ErrHandleDetached = errors.New("janus: handle detached")

// MessageHandler is the plugin layer attached to a handle. HandleMessage
// inspects one inbound frame addressed to the handle and reports whether
// the plugin layer recognized it.
type MessageHandler interface {
	HandleMessage(msg *Message) bool
}

// Handle is one gateway-side plugin handle multiplexed over a session.
type Handle struct {
	ID      uint64
	session *Session

	// handle-scope transactions: plugin requests issued through Request
	txs *TransactionTable

	mu      sync.RWMutex
	handler MessageHandler
}

// SetHandler registers the plugin layer receiving this handle's traffic.
func (h *Handle) SetHandler(mh MessageHandler) {
	h.mu.Lock()
	h.handler = mh
	h.mu.Unlock()
}

// Transactions exposes the handle's transaction table to the plugin layer,
// which closes transactions as it classifies replies.
func (h *Handle) Transactions() *TransactionTable { return h.txs }

// Request sends one plugin message and suspends until its transaction
// resolves. The resolved value is whatever the closer attached: the plugin
// layer's normalized event, or the raw terminal Message when no plugin
// layer claimed the reply.
func (h *Handle) Request(ctx context.Context, body any, jsep *webrtc.SessionDescription) (any, error) {
	req := &request{
		Janus:       "message",
		Transaction: uuid.NewString(),
		SessionID:   h.session.id,
		HandleID:    h.ID,
		Body:        body,
		Jsep:        jsep,
		APISecret:   h.session.opts.APISecret,
	}
	ch := h.txs.Open(req.Transaction)
	if err := h.session.sendFrame(req); err != nil {
		h.txs.Abort(req.Transaction)
		return nil, err
	}
	return h.session.await(ctx, h.txs, req.Transaction, ch)
}

// Trickle relays one local ICE candidate. The gateway only acknowledges
// trickles, so no transaction is opened.
func (h *Handle) Trickle(c webrtc.ICECandidateInit) error {
	return h.sendHandleFrame("trickle", c)
}

// TrickleComplete signals the end of local candidate gathering.
func (h *Handle) TrickleComplete() error {
	return h.sendHandleFrame("trickle", map[string]bool{"completed": true})
}

// Hangup tears down the handle's peer connection at the gateway. Fire and
// forget: the acknowledgment is not awaited.
func (h *Handle) Hangup(_ context.Context) error {
	return h.sendHandleFrame("hangup", nil)
}

// Detach releases the handle at the gateway and stops delivery to it.
// Requests still pending on the handle fail.
func (h *Handle) Detach(_ context.Context) error {
	h.session.removeHandle(h.ID)
	h.txs.FailAll(ErrHandleDetached)
	return h.sendHandleFrame("detach", nil)
}

func (h *Handle) sendHandleFrame(kind string, candidate any) error {
	return h.session.sendFrame(&request{
		Janus:       kind,
		Transaction: uuid.NewString(),
		SessionID:   h.session.id,
		HandleID:    h.ID,
		Candidate:   candidate,
		APISecret:   h.session.opts.APISecret,
	})
}

func (h *Handle) currentHandler() MessageHandler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.handler
}

// deliver applies the gateway's per-frame semantics before and after giving
// the plugin layer a chance to claim the frame.
func (h *Handle) deliver(msg *Message) {
	switch msg.Janus {
	case "ack":
		// async request acknowledged; the transaction stays open until its
		// terminal event arrives
		return
	case "error":
		if msg.Transaction != "" && h.txs.Owns(msg.Transaction) {
			var err error = msg.Error
			if msg.Error == nil {
				err = fmt.Errorf("janus: error frame without payload")
			}
			h.txs.CloseWithError(msg.Transaction, err)
			return
		}
		log.Warn().Str("module", "janus.handle").Uint64("handle", h.ID).Msg("unsolicited error frame")
		return
	}

	if mh := h.currentHandler(); mh != nil && msg.Plugindata != nil {
		if mh.HandleMessage(msg) {
			return
		}
	}

	if msg.Transaction != "" && h.txs.Owns(msg.Transaction) {
		h.txs.CloseWithSuccess(msg.Transaction, msg)
		return
	}

	switch msg.Janus {
	case "webrtcup", "media", "slowlink", "hangup", "detached":
		log.Debug().Str("module", "janus.handle").Uint64("handle", h.ID).Str("type", msg.Janus).Msg("core notification")
	default:
		log.Debug().Str("module", "janus.handle").Uint64("handle", h.ID).Str("type", msg.Janus).Msg("unhandled frame")
	}
}
