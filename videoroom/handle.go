package videoroom

import (
	"context"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/telemeet/roomgw/janus"
)

// eventBuffer bounds the unsolicited-notification channel. A consumer that
// falls further behind loses events; losses are logged.
const eventBuffer = 64

// TransactionLedger is the transaction-ownership capability injected by the
// session layer. A transaction is resolved exactly once; closing an id the
// ledger does not own is a no-op. Implemented by janus.TransactionTable.
type TransactionLedger interface {
	Owns(id string) bool
	CloseWithSuccess(id string, value any)
	CloseWithError(id string, err error)
}

// Transactor sends one correlated plugin request and suspends the caller
// until the ledger resolves it. Implemented by janus.Handle.
type Transactor interface {
	Request(ctx context.Context, body any, jsep *webrtc.SessionDescription) (any, error)
	Hangup(ctx context.Context) error
}

// Handle is one logical videoroom participant: it classifies every inbound
// message addressed to it, keeps its room/feed identity, and exposes the
// request operations of the plugin.
type Handle struct {
	tr     Transactor
	ledger TransactionLedger

	mu   sync.RWMutex
	room ID
	feed ID

	events chan *Event
}

// Attach creates a videoroom handle on an established gateway session.
func Attach(ctx context.Context, sess *janus.Session) (*Handle, error) {
	jh, err := sess.Attach(ctx, PluginName)
	if err != nil {
		return nil, err
	}
	h := NewHandle(jh, jh.Transactions())
	jh.SetHandler(h)
	return h, nil
}

// NewHandle wires a plugin handle over an arbitrary transactor and ledger.
// Split from Attach so tests can inject fakes.
func NewHandle(tr Transactor, ledger TransactionLedger) *Handle {
	return &Handle{
		tr:     tr,
		ledger: ledger,
		events: make(chan *Event, eventBuffer),
	}
}

// Room returns the room this endpoint joined, zero until a join confirmed.
func (h *Handle) Room() ID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.room
}

// Feed returns the feed this endpoint publishes or subscribes to, zero
// until a join confirmed.
func (h *Handle) Feed() ID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.feed
}

func (h *Handle) setIdentity(room, feed ID) {
	h.mu.Lock()
	h.room = room
	h.feed = feed
	h.mu.Unlock()
}

// Events delivers unsolicited gateway notifications: everything classified
// from messages that did not answer an open transaction of this endpoint.
func (h *Handle) Events() <-chan *Event { return h.events }

// HandleMessage implements janus.MessageHandler. It classifies one inbound
// message and routes the outcome to exactly one sink: the transaction the
// message answers, or the notification channel. Ownership is evaluated once
// before classification and applied uniformly to whichever branch fired.
func (h *Handle) HandleMessage(msg *janus.Message) bool {
	owned := msg.Transaction != "" && h.ledger.Owns(msg.Transaction)
	evt := h.classify(msg)
	if evt == nil {
		return false
	}
	if evt.Name == EventError {
		if owned {
			h.ledger.CloseWithError(msg.Transaction, evt.Data.(*PluginError))
			return true
		}
		h.emit(evt)
		return true
	}
	if owned {
		h.ledger.CloseWithSuccess(msg.Transaction, evt)
		return true
	}
	h.emit(evt)
	return true
}

func (h *Handle) emit(evt *Event) {
	select {
	case h.events <- evt:
	default:
		log.Warn().
			Str("module", "videoroom.handle").
			Str("event", string(evt.Name)).
			Msg("notification dropped: slow consumer")
	}
}
