package janus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ErrSessionClosed fails every request pending on a connection that is gone.
var ErrSessionClosed = errors.New("janus: session closed")

const sendBuffer = 32

type Options struct {
	// APISecret is attached to every frame when the gateway requires one.
	APISecret string
	// KeepAlive is the interval of session keepalives. Default 25s.
	KeepAlive time.Duration
	// WriteTimeout bounds a single websocket write. Default 5s.
	WriteTimeout time.Duration
}

// Session is one established gateway connection with its gateway-side
// session object. It demultiplexes inbound frames to attached handles and
// keeps the session alive.
type Session struct {
	id   uint64
	conn *websocket.Conn
	opts Options

	// session-scope transactions: create, attach
	txs *TransactionTable

	mu      sync.RWMutex
	handles map[uint64]*Handle

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// Connect dials the gateway websocket endpoint and establishes a session.
func Connect(ctx context.Context, url string, opts Options) (*Session, error) {
	if opts.KeepAlive <= 0 {
		opts.KeepAlive = 25 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	dialer := websocket.Dialer{Subprotocols: []string{"janus-protocol"}}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("janus: dial %s: %w", url, err)
	}

	s := &Session{
		conn:    conn,
		opts:    opts,
		txs:     NewTransactionTable(),
		handles: make(map[uint64]*Handle),
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}
	go s.writePump()
	go s.readPump()

	msg, err := s.roundTrip(ctx, &request{Janus: "create", APISecret: opts.APISecret})
	if err != nil {
		s.teardown()
		return nil, err
	}
	var data struct {
		ID uint64 `json:"id"`
	}
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.ID == 0 {
		s.teardown()
		return nil, fmt.Errorf("janus: malformed create reply")
	}
	s.id = data.ID
	go s.keepalive()

	log.Info().Str("module", "janus.session").Uint64("session", s.id).Str("url", url).Msg("session established")
	return s, nil
}

// ID returns the gateway-assigned session identifier.
func (s *Session) ID() uint64 { return s.id }

// Attach creates a gateway-side plugin handle on this session. Register a
// MessageHandler on the returned handle to receive its plugin traffic.
func (s *Session) Attach(ctx context.Context, plugin string) (*Handle, error) {
	msg, err := s.roundTrip(ctx, &request{
		Janus:     "attach",
		SessionID: s.id,
		Plugin:    plugin,
		APISecret: s.opts.APISecret,
	})
	if err != nil {
		return nil, err
	}
	var data struct {
		ID uint64 `json:"id"`
	}
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.ID == 0 {
		return nil, fmt.Errorf("janus: malformed attach reply")
	}

	h := &Handle{ID: data.ID, session: s, txs: NewTransactionTable()}
	s.mu.Lock()
	s.handles[data.ID] = h
	s.mu.Unlock()

	log.Info().Str("module", "janus.session").Uint64("session", s.id).Uint64("handle", h.ID).Str("plugin", plugin).Msg("handle attached")
	return h, nil
}

// Close destroys the gateway session and fails everything still pending.
func (s *Session) Close() error {
	// Best effort: the gateway also reaps sessions on keepalive timeout.
	_ = s.sendFrame(&request{
		Janus:       "destroy",
		Transaction: uuid.NewString(),
		SessionID:   s.id,
		APISecret:   s.opts.APISecret,
	})
	s.teardown()
	return nil
}

// roundTrip issues one session-scope request and waits for its terminal
// frame.
func (s *Session) roundTrip(ctx context.Context, req *request) (*Message, error) {
	req.Transaction = uuid.NewString()
	ch := s.txs.Open(req.Transaction)
	if err := s.sendFrame(req); err != nil {
		s.txs.Abort(req.Transaction)
		return nil, err
	}
	v, err := s.await(ctx, s.txs, req.Transaction, ch)
	if err != nil {
		return nil, err
	}
	msg, ok := v.(*Message)
	if !ok {
		return nil, fmt.Errorf("janus: transaction %s resolved with unexpected payload", req.Transaction)
	}
	return msg, nil
}

// await suspends until the transaction resolves, the caller gives up, or
// the session dies. Abandonment drops the table entry so a late reply is
// treated as unsolicited.
func (s *Session) await(ctx context.Context, txs *TransactionTable, id string, ch <-chan Result) (any, error) {
	select {
	case r := <-ch:
		return r.Value, r.Err
	case <-ctx.Done():
		txs.Abort(id)
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrSessionClosed
	}
}

func (s *Session) sendFrame(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("janus: marshal frame: %w", err)
	}
	select {
	case s.send <- b:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

func (s *Session) writePump() {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "janus.session").Msg("writePump set deadline")
				s.teardown()
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "janus.session").Msg("writePump write error")
				s.teardown()
				return
			}
		}
	}
}

func (s *Session) readPump() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				log.Error().Err(err).Str("module", "janus.session").Msg("readPump read error")
			}
			s.teardown()
			return
		}
		s.dispatch(data)
	}
}

func (s *Session) keepalive() {
	t := time.NewTicker(s.opts.KeepAlive)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-t.C:
			req := &request{
				Janus:       "keepalive",
				Transaction: uuid.NewString(),
				SessionID:   s.id,
				APISecret:   s.opts.APISecret,
			}
			if err := s.sendFrame(req); err != nil {
				return
			}
		}
	}
}

// dispatch routes one inbound frame: frames carrying a sender go to that
// handle, the rest are session-scope.
func (s *Session) dispatch(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn().Err(err).Str("module", "janus.session").Msg("undecodable frame")
		return
	}
	messagesReceived.WithLabelValues(msg.Janus).Inc()

	if msg.Sender != 0 {
		s.mu.RLock()
		h := s.handles[msg.Sender]
		s.mu.RUnlock()
		if h == nil {
			log.Debug().Str("module", "janus.session").Uint64("sender", msg.Sender).Msg("frame for unknown handle")
			return
		}
		h.deliver(&msg)
		return
	}
	s.deliverSession(&msg)
}

func (s *Session) deliverSession(msg *Message) {
	if msg.Janus == "ack" {
		// keepalive acknowledgment
		return
	}
	if msg.Transaction != "" && s.txs.Owns(msg.Transaction) {
		if msg.Janus == "error" {
			var err error = msg.Error
			if msg.Error == nil {
				err = fmt.Errorf("janus: error frame without payload")
			}
			s.txs.CloseWithError(msg.Transaction, err)
			return
		}
		s.txs.CloseWithSuccess(msg.Transaction, msg)
		return
	}
	switch msg.Janus {
	case "timeout":
		log.Warn().Str("module", "janus.session").Uint64("session", msg.SessionID).Msg("session timed out by gateway")
	default:
		log.Debug().Str("module", "janus.session").Str("type", msg.Janus).Msg("unhandled session frame")
	}
}

func (s *Session) removeHandle(id uint64) {
	s.mu.Lock()
	delete(s.handles, id)
	s.mu.Unlock()
}

func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
		s.txs.FailAll(ErrSessionClosed)
		s.mu.RLock()
		for _, h := range s.handles {
			h.txs.FailAll(ErrSessionClosed)
		}
		s.mu.RUnlock()
		log.Info().Str("module", "janus.session").Uint64("session", s.id).Msg("session closed")
	})
}
