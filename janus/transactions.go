package janus

import (
	"sync"
)

// Result is the terminal outcome of one transaction: a value on success or
// an error, never both.
type Result struct {
	Value any
	Err   error
}

// TransactionTable maps an in-flight transaction id to the caller awaiting
// it. Every transaction resolves exactly once: a close removes the entry
// before delivering, so a duplicate close on the same id finds nothing and
// is a no-op.
type TransactionTable struct {
	mu      sync.Mutex
	pending map[string]chan Result
}

func NewTransactionTable() *TransactionTable {
	return &TransactionTable{pending: make(map[string]chan Result)}
}

// Open registers a transaction and returns the channel its single Result
// will arrive on.
func (t *TransactionTable) Open(id string) <-chan Result {
	ch := make(chan Result, 1)
	t.mu.Lock()
	t.pending[id] = ch
	t.mu.Unlock()
	transactionsOpened.Inc()
	return ch
}

// Owns reports whether the id belongs to a still-pending transaction.
func (t *TransactionTable) Owns(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[id]
	return ok
}

// CloseWithSuccess resolves a pending transaction with a value.
func (t *TransactionTable) CloseWithSuccess(id string, value any) {
	if t.resolve(id, Result{Value: value}) {
		transactionsClosed.WithLabelValues("success").Inc()
	}
}

// CloseWithError resolves a pending transaction with an error.
func (t *TransactionTable) CloseWithError(id string, err error) {
	if t.resolve(id, Result{Err: err}) {
		transactionsClosed.WithLabelValues("error").Inc()
	}
}

// Abort drops a pending transaction without resolving it, when the caller
// gave up before a reply arrived. A late reply will then look unowned.
func (t *TransactionTable) Abort(id string) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
	transactionsClosed.WithLabelValues("aborted").Inc()
}

// FailAll resolves every pending transaction with err. Used when the
// underlying connection is gone.
func (t *TransactionTable) FailAll(err error) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[string]chan Result)
	t.mu.Unlock()
	for range pending {
		transactionsClosed.WithLabelValues("error").Inc()
	}
	for _, ch := range pending {
		ch <- Result{Err: err}
	}
}

func (t *TransactionTable) resolve(id string, r Result) bool {
	t.mu.Lock()
	ch, ok := t.pending[id]
	delete(t.pending, id)
	t.mu.Unlock()
	if !ok {
		return false
	}
	ch <- r // buffered, never blocks
	return true
}
