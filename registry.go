// Reply registry: per-client, token-keyed, reference-counted bookkeeping
// for in-flight async operations and persistent property observers.

package mpv

import (
	"sync"
	"sync/atomic"
)

// userDataRecord holds one opaque payload plus its reference count.
// A record exists if and only if its refcount is strictly positive.
type userDataRecord struct {
	payload  any
	refcount int
}

// replyRegistry maps reply tokens to user-data records. All methods are
// safe under concurrent access from the issuing goroutine, the event
// consumer, and deferred-callback workers.
type replyRegistry struct {
	mu      sync.Mutex
	records map[uint64]*userDataRecord
	next    atomic.Uint64
}

func newReplyRegistry() *replyRegistry {
	return &replyRegistry{records: make(map[uint64]*userDataRecord)}
}

// nextToken allocates a fresh correlation token, stable and unique for
// the registry's lifetime. Token 0 is never issued; the engine uses it
// for events with no correlation.
func (r *replyRegistry) nextToken() uint64 {
	return r.next.Add(1)
}

// register records payload under token for a one-shot operation: the
// record is created on first registration with refcount 0, then the
// refcount is incremented. The payload is set only when the record is
// created.
func (r *replyRegistry) register(token uint64, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[token]
	if !ok {
		rec = &userDataRecord{payload: payload}
		r.records[token] = rec
	}
	rec.refcount++
}

// observe records payload under token for a persistent observer.
// Observing a token that already has a record is a caller logic error.
func (r *replyRegistry) observe(token uint64, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[token]; ok {
		return ErrTokenInUse
	}
	r.records[token] = &userDataRecord{payload: payload, refcount: 1}
	return nil
}

// increment raises the refcount for token, creating the record if absent.
func (r *replyRegistry) increment(token uint64) {
	r.register(token, nil)
}

// decrement lowers the refcount for token and removes the record when it
// reaches 0. Decrementing an unregistered token is a caller logic error.
func (r *replyRegistry) decrement(token uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[token]
	if !ok {
		return ErrTokenNotRegistered
	}
	rec.refcount--
	if rec.refcount <= 0 {
		delete(r.records, token)
	}
	return nil
}

// lookup returns the payload for token without touching the refcount.
func (r *replyRegistry) lookup(token uint64) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[token]
	if !ok {
		return nil, false
	}
	return rec.payload, true
}

// contains reports whether a record exists for token.
func (r *replyRegistry) contains(token uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.records[token]
	return ok
}

// size returns the number of live records.
func (r *replyRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// clear drops every record. Used during context teardown.
func (r *replyRegistry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[uint64]*userDataRecord)
}
