// Callback bridge: moves engine-thread callback invocations (wakeup and
// render-update notifications) onto host-controlled execution.
//
// The engine invokes registered native callbacks from its own internal
// thread, at arbitrary times, with no host context established. The
// bridge offers two delivery modes per registration: direct (the engine
// thread runs the callback synchronously) and deferred (a dedicated
// worker goroutine runs it off the engine's call stack).

package mpv

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// CallbackMode selects how a registered callback is delivered.
type CallbackMode int

const (
	// ModeDirect invokes the callback synchronously on the engine's own
	// thread, serialized by the bridge. The callback must be short and
	// must not re-enter blocking engine operations: the engine thread is
	// still inside its event-loop machinery.
	ModeDirect CallbackMode = iota

	// ModeDeferred enqueues a trigger for a dedicated worker goroutine,
	// decoupling callback latency from the engine's internal thread.
	ModeDeferred
)

func (m CallbackMode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// triggerQueueDepth bounds the deferred trigger queue. Wakeup-style
// callbacks are level triggers; overflow drops are harmless.
const triggerQueueDepth = 64

// callbackBridge is one active delivery path: a mutable callback slot
// plus, in deferred mode, a worker goroutine draining a trigger queue.
// The slot is re-read on every trigger, so the callback can be replaced
// without re-registering the native hook.
type callbackBridge struct {
	mode CallbackMode
	log  *zap.Logger

	mu    sync.Mutex // guards slot
	slot  func()
	runMu sync.Mutex // serializes direct-mode invocation

	triggers chan func() // deferred mode; nil func is the poison value
	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	dropped  atomic.Uint64
}

func newCallbackBridge(mode CallbackMode, fn func(), log *zap.Logger) *callbackBridge {
	b := &callbackBridge{mode: mode, slot: fn, log: log}
	if mode == ModeDeferred {
		b.triggers = make(chan func(), triggerQueueDepth)
		b.quit = make(chan struct{})
		b.wg.Add(1)
		go b.worker()
	}
	return b
}

// setCallback replaces the callback read by subsequent triggers.
func (b *callbackBridge) setCallback(fn func()) {
	b.mu.Lock()
	b.slot = fn
	b.mu.Unlock()
}

// trigger delivers one callback invocation. Called from the engine's
// internal thread; it must never block and never panic across the
// boundary.
func (b *callbackBridge) trigger() {
	b.mu.Lock()
	fn := b.slot
	b.mu.Unlock()
	if fn == nil {
		return
	}
	if b.mode == ModeDirect {
		// Serialized, but not under the slot lock: the callback may
		// replace itself.
		b.runMu.Lock()
		b.invoke(fn)
		b.runMu.Unlock()
		return
	}
	select {
	case b.triggers <- fn:
	default:
		b.dropped.Add(1)
		b.log.Debug("callback trigger dropped, queue full")
	}
}

// worker drains the trigger queue and invokes callbacks outside the
// engine's call stack, in enqueue order, until it receives the poison
// value or the quit signal.
func (b *callbackBridge) worker() {
	defer b.wg.Done()
	for {
		select {
		case fn := <-b.triggers:
			if fn == nil {
				return
			}
			b.invoke(fn)
		case <-b.quit:
			return
		}
	}
}

// invoke runs fn, containing any panic: nothing may propagate back into
// an engine-owned call stack.
func (b *callbackBridge) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("panic in engine callback", zap.Any("panic", r))
		}
	}()
	fn()
}

// stop shuts the delivery path down. Idempotent, and safe to call from
// inside the callback itself: the poison is enqueued without blocking,
// falling back to the quit signal if the queue is full.
func (b *callbackBridge) stop() {
	b.stopOnce.Do(func() {
		b.setCallback(nil)
		if b.mode != ModeDeferred {
			return
		}
		select {
		case b.triggers <- nil:
		default:
			close(b.quit)
		}
	})
}

// join waits for the worker to exit. Must not be called from inside the
// callback; lifecycle teardown calls it after stop so that no callback
// can run once context destruction has begun.
func (b *callbackBridge) join() {
	if b.mode == ModeDeferred {
		b.wg.Wait()
	}
}

func (b *callbackBridge) stopAndJoin() {
	b.stop()
	b.join()
}

// callbackSlot ties one native hook registration (wakeup, render-update)
// to at most one active bridge. The native trampoline is created once and
// re-pointed at the current bridge, since purego callbacks are never
// released.
type callbackSlot struct {
	mu     sync.Mutex // serializes install/clear
	bridge atomic.Pointer[callbackBridge]

	trampOnce sync.Once
	tramp     uintptr
}

// trampoline returns the C-callable pointer for this slot, creating it
// on first use.
func (s *callbackSlot) trampoline() uintptr {
	s.trampOnce.Do(func() {
		s.tramp = newWakeupTrampoline(s.fire)
	})
	return s.tramp
}

// fire is the trampoline target, invoked on the engine's internal thread.
func (s *callbackSlot) fire() {
	if b := s.bridge.Load(); b != nil {
		b.trigger()
	}
}

// install replaces the slot's delivery path. The previous path is fully
// torn down (worker stopped and joined, callback cleared) before the new
// bridge becomes visible, so at most one path is ever active.
func (s *callbackSlot) install(b *callbackBridge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old := s.bridge.Swap(nil); old != nil {
		old.stopAndJoin()
	}
	if b != nil {
		s.bridge.Store(b)
	}
}

// clear tears down the active delivery path, if any.
func (s *callbackSlot) clear() {
	s.install(nil)
}

// SetWakeupCallback registers fn to be called whenever this client's
// event queue becomes non-empty, replacing any previous registration.
// The intended use is prompting some consumer to call WaitEvent; fn must
// not call WaitEvent itself in direct mode.
//
// A nil fn removes the registration and tears down its delivery path.
func (c *Client) SetWakeupCallback(mode CallbackMode, fn func()) error {
	h, err := c.hand()
	if err != nil {
		return err
	}
	if fn == nil {
		c.wakeup.clear()
		mpvSetWakeupCallback(h, 0, 0)
		return nil
	}
	c.wakeup.install(newCallbackBridge(mode, fn, c.log))
	mpvSetWakeupCallback(h, c.wakeup.trampoline(), 0)
	return nil
}

// ReplaceWakeupCallback swaps the delivered function on the active
// wakeup path without re-registering the native hook or disturbing the
// delivery mode. Returns ErrNoCallbackPath if no wakeup callback is
// registered.
func (c *Client) ReplaceWakeupCallback(fn func()) error {
	if _, err := c.hand(); err != nil {
		return err
	}
	b := c.wakeup.bridge.Load()
	if b == nil {
		return ErrNoCallbackPath
	}
	b.setCallback(fn)
	return nil
}
