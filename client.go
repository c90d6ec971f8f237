// Client lifecycle and the node-protocol operation surface: creation of
// primary and attached engine handles, sync and async property/command
// calls, property observation, and the two destroy paths.

package mpv

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"
	"unsafe"

	"go.uber.org/zap"
)

// Client is one handle on an engine instance: either the primary handle
// created by New, or a secondary client attached via NewClient. Each
// Client owns its reply registry, its name cache and its callback slots;
// nothing is shared process-wide.
type Client struct {
	handle  atomic.Uintptr
	primary bool
	closed  atomic.Bool

	log    *zap.Logger
	reg    *replyRegistry
	names  *nameCache
	wakeup callbackSlot

	gl atomic.Pointer[OpenGLCB]
}

// Option configures client creation.
type Option func(*clientConfig)

type clientConfig struct {
	log     *zap.Logger
	options [][2]string
}

// WithLogger sets the logger for diagnostics (callback panics, dropped
// triggers, swallowed option failures). Defaults to the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.log = l }
}

// WithOption applies one engine option before initialization, by name
// and string value (e.g. "vo", "null"). Options are applied best-effort:
// an invalid name or value is logged and swallowed, matching bulk
// configuration semantics where partial application is acceptable.
func WithOption(name, value string) Option {
	return func(c *clientConfig) { c.options = append(c.options, [2]string{name, value}) }
}

// New creates and initializes a fresh primary engine instance.
// On failure no handle is exposed and no partial state needs cleanup.
func New(opts ...Option) (*Client, error) {
	if err := loadLibMPV(); err != nil {
		return nil, err
	}
	cfg := &clientConfig{log: Logger()}
	for _, opt := range opts {
		opt(cfg)
	}

	h := mpvCreate()
	if h == 0 {
		return nil, fmt.Errorf("mpv: creating engine instance failed")
	}
	for _, kv := range cfg.options {
		if status := mpvSetOptionString(h, kv[0], kv[1]); status < 0 {
			cfg.log.Warn("initial option not applied",
				zap.String("option", kv[0]),
				zap.String("value", kv[1]),
				zap.Error(newError(status)))
		}
	}
	if err := newError(mpvInitialize(h)); err != nil {
		mpvTerminateDestroy(h)
		return nil, err
	}

	c := newClient(h, true, cfg.log)
	c.names.seed(c)
	return c, nil
}

// NewClient attaches a secondary client to this client's engine
// instance. The new client has its own event queue, reply registry and
// callback slots; Detach releases it without terminating the shared
// engine.
func (c *Client) NewClient(name string) (*Client, error) {
	h, err := c.hand()
	if err != nil {
		return nil, err
	}
	ch := mpvCreateClient(h, name)
	if ch == 0 {
		return nil, fmt.Errorf("mpv: creating client %q failed", name)
	}
	nc := newClient(ch, false, c.log)
	nc.names.seed(nc)
	return nc, nil
}

func newClient(h uintptr, primary bool, log *zap.Logger) *Client {
	c := &Client{
		primary: primary,
		log:     log,
		reg:     newReplyRegistry(),
		names:   newNameCache(),
	}
	c.handle.Store(h)
	return c
}

// hand returns the native handle, failing fast once the client has been
// destroyed.
func (c *Client) hand() (uintptr, error) {
	h := c.handle.Load()
	if h == 0 {
		return 0, ErrClientClosed
	}
	return h, nil
}

// Name returns the client name the engine assigned to this handle.
func (c *Client) Name() string {
	h, err := c.hand()
	if err != nil {
		return ""
	}
	return goStringFromPtr(mpvClientName(h))
}

// TimeUS returns the engine's internal monotonic time in microseconds.
func (c *Client) TimeUS() (int64, error) {
	h, err := c.hand()
	if err != nil {
		return 0, err
	}
	return mpvGetTimeUS(h), nil
}

// Wakeup interrupts a concurrent WaitEvent, making it return an
// EventNone event.
func (c *Client) Wakeup() error {
	h, err := c.hand()
	if err != nil {
		return err
	}
	mpvWakeup(h)
	return nil
}

// Detach releases this client handle. For a secondary client the shared
// engine instance keeps running; for the primary handle prefer Shutdown.
// Idempotent.
func (c *Client) Detach() error {
	return c.destroy(false)
}

// Shutdown terminates and destroys the engine instance along with all
// its clients. Idempotent.
func (c *Client) Shutdown() error {
	return c.destroy(true)
}

// Close implements io.Closer: Shutdown for a primary handle, Detach for
// a secondary client.
func (c *Client) Close() error {
	return c.destroy(c.primary)
}

// destroy sequences teardown: stop and join callback delivery first (a
// deferred worker may capture references into this client and must not
// run once teardown begins), drop the registry, null the handle so later
// operations fail fast, then release the native handle.
func (c *Client) destroy(terminate bool) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	h := c.handle.Load()
	if h != 0 {
		mpvSetWakeupCallback(h, 0, 0)
	}
	c.wakeup.clear()
	if gl := c.gl.Swap(nil); gl != nil {
		gl.update.clear()
	}
	c.reg.clear()
	c.handle.Store(0)
	if h != 0 {
		if terminate {
			mpvTerminateDestroy(h)
		} else {
			mpvDestroy(h)
		}
	}
	return nil
}

// Command runs a command synchronously, with the name and arguments
// encoded as a node array, and returns the decoded result node.
//
//	val, err := c.Command("get_property", "volume")
func (c *Client) Command(args ...any) (any, error) {
	h, err := c.hand()
	if err != nil {
		return nil, err
	}
	root, a, err := encodeToNode(sliceAny(args))
	defer a.free()
	if err != nil {
		return nil, err
	}
	var result mpvNode
	status := mpvCommandNode(h, uintptr(unsafe.Pointer(root)), uintptr(unsafe.Pointer(&result)))
	runtime.KeepAlive(a)
	if err := newError(status); err != nil {
		return nil, err
	}
	defer mpvFreeNodeContents(uintptr(unsafe.Pointer(&result)))
	return decodeNode(&result), nil
}

// CommandAsync runs a command asynchronously. payload is registered
// under the returned token and delivered as ReplyUserdata on the
// matching command-reply event, which consumes the registration.
func (c *Client) CommandAsync(payload any, args ...any) (uint64, error) {
	h, err := c.hand()
	if err != nil {
		return 0, err
	}
	root, a, err := encodeToNode(sliceAny(args))
	defer a.free()
	if err != nil {
		return 0, err
	}
	token := c.reg.nextToken()
	c.reg.register(token, payload)
	status := mpvCommandNodeAsync(h, token, uintptr(unsafe.Pointer(root)))
	runtime.KeepAlive(a)
	if err := newError(status); err != nil {
		_ = c.reg.decrement(token)
		return 0, err
	}
	return token, nil
}

// GetProperty reads a property synchronously in node format.
func (c *Client) GetProperty(name string) (any, error) {
	h, err := c.hand()
	if err != nil {
		return nil, err
	}
	var out mpvNode
	status := mpvGetProperty(h, c.names.resolve(name), int32(FormatNode), uintptr(unsafe.Pointer(&out)))
	if err := newError(status); err != nil {
		return nil, err
	}
	defer mpvFreeNodeContents(uintptr(unsafe.Pointer(&out)))
	return decodeNode(&out), nil
}

// SetProperty writes a property synchronously, encoding value in node
// format.
func (c *Client) SetProperty(name string, value any) error {
	h, err := c.hand()
	if err != nil {
		return err
	}
	root, a, err := encodeToNode(value)
	defer a.free()
	if err != nil {
		return err
	}
	status := mpvSetProperty(h, c.names.resolve(name), int32(FormatNode), uintptr(unsafe.Pointer(root)))
	runtime.KeepAlive(a)
	return newError(status)
}

// GetPropertyAsync requests a property read; the result arrives as a
// get-property-reply event carrying the returned token and payload. The
// reply consumes the registration.
func (c *Client) GetPropertyAsync(name string, payload any) (uint64, error) {
	h, err := c.hand()
	if err != nil {
		return 0, err
	}
	token := c.reg.nextToken()
	c.reg.register(token, payload)
	status := mpvGetPropertyAsync(h, token, c.names.resolve(name), int32(FormatNode))
	if err := newError(status); err != nil {
		_ = c.reg.decrement(token)
		return 0, err
	}
	return token, nil
}

// SetPropertyAsync requests a property write; completion arrives as a
// set-property-reply event carrying the returned token and payload.
func (c *Client) SetPropertyAsync(name string, value, payload any) (uint64, error) {
	h, err := c.hand()
	if err != nil {
		return 0, err
	}
	root, a, err := encodeToNode(value)
	defer a.free()
	if err != nil {
		return 0, err
	}
	token := c.reg.nextToken()
	c.reg.register(token, payload)
	status := mpvSetPropertyAsync(h, token, c.names.resolve(name), int32(FormatNode), uintptr(unsafe.Pointer(root)))
	runtime.KeepAlive(a)
	if err := newError(status); err != nil {
		_ = c.reg.decrement(token)
		return 0, err
	}
	return token, nil
}

// ObserveProperty registers a persistent observer for name. Every later
// change is delivered as a property-change event carrying the returned
// token and payload; the registration persists across any number of
// change events until UnobserveProperty.
func (c *Client) ObserveProperty(name string, payload any) (uint64, error) {
	h, err := c.hand()
	if err != nil {
		return 0, err
	}
	token := c.reg.nextToken()
	if err := c.reg.observe(token, payload); err != nil {
		return 0, err
	}
	status := mpvObserveProperty(h, token, c.names.resolve(name), int32(FormatNode))
	if err := newError(status); err != nil {
		_ = c.reg.decrement(token)
		return 0, err
	}
	return token, nil
}

// UnobserveProperty cancels the observer registered under token and
// removes its registry record. Change events already queued may still be
// delivered; their tokens then resolve to nothing, which is tolerated.
func (c *Client) UnobserveProperty(token uint64) error {
	h, err := c.hand()
	if err != nil {
		return err
	}
	if err := c.reg.decrement(token); err != nil {
		return err
	}
	return newError(mpvUnobserveProperty(h, token))
}

// WaitShutdown drains events until the engine announces shutdown or the
// timeout elapses. Convenience for teardown sequencing in frontends.
func (c *Client) WaitShutdown(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		remain := time.Until(deadline)
		if timeout < 0 {
			remain = -1
		} else if remain <= 0 {
			return fmt.Errorf("mpv: no shutdown event within %v", timeout)
		}
		ev, err := c.WaitEvent(remain)
		if err != nil {
			return err
		}
		if ev.Kind == EventShutdown {
			return nil
		}
	}
}

func sliceAny(args []any) []any {
	if args == nil {
		return []any{}
	}
	return args
}
