// Event dispatch: dequeuing engine events, decoding their kind-specific
// payloads and resolving reply tokens against the registry.

package mpv

import (
	"time"
	"unsafe"
)

// mpvEvent mirrors the C mpv_event struct.
type mpvEvent struct {
	id    int32
	err   int32
	token uint64
	data  uintptr
}

// mpvEventProperty mirrors the C mpv_event_property struct.
type mpvEventProperty struct {
	name   uintptr
	format int32
	_      int32
	data   uintptr
}

// mpvEventLogMessage mirrors the C mpv_event_log_message struct.
type mpvEventLogMessage struct {
	prefix uintptr
	level  uintptr
	text   uintptr
}

// mpvEventEndFile mirrors the leading fields of the C mpv_event_end_file
// struct. Later libmpv versions append playlist fields; only the stable
// prefix is read.
type mpvEventEndFile struct {
	reason int32
	err    int32
}

// mpvEventClientMessage mirrors the C mpv_event_client_message struct.
type mpvEventClientMessage struct {
	numArgs int32
	_       int32
	args    uintptr // char**
}

// mpvEventCommand mirrors the C mpv_event_command struct.
type mpvEventCommand struct {
	result mpvNode
}

// Event is one dequeued engine event. Immutable after construction; all
// payloads are copies owned by the host.
type Event struct {
	Kind EventKind

	// Err is the engine status attached to the event, nil on success.
	Err error

	// ReplyToken correlates the event with an async request or observer
	// registration; 0 when the event carries no correlation.
	ReplyToken uint64

	// ReplyUserdata is the payload registered under ReplyToken, if the
	// token resolved against the registry. An unresolved token (already
	// removed, or never registered) leaves this nil; that is not an
	// error.
	ReplyUserdata any

	// Data holds the kind-specific payload: *PropertyEvent,
	// *LogMessageEvent, *EndFileEvent, *ClientMessageEvent, a decoded
	// command result, or nil.
	Data any
}

// PropertyEvent is the payload of property-reply and property-change
// events.
type PropertyEvent struct {
	Name   string
	Format Format
	Value  any
}

// LogMessageEvent is the payload of log-message events.
type LogMessageEvent struct {
	Prefix string
	Level  string
	Text   string
}

// EndFileEvent is the payload of end-file events.
type EndFileEvent struct {
	Reason EndFileReason
	Err    error
}

// ClientMessageEvent is the payload of client-message events.
type ClientMessageEvent struct {
	Args []string
}

// WaitEvent blocks until the next event arrives on this client's queue
// and returns it decoded and correlated.
//
// Timeout semantics: negative blocks indefinitely, zero polls without
// blocking (returning an EventNone event if the queue is empty), positive
// blocks up to that duration.
//
// The engine forbids concurrent waiters on one client: at most one
// goroutine may be inside WaitEvent per client at any time. This is a
// caller obligation and is not enforced here.
func (c *Client) WaitEvent(timeout time.Duration) (*Event, error) {
	h, err := c.hand()
	if err != nil {
		return nil, err
	}
	secs := timeout.Seconds()
	if timeout < 0 {
		secs = -1
	}
	raw := mpvWaitEvent(h, secs)
	if raw == 0 {
		return &Event{Kind: EventNone}, nil
	}
	return resolveEvent(c.reg, (*mpvEvent)(unsafe.Pointer(raw))), nil
}

// resolveEvent decodes one raw engine event and resolves its reply token.
// The raw event and everything it points to is engine-owned and only
// valid until the next wait; every payload is copied out here.
func resolveEvent(reg *replyRegistry, raw *mpvEvent) *Event {
	ev := &Event{
		Kind:       EventKind(raw.id),
		Err:        newError(raw.err),
		ReplyToken: raw.token,
		Data:       decodeEventData(EventKind(raw.id), raw.data),
	}
	if ev.ReplyToken != 0 {
		if payload, ok := reg.lookup(ev.ReplyToken); ok {
			ev.ReplyUserdata = payload
			if ev.Kind.oneShot() {
				// Delivery consumes the one-shot registration. The record
				// can already be gone if bookkeeping was dropped locally;
				// that is tolerated.
				_ = reg.decrement(ev.ReplyToken)
			}
		}
	}
	return ev
}

func decodeEventData(kind EventKind, data uintptr) any {
	if data == 0 {
		return nil
	}
	switch kind {
	case EventGetPropertyReply, EventPropertyChange:
		p := (*mpvEventProperty)(unsafe.Pointer(data))
		return &PropertyEvent{
			Name:   goStringFromPtr(p.name),
			Format: Format(p.format),
			Value:  decodeData(Format(p.format), p.data),
		}
	case EventLogMessage:
		m := (*mpvEventLogMessage)(unsafe.Pointer(data))
		return &LogMessageEvent{
			Prefix: goStringFromPtr(m.prefix),
			Level:  goStringFromPtr(m.level),
			Text:   goStringFromPtr(m.text),
		}
	case EventEndFile:
		e := (*mpvEventEndFile)(unsafe.Pointer(data))
		return &EndFileEvent{
			Reason: EndFileReason(e.reason),
			Err:    newError(e.err),
		}
	case EventClientMessage:
		m := (*mpvEventClientMessage)(unsafe.Pointer(data))
		return &ClientMessageEvent{
			Args: goStringsFromArgv(m.args, int(m.numArgs)),
		}
	case EventCommandReply:
		cmd := (*mpvEventCommand)(unsafe.Pointer(data))
		return decodeNode(&cmd.result)
	default:
		return nil
	}
}

// RequestEvent enables or disables delivery of the given event kind on
// this client's queue.
func (c *Client) RequestEvent(kind EventKind, enable bool) error {
	h, err := c.hand()
	if err != nil {
		return err
	}
	var flag int32
	if enable {
		flag = 1
	}
	return newError(mpvRequestEvent(h, int32(kind), flag))
}

// RequestLogMessages enables log-message events at the given minimum
// level (see the LogLevel constants).
func (c *Client) RequestLogMessages(minLevel string) error {
	h, err := c.hand()
	if err != nil {
		return err
	}
	return newError(mpvRequestLogMessages(h, minLevel))
}
