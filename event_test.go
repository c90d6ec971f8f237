package mpv

import (
	"errors"
	"reflect"
	"runtime"
	"testing"
	"unsafe"
)

// eventScratch builds engine-shaped event payloads in host memory for
// dispatcher tests. It reuses the encode arena so everything referenced
// from a raw event stays alive for the duration of the test.
type eventScratch struct {
	t *testing.T
	a *arena
}

func newEventScratch(t *testing.T) *eventScratch {
	s := &eventScratch{t: t, a: &arena{}}
	t.Cleanup(func() {
		runtime.KeepAlive(s.a)
		s.a.free()
	})
	return s
}

func (s *eventScratch) cstr(v string) uintptr {
	return s.a.cstring(v)
}

func (s *eventScratch) node(v any) *mpvNode {
	root := &mpvNode{}
	s.a.hold(root)
	if err := encodeNode(v, s.a, root); err != nil {
		s.t.Fatalf("building node payload: %v", err)
	}
	return root
}

func (s *eventScratch) hold(v any) uintptr {
	s.a.hold(v)
	return reflect.ValueOf(v).Pointer()
}

func TestResolveCommandReplyConsumesToken(t *testing.T) {
	s := newEventScratch(t)
	reg := newReplyRegistry()
	reg.register(42, "p")

	cmd := &mpvEventCommand{result: *s.node("done")}
	raw := &mpvEvent{
		id:    int32(EventCommandReply),
		token: 42,
		data:  s.hold(cmd),
	}

	ev := resolveEvent(reg, raw)
	if ev.Kind != EventCommandReply {
		t.Errorf("Kind = %v, want command-reply", ev.Kind)
	}
	if ev.Err != nil {
		t.Errorf("Err = %v, want nil", ev.Err)
	}
	if ev.ReplyUserdata != "p" {
		t.Errorf("ReplyUserdata = %v, want p", ev.ReplyUserdata)
	}
	if ev.Data != "done" {
		t.Errorf("Data = %v, want done", ev.Data)
	}
	if reg.contains(42) {
		t.Error("one-shot token still registered after delivery")
	}
}

func TestResolveSetPropertyReplyConsumesToken(t *testing.T) {
	reg := newReplyRegistry()
	reg.register(5, "done-marker")

	ev := resolveEvent(reg, &mpvEvent{id: int32(EventSetPropertyReply), token: 5})
	if ev.ReplyUserdata != "done-marker" {
		t.Errorf("ReplyUserdata = %v, want done-marker", ev.ReplyUserdata)
	}
	if reg.contains(5) {
		t.Error("one-shot token still registered after delivery")
	}
}

func TestResolvePropertyChangeKeepsObserver(t *testing.T) {
	s := newEventScratch(t)
	reg := newReplyRegistry()
	if err := reg.observe(9, "observer"); err != nil {
		t.Fatal(err)
	}

	prop := &mpvEventProperty{
		name:   s.cstr("volume"),
		format: int32(FormatNode),
		data:   s.hold(s.node(75.0)),
	}
	raw := &mpvEvent{id: int32(EventPropertyChange), token: 9, data: s.hold(prop)}

	for i := 0; i < 3; i++ {
		ev := resolveEvent(reg, raw)
		if ev.ReplyUserdata != "observer" {
			t.Fatalf("delivery %d: ReplyUserdata = %v, want observer", i, ev.ReplyUserdata)
		}
		pe, ok := ev.Data.(*PropertyEvent)
		if !ok {
			t.Fatalf("delivery %d: Data type = %T, want *PropertyEvent", i, ev.Data)
		}
		if pe.Name != "volume" || pe.Value != 75.0 {
			t.Fatalf("delivery %d: payload = %q/%v", i, pe.Name, pe.Value)
		}
		if !reg.contains(9) {
			t.Fatalf("observer removed after delivery %d", i)
		}
	}

	// Only an explicit unobserve removes the record.
	if err := reg.decrement(9); err != nil {
		t.Fatal(err)
	}
	if reg.contains(9) {
		t.Error("observer still registered after unobserve")
	}
}

func TestResolveUnregisteredTokenTolerated(t *testing.T) {
	reg := newReplyRegistry()
	ev := resolveEvent(reg, &mpvEvent{id: int32(EventCommandReply), token: 1234})
	if ev.ReplyUserdata != nil {
		t.Errorf("ReplyUserdata = %v, want nil for unresolved token", ev.ReplyUserdata)
	}
	if ev.Err != nil {
		t.Errorf("Err = %v, want nil", ev.Err)
	}
}

func TestResolveEventError(t *testing.T) {
	reg := newReplyRegistry()
	ev := resolveEvent(reg, &mpvEvent{id: int32(EventCommandReply), err: int32(ErrorCommand)})
	var e *Error
	if !errors.As(ev.Err, &e) || e.Code != ErrorCommand {
		t.Fatalf("Err = %v, want command error", ev.Err)
	}
	if e.desc == "" {
		t.Error("error description not populated at conversion")
	}
}

func TestResolveLogMessage(t *testing.T) {
	s := newEventScratch(t)
	msg := &mpvEventLogMessage{
		prefix: s.cstr("cplayer"),
		level:  s.cstr("info"),
		text:   s.cstr("playback started\n"),
	}
	ev := resolveEvent(newReplyRegistry(), &mpvEvent{id: int32(EventLogMessage), data: s.hold(msg)})
	lm, ok := ev.Data.(*LogMessageEvent)
	if !ok {
		t.Fatalf("Data type = %T, want *LogMessageEvent", ev.Data)
	}
	want := &LogMessageEvent{Prefix: "cplayer", Level: "info", Text: "playback started\n"}
	if !reflect.DeepEqual(lm, want) {
		t.Errorf("log message = %#v, want %#v", lm, want)
	}
}

func TestResolveEndFile(t *testing.T) {
	s := newEventScratch(t)
	ef := &mpvEventEndFile{reason: int32(EndFileError), err: int32(ErrorLoadingFailed)}
	ev := resolveEvent(newReplyRegistry(), &mpvEvent{id: int32(EventEndFile), data: s.hold(ef)})
	e, ok := ev.Data.(*EndFileEvent)
	if !ok {
		t.Fatalf("Data type = %T, want *EndFileEvent", ev.Data)
	}
	if e.Reason != EndFileError {
		t.Errorf("Reason = %v, want error", e.Reason)
	}
	var ee *Error
	if !errors.As(e.Err, &ee) || ee.Code != ErrorLoadingFailed {
		t.Errorf("end-file Err = %v, want loading-failed", e.Err)
	}
}

func TestResolveClientMessage(t *testing.T) {
	s := newEventScratch(t)
	argv := []uintptr{s.cstr("key-binding"), s.cstr("screenshot"), s.cstr("u-")}
	s.a.hold(argv)
	msg := &mpvEventClientMessage{
		numArgs: int32(len(argv)),
		args:    uintptr(unsafe.Pointer(&argv[0])),
	}
	ev := resolveEvent(newReplyRegistry(), &mpvEvent{id: int32(EventClientMessage), data: s.hold(msg)})
	cm, ok := ev.Data.(*ClientMessageEvent)
	if !ok {
		t.Fatalf("Data type = %T, want *ClientMessageEvent", ev.Data)
	}
	want := []string{"key-binding", "screenshot", "u-"}
	if !reflect.DeepEqual(cm.Args, want) {
		t.Errorf("Args = %v, want %v", cm.Args, want)
	}
}

func TestResolveGetPropertyReplyStringFormat(t *testing.T) {
	s := newEventScratch(t)
	strPtr := s.cstr("mpv rules")
	holder := &strPtr
	s.a.hold(holder)
	prop := &mpvEventProperty{
		name:   s.cstr("media-title"),
		format: int32(FormatString),
		data:   uintptr(unsafe.Pointer(holder)),
	}
	reg := newReplyRegistry()
	reg.register(3, nil)
	ev := resolveEvent(reg, &mpvEvent{id: int32(EventGetPropertyReply), token: 3, data: s.hold(prop)})
	pe, ok := ev.Data.(*PropertyEvent)
	if !ok {
		t.Fatalf("Data type = %T, want *PropertyEvent", ev.Data)
	}
	if pe.Name != "media-title" || pe.Value != "mpv rules" {
		t.Errorf("payload = %q/%v", pe.Name, pe.Value)
	}
	if reg.contains(3) {
		t.Error("get-property-reply did not consume its token")
	}
}

func TestResolveEventWithoutPayload(t *testing.T) {
	ev := resolveEvent(newReplyRegistry(), &mpvEvent{id: int32(EventFileLoaded)})
	if ev.Data != nil {
		t.Errorf("Data = %v, want nil for payload-free kind", ev.Data)
	}
	if ev.Kind.String() != "file-loaded" {
		t.Errorf("Kind.String() = %q", ev.Kind.String())
	}
}
