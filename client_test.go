package mpv

import (
	"errors"
	"testing"
	"time"
)

// newTestClient creates a headless engine instance, skipping when libmpv
// is not installed.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	if !IsAvailable() {
		t.Skip("libmpv not available")
	}
	c, err := New(
		WithOption("vo", "null"),
		WithOption("ao", "null"),
		WithOption("idle", "yes"),
		WithOption("terminal", "no"),
		WithOption("this-option-does-not-exist", "1"), // swallowed, not fatal
	)
	if err != nil {
		t.Fatalf("creating engine instance: %v", err)
	}
	t.Cleanup(func() { _ = c.Shutdown() })
	return c
}

func TestClientLifecycle(t *testing.T) {
	c := newTestClient(t)

	if c.Name() == "" {
		t.Error("client name is empty")
	}
	if ts, err := c.TimeUS(); err != nil || ts < 0 {
		t.Errorf("TimeUS = %d, %v", ts, err)
	}

	if err := c.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := c.Shutdown(); err != nil {
		t.Errorf("second Shutdown = %v, want no-op nil", err)
	}

	// Operations on a destroyed client fail fast.
	if _, err := c.GetProperty("volume"); !errors.Is(err, ErrClientClosed) {
		t.Errorf("GetProperty after shutdown: err = %v, want ErrClientClosed", err)
	}
	if _, err := c.WaitEvent(0); !errors.Is(err, ErrClientClosed) {
		t.Errorf("WaitEvent after shutdown: err = %v, want ErrClientClosed", err)
	}
	if err := c.SetProperty("volume", 50); !errors.Is(err, ErrClientClosed) {
		t.Errorf("SetProperty after shutdown: err = %v, want ErrClientClosed", err)
	}
}

func TestClientPropertyRoundTrip(t *testing.T) {
	c := newTestClient(t)

	if err := c.SetProperty("volume", 64.0); err != nil {
		t.Fatalf("SetProperty failed: %v", err)
	}
	v, err := c.GetProperty("volume")
	if err != nil {
		t.Fatalf("GetProperty failed: %v", err)
	}
	if v != 64.0 {
		t.Errorf("volume = %v, want 64", v)
	}

	// Underscore spelling resolves to the canonical name.
	f, err := c.GetPropertyFloat("volume")
	if err != nil || f != 64.0 {
		t.Errorf("GetPropertyFloat = %v, %v", f, err)
	}
	if _, err := c.GetPropertyBool("sub_visibility"); err != nil {
		t.Errorf("GetPropertyBool(sub_visibility) failed: %v", err)
	}

	if _, err := c.GetProperty("no-such-property"); !errors.Is(err, &Error{Code: ErrorPropertyNotFound}) {
		t.Errorf("missing property: err = %v, want property-not-found", err)
	}
}

func TestClientCommand(t *testing.T) {
	c := newTestClient(t)

	if _, err := c.Command("set", "speed", "1.5"); err != nil {
		t.Fatalf("command failed: %v", err)
	}
	f, err := c.GetPropertyFloat("speed")
	if err != nil || f != 1.5 {
		t.Errorf("speed after command = %v, %v", f, err)
	}
}

func TestClientAsyncCommandReply(t *testing.T) {
	c := newTestClient(t)

	token, err := c.CommandAsync("payload", "get_property", "mpv-version")
	if err != nil {
		t.Fatalf("CommandAsync failed: %v", err)
	}
	if !c.reg.contains(token) {
		t.Fatal("token not registered after async issue")
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		ev, err := c.WaitEvent(time.Second)
		if err != nil {
			t.Fatalf("WaitEvent failed: %v", err)
		}
		if ev.Kind == EventCommandReply && ev.ReplyToken == token {
			if ev.ReplyUserdata != "payload" {
				t.Errorf("ReplyUserdata = %v, want payload", ev.ReplyUserdata)
			}
			if c.reg.contains(token) {
				t.Error("one-shot token still registered after reply")
			}
			return
		}
	}
	t.Fatal("command reply never arrived")
}

func TestClientObserveProperty(t *testing.T) {
	c := newTestClient(t)

	token, err := c.ObserveProperty("volume", "obs")
	if err != nil {
		t.Fatalf("ObserveProperty failed: %v", err)
	}

	if err := c.SetProperty("volume", 33.0); err != nil {
		t.Fatal(err)
	}

	var seen bool
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && !seen {
		ev, err := c.WaitEvent(time.Second)
		if err != nil {
			t.Fatalf("WaitEvent failed: %v", err)
		}
		if ev.Kind == EventPropertyChange && ev.ReplyToken == token {
			seen = true
			if ev.ReplyUserdata != "obs" {
				t.Errorf("ReplyUserdata = %v, want obs", ev.ReplyUserdata)
			}
		}
	}
	if !seen {
		t.Fatal("no property-change event arrived")
	}
	if !c.reg.contains(token) {
		t.Error("observer consumed by delivery; must persist until unobserve")
	}

	if err := c.UnobserveProperty(token); err != nil {
		t.Fatalf("UnobserveProperty failed: %v", err)
	}
	if c.reg.contains(token) {
		t.Error("observer still registered after unobserve")
	}
	if err := c.UnobserveProperty(token); !errors.Is(err, ErrTokenNotRegistered) {
		t.Errorf("second unobserve: err = %v, want ErrTokenNotRegistered", err)
	}
}

func TestClientSecondaryDetach(t *testing.T) {
	c := newTestClient(t)

	sub, err := c.NewClient("helper")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if sub.Name() == "" {
		t.Error("secondary client name is empty")
	}

	// Detaching the secondary leaves the primary engine running.
	if err := sub.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}
	if err := sub.Detach(); err != nil {
		t.Errorf("second Detach = %v, want no-op nil", err)
	}
	if _, err := sub.GetProperty("volume"); !errors.Is(err, ErrClientClosed) {
		t.Errorf("operation on detached client: err = %v", err)
	}
	if _, err := c.GetProperty("volume"); err != nil {
		t.Errorf("primary broken after secondary detach: %v", err)
	}
}

func TestClientWakeupCallback(t *testing.T) {
	c := newTestClient(t)

	woke := make(chan struct{}, 16)
	if err := c.SetWakeupCallback(ModeDeferred, func() {
		select {
		case woke <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("SetWakeupCallback failed: %v", err)
	}

	// Queue activity from any async op triggers a wakeup.
	if _, err := c.CommandAsync(nil, "get_property", "mpv-version"); err != nil {
		t.Fatal(err)
	}
	select {
	case <-woke:
	case <-time.After(5 * time.Second):
		t.Fatal("wakeup callback never fired")
	}

	if err := c.SetWakeupCallback(ModeDirect, func() {}); err != nil {
		t.Fatalf("switching delivery mode failed: %v", err)
	}
	if err := c.SetWakeupCallback(ModeDirect, nil); err != nil {
		t.Fatalf("clearing wakeup callback failed: %v", err)
	}
}

func TestClientWaitEventPoll(t *testing.T) {
	c := newTestClient(t)

	// Drain whatever startup queued, then poll an empty queue.
	for {
		ev, err := c.WaitEvent(0)
		if err != nil {
			t.Fatal(err)
		}
		if ev.Kind == EventNone {
			break
		}
	}
}
