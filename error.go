package mpv

import (
	"errors"
	"fmt"
)

// ErrClientClosed is returned by every operation on a client whose handle
// has been released by Detach or Shutdown.
var ErrClientClosed = errors.New("mpv: client is closed")

// ErrUnsupportedType is returned when encoding a Go value with no node
// representation.
var ErrUnsupportedType = errors.New("mpv: unsupported value type")

// ErrTokenNotRegistered is returned when decrementing or unobserving a
// token that has no registry record.
var ErrTokenNotRegistered = errors.New("mpv: reply token not registered")

// ErrTokenInUse is returned when observing with a token that already has a
// registry record.
var ErrTokenInUse = errors.New("mpv: reply token already registered")

// ErrNoCallbackPath is returned when replacing a callback on a slot with
// no active delivery path.
var ErrNoCallbackPath = errors.New("mpv: no callback registered")

// ErrorCode is a negative engine status code.
// Values match libmpv's mpv_error enum.
type ErrorCode int32

const (
	ErrorEventQueueFull      ErrorCode = -1
	ErrorNoMem               ErrorCode = -2
	ErrorUninitialized       ErrorCode = -3
	ErrorInvalidParameter    ErrorCode = -4
	ErrorOptionNotFound      ErrorCode = -5
	ErrorOptionFormat        ErrorCode = -6
	ErrorOptionError         ErrorCode = -7
	ErrorPropertyNotFound    ErrorCode = -8
	ErrorPropertyFormat      ErrorCode = -9
	ErrorPropertyUnavailable ErrorCode = -10
	ErrorPropertyError       ErrorCode = -11
	ErrorCommand             ErrorCode = -12
	ErrorLoadingFailed       ErrorCode = -13
	ErrorAOInitFailed        ErrorCode = -14
	ErrorVOInitFailed        ErrorCode = -15
	ErrorNothingToPlay       ErrorCode = -16
	ErrorUnknownFormat       ErrorCode = -17
	ErrorUnsupported         ErrorCode = -18
	ErrorNotImplemented      ErrorCode = -19
	ErrorGeneric             ErrorCode = -20
)

// errorDescriptions mirrors mpv_error_string for when the shared library
// is not loaded (or returned nothing).
var errorDescriptions = map[ErrorCode]string{
	ErrorEventQueueFull:      "event queue full",
	ErrorNoMem:               "memory allocation failed",
	ErrorUninitialized:       "core not uninitialized",
	ErrorInvalidParameter:    "invalid parameter",
	ErrorOptionNotFound:      "option not found",
	ErrorOptionFormat:        "unsupported format for accessing option",
	ErrorOptionError:         "error setting option",
	ErrorPropertyNotFound:    "property not found",
	ErrorPropertyFormat:      "unsupported format for accessing property",
	ErrorPropertyUnavailable: "property unavailable",
	ErrorPropertyError:       "error accessing property",
	ErrorCommand:             "error running command",
	ErrorLoadingFailed:       "loading failed",
	ErrorAOInitFailed:        "audio output initialization failed",
	ErrorVOInitFailed:        "video output initialization failed",
	ErrorNothingToPlay:       "no audio or video data played",
	ErrorUnknownFormat:       "unrecognized file format",
	ErrorUnsupported:         "not supported by this build",
	ErrorNotImplemented:      "not implemented",
	ErrorGeneric:             "something happened",
}

func (c ErrorCode) String() string {
	if desc, ok := errorDescriptions[c]; ok {
		return desc
	}
	return fmt.Sprintf("error %d", int32(c))
}

// Error wraps a negative engine status code. The description is captured
// eagerly at conversion time, from the engine itself when available.
type Error struct {
	Code ErrorCode
	desc string
}

func (e *Error) Error() string {
	return fmt.Sprintf("mpv: %s (%d)", e.desc, int32(e.Code))
}

// Is matches against another *Error by code, so callers can use
// errors.Is(err, &Error{Code: ErrorPropertyNotFound}).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// newError converts a raw engine status into an error value, or nil for
// non-negative statuses.
func newError(status int32) error {
	if status >= 0 {
		return nil
	}
	code := ErrorCode(status)
	desc := ""
	if libLoaded() {
		desc = goStringFromPtr(mpvErrorString(status))
	}
	if desc == "" {
		desc = code.String()
	}
	return &Error{Code: code, desc: desc}
}

// isNotFound reports whether err is the recoverable "not found" class used
// by the property/option namespace fallback.
func isNotFound(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == ErrorPropertyNotFound || e.Code == ErrorOptionNotFound
}
