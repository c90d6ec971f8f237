//go:build !darwin && !linux

package mpv

import "errors"

func loadLibMPVLib() error {
	return errors.New("libmpv loading is not supported on this platform")
}

func newWakeupTrampoline(fn func()) uintptr { return 0 }

func newProcAddrTrampoline(fn ProcAddrFn) uintptr { return 0 }
