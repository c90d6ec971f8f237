package mpv

import (
	"sync"
)

var (
	libmpvOnce    sync.Once
	libmpvHandle  uintptr
	libmpvInitErr error
	libmpvLoaded  bool
)

// libmpv function pointers, bound by loadLibMPVSymbols.
var (
	mpvClientAPIVersion func() uint64
	mpvErrorString      func(code int32) uintptr
	mpvFree             func(data uintptr)
	mpvClientName       func(handle uintptr) uintptr
	mpvCreate           func() uintptr
	mpvInitialize       func(handle uintptr) int32
	mpvDestroy          func(handle uintptr)
	mpvTerminateDestroy func(handle uintptr)
	mpvCreateClient     func(handle uintptr, name string) uintptr
	mpvGetTimeUS        func(handle uintptr) int64

	mpvSetOptionString func(handle uintptr, name, value string) int32

	mpvCommandNode      func(handle uintptr, args, result uintptr) int32
	mpvCommandNodeAsync func(handle uintptr, token uint64, args uintptr) int32

	mpvGetProperty       func(handle uintptr, name string, format int32, out uintptr) int32
	mpvGetPropertyAsync  func(handle uintptr, token uint64, name string, format int32) int32
	mpvSetProperty       func(handle uintptr, name string, format int32, data uintptr) int32
	mpvSetPropertyString func(handle uintptr, name, value string) int32
	mpvSetPropertyAsync  func(handle uintptr, token uint64, name string, format int32, data uintptr) int32

	mpvObserveProperty   func(handle uintptr, token uint64, name string, format int32) int32
	mpvUnobserveProperty func(handle uintptr, token uint64) int32

	mpvRequestEvent       func(handle uintptr, event int32, enable int32) int32
	mpvRequestLogMessages func(handle uintptr, minLevel string) int32
	mpvWaitEvent          func(handle uintptr, timeout float64) uintptr
	mpvWakeup             func(handle uintptr)
	mpvSetWakeupCallback  func(handle uintptr, cb, d uintptr)

	mpvFreeNodeContents func(node uintptr)
	mpvGetSubAPI        func(handle uintptr, subAPI int32) uintptr

	mpvGLCBSetUpdateCallback func(glctx uintptr, cb, d uintptr)
	mpvGLCBInitGL            func(glctx uintptr, exts uintptr, getProcAddr, ctx uintptr) int32
	mpvGLCBDraw              func(glctx uintptr, fbo, width, height int32) int32
	mpvGLCBReportFlip        func(glctx uintptr, time int64) int32
	mpvGLCBUninitGL          func(glctx uintptr) int32
)

// loadLibMPV loads the libmpv shared library once per process.
func loadLibMPV() error {
	libmpvOnce.Do(func() {
		libmpvInitErr = loadLibMPVLib()
		if libmpvInitErr == nil {
			libmpvLoaded = true
		}
	})
	return libmpvInitErr
}

func libLoaded() bool {
	return libmpvLoaded
}

// IsAvailable checks if libmpv can be loaded.
func IsAvailable() bool {
	return loadLibMPV() == nil
}

// APIVersion returns the client API version reported by libmpv,
// or 0 if the library is not available.
func APIVersion() uint64 {
	if err := loadLibMPV(); err != nil {
		return 0
	}
	return mpvClientAPIVersion()
}
