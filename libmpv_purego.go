//go:build darwin || linux

// libmpv loader using purego.
//
// The library is loaded dynamically at runtime, so the package builds and
// its pure-Go parts run without libmpv installed.
//
// Library locations checked (in order):
//   - MPV_LIB_PATH environment variable (full path to the shared object)
//   - Next to the executable
//   - System library paths

package mpv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ebitengine/purego"
)

func loadLibMPVLib() error {
	paths := libmpvPaths()

	var lastErr error
	for _, path := range paths {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			libmpvHandle = handle
			loadLibMPVSymbols()
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to load libmpv: %w", lastErr)
	}
	return errors.New("libmpv not found in any standard location")
}

func libmpvPaths() []string {
	var paths []string

	libName := "libmpv.so"
	if runtime.GOOS == "darwin" {
		libName = "libmpv.dylib"
	}

	if envPath := os.Getenv("MPV_LIB_PATH"); envPath != "" {
		paths = append(paths, envPath)
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, libName),
			filepath.Join(exeDir, "..", "lib", libName),
		)
	}

	switch runtime.GOOS {
	case "darwin":
		paths = append(paths,
			"libmpv.dylib",
			"libmpv.2.dylib",
			"/usr/local/lib/libmpv.dylib",
			"/opt/homebrew/lib/libmpv.dylib",
		)
	case "linux":
		paths = append(paths,
			"libmpv.so",
			"libmpv.so.2",
			"libmpv.so.1",
			"/usr/local/lib/libmpv.so",
			"/usr/lib/libmpv.so",
		)
	}

	return paths
}

func loadLibMPVSymbols() {
	// Core
	purego.RegisterLibFunc(&mpvClientAPIVersion, libmpvHandle, "mpv_client_api_version")
	purego.RegisterLibFunc(&mpvErrorString, libmpvHandle, "mpv_error_string")
	purego.RegisterLibFunc(&mpvFree, libmpvHandle, "mpv_free")
	purego.RegisterLibFunc(&mpvClientName, libmpvHandle, "mpv_client_name")
	purego.RegisterLibFunc(&mpvCreate, libmpvHandle, "mpv_create")
	purego.RegisterLibFunc(&mpvInitialize, libmpvHandle, "mpv_initialize")
	purego.RegisterLibFunc(&mpvDestroy, libmpvHandle, "mpv_destroy")
	purego.RegisterLibFunc(&mpvTerminateDestroy, libmpvHandle, "mpv_terminate_destroy")
	purego.RegisterLibFunc(&mpvCreateClient, libmpvHandle, "mpv_create_client")
	purego.RegisterLibFunc(&mpvGetTimeUS, libmpvHandle, "mpv_get_time_us")
	purego.RegisterLibFunc(&mpvSetOptionString, libmpvHandle, "mpv_set_option_string")

	// Commands and properties
	purego.RegisterLibFunc(&mpvCommandNode, libmpvHandle, "mpv_command_node")
	purego.RegisterLibFunc(&mpvCommandNodeAsync, libmpvHandle, "mpv_command_node_async")
	purego.RegisterLibFunc(&mpvGetProperty, libmpvHandle, "mpv_get_property")
	purego.RegisterLibFunc(&mpvGetPropertyAsync, libmpvHandle, "mpv_get_property_async")
	purego.RegisterLibFunc(&mpvSetProperty, libmpvHandle, "mpv_set_property")
	purego.RegisterLibFunc(&mpvSetPropertyString, libmpvHandle, "mpv_set_property_string")
	purego.RegisterLibFunc(&mpvSetPropertyAsync, libmpvHandle, "mpv_set_property_async")
	purego.RegisterLibFunc(&mpvObserveProperty, libmpvHandle, "mpv_observe_property")
	purego.RegisterLibFunc(&mpvUnobserveProperty, libmpvHandle, "mpv_unobserve_property")

	// Events
	purego.RegisterLibFunc(&mpvRequestEvent, libmpvHandle, "mpv_request_event")
	purego.RegisterLibFunc(&mpvRequestLogMessages, libmpvHandle, "mpv_request_log_messages")
	purego.RegisterLibFunc(&mpvWaitEvent, libmpvHandle, "mpv_wait_event")
	purego.RegisterLibFunc(&mpvWakeup, libmpvHandle, "mpv_wakeup")
	purego.RegisterLibFunc(&mpvSetWakeupCallback, libmpvHandle, "mpv_set_wakeup_callback")
	purego.RegisterLibFunc(&mpvFreeNodeContents, libmpvHandle, "mpv_free_node_contents")

	// OpenGL callback sub-API
	purego.RegisterLibFunc(&mpvGetSubAPI, libmpvHandle, "mpv_get_sub_api")
	purego.RegisterLibFunc(&mpvGLCBSetUpdateCallback, libmpvHandle, "mpv_opengl_cb_set_update_callback")
	purego.RegisterLibFunc(&mpvGLCBInitGL, libmpvHandle, "mpv_opengl_cb_init_gl")
	purego.RegisterLibFunc(&mpvGLCBDraw, libmpvHandle, "mpv_opengl_cb_draw")
	purego.RegisterLibFunc(&mpvGLCBReportFlip, libmpvHandle, "mpv_opengl_cb_report_flip")
	purego.RegisterLibFunc(&mpvGLCBUninitGL, libmpvHandle, "mpv_opengl_cb_uninit_gl")
}

// newWakeupTrampoline creates a C-callable pointer with the wakeup
// callback shape: void (*cb)(void *d). purego callbacks are never
// released, so trampolines are created once per slot and re-pointed at
// the current bridge rather than re-created per registration.
func newWakeupTrampoline(fn func()) uintptr {
	return purego.NewCallback(func(_ uintptr) uintptr {
		fn()
		return 0
	})
}

// newProcAddrTrampoline creates a C-callable pointer with the
// proc-address query shape: void *(*get)(void *ctx, const char *name).
func newProcAddrTrampoline(fn ProcAddrFn) uintptr {
	return purego.NewCallback(func(_ uintptr, name uintptr) uintptr {
		return fn(goStringFromPtr(name))
	})
}
