// OpenGL callback sub-API: the render-update callback registration
// follows the same bridge pattern as the wakeup callback; the GL entry
// points themselves are thin pass-throughs.

package mpv

import (
	"fmt"
	"runtime"
	"unsafe"
)

// subAPIOpenGLCB matches MPV_SUB_API_OPENGL_CB.
const subAPIOpenGLCB = 1

// ProcAddrFn resolves an OpenGL function name to a function pointer.
// Invoked on whichever thread calls InitGL.
type ProcAddrFn func(name string) uintptr

// OpenGLCB is a handle on the engine's OpenGL callback sub-API.
type OpenGLCB struct {
	c      *Client
	h      uintptr
	update callbackSlot
}

// OpenGLCB returns the client's OpenGL callback sub-API handle, fetching
// it on first use. Requires the engine to have been built with the
// sub-API compiled in.
func (c *Client) OpenGLCB() (*OpenGLCB, error) {
	if gl := c.gl.Load(); gl != nil {
		return gl, nil
	}
	h, err := c.hand()
	if err != nil {
		return nil, err
	}
	glh := mpvGetSubAPI(h, subAPIOpenGLCB)
	if glh == 0 {
		return nil, fmt.Errorf("mpv: OpenGL callback sub-API unavailable")
	}
	gl := &OpenGLCB{c: c, h: glh}
	if !c.gl.CompareAndSwap(nil, gl) {
		gl = c.gl.Load()
	}
	return gl, nil
}

// SetUpdateCallback registers fn to be called when a new video frame
// should be drawn, replacing any previous registration. Same delivery
// modes and teardown rules as SetWakeupCallback. A nil fn removes the
// registration.
func (g *OpenGLCB) SetUpdateCallback(mode CallbackMode, fn func()) error {
	if _, err := g.c.hand(); err != nil {
		return err
	}
	if fn == nil {
		g.update.clear()
		mpvGLCBSetUpdateCallback(g.h, 0, 0)
		return nil
	}
	g.update.install(newCallbackBridge(mode, fn, g.c.log))
	mpvGLCBSetUpdateCallback(g.h, g.update.trampoline(), 0)
	return nil
}

// InitGL initializes the GL state using getProcAddr to resolve GL
// symbols. Call once, from the thread owning the GL context. The
// trampoline created for getProcAddr is never released; do not call
// repeatedly with different resolvers.
func (g *OpenGLCB) InitGL(exts string, getProcAddr ProcAddrFn) error {
	if _, err := g.c.hand(); err != nil {
		return err
	}
	var extsPtr uintptr
	var hold []byte
	if exts != "" {
		hold = append([]byte(exts), 0)
		extsPtr = uintptr(unsafe.Pointer(&hold[0]))
	}
	status := mpvGLCBInitGL(g.h, extsPtr, newProcAddrTrampoline(getProcAddr), 0)
	runtime.KeepAlive(hold)
	return newError(status)
}

// Draw renders the current frame into fbo at the given size. Negative
// height flips the frame vertically.
func (g *OpenGLCB) Draw(fbo, width, height int) error {
	if _, err := g.c.hand(); err != nil {
		return err
	}
	return newError(mpvGLCBDraw(g.h, int32(fbo), int32(width), int32(height)))
}

// ReportFlip tells the engine when the frame hit the display, in engine
// time (TimeUS); 0 means "now".
func (g *OpenGLCB) ReportFlip(time int64) error {
	if _, err := g.c.hand(); err != nil {
		return err
	}
	return newError(mpvGLCBReportFlip(g.h, time))
}

// UninitGL destroys the GL state. The update callback path is torn down
// first.
func (g *OpenGLCB) UninitGL() error {
	if _, err := g.c.hand(); err != nil {
		return err
	}
	g.update.clear()
	mpvGLCBSetUpdateCallback(g.h, 0, 0)
	return newError(mpvGLCBUninitGL(g.h))
}
