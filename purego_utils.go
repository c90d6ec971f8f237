// Shared helpers for reading engine-owned memory.

package mpv

import "unsafe"

// goStringFromPtr copies a NUL-terminated C string into a Go string.
// The result owns its bytes; the engine-side pointer is never retained.
func goStringFromPtr(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	p := unsafe.Pointer(ptr)
	var length int
	for *(*byte)(unsafe.Pointer(uintptr(p) + uintptr(length))) != 0 {
		length++
	}
	if length == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), length))
}

// goStringsFromArgv copies a C array of n char* pointers into Go strings.
func goStringsFromArgv(argv uintptr, n int) []string {
	if argv == 0 || n <= 0 {
		return nil
	}
	ptrs := unsafe.Slice((*uintptr)(unsafe.Pointer(argv)), n)
	out := make([]string, n)
	for i, p := range ptrs {
		out[i] = goStringFromPtr(p)
	}
	return out
}
