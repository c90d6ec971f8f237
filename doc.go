// Package mpv provides Go client bindings for libmpv, the embeddable
// media engine behind mpv.
//
// The package speaks libmpv's node-based client protocol: every property
// read/write and every command crosses the boundary as a tagged-union
// mpv_node value, and every asynchronous request or property observation is
// correlated with its later reply through a 64-bit token on the context's
// single event queue.
//
// Key pieces include:
//   - Node encoding/decoding between Go values and mpv_node trees, with
//     arena-scoped ownership of outgoing allocations
//   - A per-client reply registry correlating async requests and property
//     observers with delivered events
//   - WaitEvent, the single-consumer event loop entry point
//   - Wakeup and render-update callback delivery, either directly on the
//     engine thread or on a dedicated worker goroutine
//   - Client lifecycle: primary instances, attached secondary clients,
//     detach vs full engine shutdown
//
// # Native Library
//
// Bindings load libmpv dynamically at runtime via purego (CGO_ENABLED=0).
// Set MPV_LIB_PATH to point at a specific libmpv shared object; otherwise
// standard system locations are searched. IsAvailable reports whether the
// library could be loaded.
//
// # Threading
//
// The engine runs its own internal threads. At most one goroutine per
// client may call WaitEvent at a time; this is a caller obligation imposed
// by the engine and is not enforced internally. All other exported methods
// are safe for concurrent use until Detach or Shutdown.
package mpv
