// Node codec: conversion between libmpv's tagged-union mpv_node wire
// representation and Go values.
//
// Decoding copies every string and byte payload out of engine-owned memory
// before returning; no pointer into the engine's buffers survives the call.
// Encoding allocates the whole outgoing node tree inside an arena that
// stays live across the native call and is released exactly once.

package mpv

import (
	"fmt"
	"math"
	"sort"
	"unsafe"
)

// NodePair is one key/value entry of a NodeMap.
type NodePair struct {
	Key   string
	Value any
}

// NodeMap is an order-preserving key/value mapping. Map-formatted nodes
// decode to NodeMap so that key order survives a round trip. Keys must be
// unique within one map.
type NodeMap []NodePair

// Get returns the value for key, or (nil, false) if absent.
func (m NodeMap) Get(key string) (any, bool) {
	for _, p := range m {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// mpvNode mirrors the C mpv_node struct on 64-bit platforms:
// an 8-byte union followed by the format tag.
type mpvNode struct {
	val    uint64
	format int32
	_      int32
}

// mpvNodeList mirrors the C mpv_node_list struct: element count, a
// contiguous array of nodes and, for maps, a parallel array of C string
// keys.
type mpvNodeList struct {
	num    int32
	_      int32
	values uintptr // *mpv_node, num contiguous elements
	keys   uintptr // **char, num contiguous elements (maps only)
}

// mpvByteArray mirrors the C mpv_byte_array struct.
type mpvByteArray struct {
	data uintptr
	size uint64
}

// arena owns every allocation referenced from one outgoing node tree.
// The engine may hold pointers into these allocations for the duration of
// the native call; free severs all references in one operation and must
// run exactly once per encode, on every exit path.
type arena struct {
	keep []any
}

func (a *arena) hold(v any) {
	a.keep = append(a.keep, v)
}

// free releases the entire region. Safe to call on an already-freed
// arena; the second call is a no-op.
func (a *arena) free() {
	a.keep = nil
}

// cstring copies s into the arena as a NUL-terminated byte buffer and
// returns its address.
func (a *arena) cstring(s string) uintptr {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	a.hold(buf)
	return uintptr(unsafe.Pointer(&buf[0]))
}

// encodeToNode builds an mpv_node tree for v. The returned arena owns the
// root node and everything attached to it; the caller must free it after
// the native call completes, typically via defer. On failure the root is
// the FormatNone sentinel and the arena still requires its single free.
func encodeToNode(v any) (*mpvNode, *arena, error) {
	a := &arena{}
	root := &mpvNode{}
	a.hold(root)
	err := encodeNode(v, a, root)
	return root, a, err
}

func encodeNode(v any, a *arena, dst *mpvNode) error {
	switch t := v.(type) {
	case nil:
		dst.format = int32(FormatNone)
	case string:
		dst.format = int32(FormatString)
		dst.val = uint64(a.cstring(t))
	case bool:
		dst.format = int32(FormatFlag)
		if t {
			// The union member is a C int; write through the same view
			// decode reads from.
			*(*int32)(unsafe.Pointer(&dst.val)) = 1
		}
	case int:
		dst.format = int32(FormatInt64)
		dst.val = uint64(int64(t))
	case int8:
		dst.format = int32(FormatInt64)
		dst.val = uint64(int64(t))
	case int16:
		dst.format = int32(FormatInt64)
		dst.val = uint64(int64(t))
	case int32:
		dst.format = int32(FormatInt64)
		dst.val = uint64(int64(t))
	case int64:
		dst.format = int32(FormatInt64)
		dst.val = uint64(t)
	case uint8:
		dst.format = int32(FormatInt64)
		dst.val = uint64(t)
	case uint16:
		dst.format = int32(FormatInt64)
		dst.val = uint64(t)
	case uint32:
		dst.format = int32(FormatInt64)
		dst.val = uint64(t)
	case uint:
		dst.format = int32(FormatInt64)
		dst.val = uint64(int64(t))
	case uint64:
		dst.format = int32(FormatInt64)
		dst.val = uint64(int64(t))
	case float32:
		dst.format = int32(FormatDouble)
		dst.val = math.Float64bits(float64(t))
	case float64:
		dst.format = int32(FormatDouble)
		dst.val = math.Float64bits(t)
	case []byte:
		ba := &mpvByteArray{size: uint64(len(t))}
		if len(t) > 0 {
			buf := make([]byte, len(t))
			copy(buf, t)
			a.hold(buf)
			ba.data = uintptr(unsafe.Pointer(&buf[0]))
		}
		a.hold(ba)
		dst.format = int32(FormatByteArray)
		dst.val = uint64(uintptr(unsafe.Pointer(ba)))
	case []any:
		return encodeList(t, nil, a, dst, FormatNodeArray)
	case NodeMap:
		values := make([]any, len(t))
		keys := make([]string, len(t))
		for i, p := range t {
			keys[i] = p.Key
			values[i] = p.Value
		}
		return encodeList(values, keys, a, dst, FormatNodeMap)
	case map[string]any:
		// Plain Go maps have no defined order; sort for determinism.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([]any, len(keys))
		for i, k := range keys {
			values[i] = t[k]
		}
		return encodeList(values, keys, a, dst, FormatNodeMap)
	default:
		dst.format = int32(FormatNone)
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
	return nil
}

// encodeList encodes an array or map node. values are encoded into one
// contiguous child node slice; for maps, keys is the parallel key array,
// each key duplicated into the arena.
func encodeList(values []any, keys []string, a *arena, dst *mpvNode, format Format) error {
	list := &mpvNodeList{num: int32(len(values))}
	a.hold(list)
	if len(values) > 0 {
		children := make([]mpvNode, len(values))
		a.hold(children)
		list.values = uintptr(unsafe.Pointer(&children[0]))
		for i := range values {
			if err := encodeNode(values[i], a, &children[i]); err != nil {
				dst.format = int32(FormatNone)
				return err
			}
		}
		if keys != nil {
			kptrs := make([]uintptr, len(keys))
			a.hold(kptrs)
			for i, k := range keys {
				kptrs[i] = a.cstring(k)
			}
			list.keys = uintptr(unsafe.Pointer(&kptrs[0]))
		}
	}
	dst.format = int32(format)
	dst.val = uint64(uintptr(unsafe.Pointer(list)))
	return nil
}

// decodeNode converts an mpv_node into a Go value, copying all payloads
// out of the node's backing memory. Unknown formats decode to nil.
func decodeNode(n *mpvNode) any {
	if n == nil {
		return nil
	}
	switch Format(n.format) {
	case FormatString, FormatOSDString:
		return goStringFromPtr(uintptr(n.val))
	case FormatFlag:
		return *(*int32)(unsafe.Pointer(&n.val)) != 0
	case FormatInt64:
		return int64(n.val)
	case FormatDouble:
		return math.Float64frombits(n.val)
	case FormatNodeArray:
		list := (*mpvNodeList)(unsafe.Pointer(uintptr(n.val)))
		if list == nil || list.num <= 0 || list.values == 0 {
			return []any{}
		}
		children := unsafe.Slice((*mpvNode)(unsafe.Pointer(list.values)), list.num)
		out := make([]any, list.num)
		for i := range children {
			out[i] = decodeNode(&children[i])
		}
		return out
	case FormatNodeMap:
		list := (*mpvNodeList)(unsafe.Pointer(uintptr(n.val)))
		if list == nil || list.num <= 0 || list.keys == 0 {
			return NodeMap{}
		}
		children := unsafe.Slice((*mpvNode)(unsafe.Pointer(list.values)), list.num)
		kptrs := unsafe.Slice((*uintptr)(unsafe.Pointer(list.keys)), list.num)
		out := make(NodeMap, list.num)
		for i := range children {
			out[i] = NodePair{Key: goStringFromPtr(kptrs[i]), Value: decodeNode(&children[i])}
		}
		return out
	case FormatByteArray:
		ba := (*mpvByteArray)(unsafe.Pointer(uintptr(n.val)))
		if ba == nil || ba.size == 0 {
			return []byte{}
		}
		src := unsafe.Slice((*byte)(unsafe.Pointer(ba.data)), ba.size)
		out := make([]byte, ba.size)
		copy(out, src)
		return out
	default:
		return nil
	}
}

// decodeData converts a typed property payload (format + pointer to a
// value of that format) into a Go value.
func decodeData(format Format, data uintptr) any {
	if data == 0 {
		return nil
	}
	switch format {
	case FormatString, FormatOSDString:
		return goStringFromPtr(*(*uintptr)(unsafe.Pointer(data)))
	case FormatFlag:
		return *(*int32)(unsafe.Pointer(data)) != 0
	case FormatInt64:
		return *(*int64)(unsafe.Pointer(data))
	case FormatDouble:
		return *(*float64)(unsafe.Pointer(data))
	case FormatNode:
		return decodeNode((*mpvNode)(unsafe.Pointer(data)))
	default:
		return nil
	}
}
