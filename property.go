// Typed property accessors and property/option name normalization.
//
// Canonical engine names use dashes; underscore spellings are accepted
// everywhere and resolved through a per-client lookup table seeded once
// at initialization from the engine's property list.

package mpv

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"
)

// nameCache maps user spellings to canonical property/option names.
type nameCache struct {
	mu    sync.RWMutex
	canon map[string]string
}

func newNameCache() *nameCache {
	return &nameCache{canon: make(map[string]string)}
}

// seed populates the table from the engine's property-list, best-effort.
// Each canonical name is entered under both its own spelling and the
// underscore variant.
func (n *nameCache) seed(c *Client) {
	list, err := c.GetProperty("property-list")
	if err != nil {
		return
	}
	names, ok := list.([]any)
	if !ok {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, v := range names {
		name, ok := v.(string)
		if !ok {
			continue
		}
		n.canon[name] = name
		n.canon[strings.ReplaceAll(name, "-", "_")] = name
	}
}

// resolve maps a user spelling to its canonical name. Unknown names fall
// back to the dash form, so freshly-registered script properties still
// work.
func (n *nameCache) resolve(name string) string {
	n.mu.RLock()
	canon, ok := n.canon[name]
	n.mu.RUnlock()
	if ok {
		return canon
	}
	canon = strings.ReplaceAll(name, "_", "-")
	n.mu.Lock()
	n.canon[name] = canon
	n.mu.Unlock()
	return canon
}

// GetPropertyString reads a property formatted as a string by the
// engine.
func (c *Client) GetPropertyString(name string) (string, error) {
	h, err := c.hand()
	if err != nil {
		return "", err
	}
	var out uintptr
	status := mpvGetProperty(h, c.names.resolve(name), int32(FormatString), uintptr(unsafe.Pointer(&out)))
	if err := newError(status); err != nil {
		return "", err
	}
	s := goStringFromPtr(out)
	mpvFree(out)
	return s, nil
}

// SetPropertyString writes a property from its string representation.
func (c *Client) SetPropertyString(name, value string) error {
	h, err := c.hand()
	if err != nil {
		return err
	}
	return newError(mpvSetPropertyString(h, c.names.resolve(name), value))
}

// GetPropertyBool reads a flag property.
func (c *Client) GetPropertyBool(name string) (bool, error) {
	v, err := c.getTyped(name, FormatFlag)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// GetPropertyInt reads an integer property.
func (c *Client) GetPropertyInt(name string) (int64, error) {
	v, err := c.getTyped(name, FormatInt64)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// GetPropertyFloat reads a floating-point property.
func (c *Client) GetPropertyFloat(name string) (float64, error) {
	v, err := c.getTyped(name, FormatDouble)
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func (c *Client) getTyped(name string, format Format) (any, error) {
	h, err := c.hand()
	if err != nil {
		return nil, err
	}
	var out [2]uint64 // large enough for flag, int64 and double
	status := mpvGetProperty(h, c.names.resolve(name), int32(format), uintptr(unsafe.Pointer(&out[0])))
	if err := newError(status); err != nil {
		return nil, err
	}
	v := decodeData(format, uintptr(unsafe.Pointer(&out[0])))
	if v == nil {
		return nil, fmt.Errorf("mpv: property %q yielded no %s value", name, format)
	}
	return v, nil
}

// SetOptionString sets an option by name, falling back to the property
// namespace when the option is not found there. Options share names with
// properties after initialization, so the recoverable "not found" class
// drives the fallback chain.
func (c *Client) SetOptionString(name, value string) error {
	h, err := c.hand()
	if err != nil {
		return err
	}
	name = c.names.resolve(name)
	if err := newError(mpvSetOptionString(h, name, value)); err != nil {
		if isNotFound(err) {
			return c.SetPropertyString(name, value)
		}
		return err
	}
	return nil
}
