package permission

import (
	"fmt"
	"sort"
	"sync"
)

// Entry is one catalog row as served by the permission catalog endpoint.
type Entry struct {
	Key         string `json:"permission_key"`
	Description string `json:"description"`
}

// Group is the catalog entries sharing one resource, in catalog order.
type Group struct {
	Resource string
	Keys     []string
}

// Catalog is the externally supplied list of valid permission keys. Each
// key gets a stable ordinal in registration order; that order drives group
// iteration and therefore the observable result of [Rules.GroupToggle].
type Catalog struct {
	mu         sync.RWMutex
	keyToIndex map[string]int
	entries    []Entry
	frozen     bool
}

// NewCatalog returns an empty, writable catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		keyToIndex: make(map[string]int),
	}
}

// CatalogFromEntries registers entries in order and freezes the result.
func CatalogFromEntries(entries []Entry) (*Catalog, error) {
	c := NewCatalog()
	for _, e := range entries {
		if _, err := c.Register(e.Key, e.Description); err != nil {
			return nil, err
		}
	}
	c.Freeze()
	return c, nil
}

// Register appends key to the catalog and returns its ordinal.
// Must be called before [Catalog.Freeze].
func (c *Catalog) Register(key, description string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return -1, ErrCatalogFrozen
	}
	if !ValidKey(key) {
		return -1, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if _, exists := c.keyToIndex[key]; exists {
		return -1, fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}

	idx := len(c.entries)
	c.keyToIndex[key] = idx
	c.entries = append(c.entries, Entry{Key: key, Description: description})
	return idx, nil
}

// Index returns the ordinal for key, or false if it is not registered.
func (c *Catalog) Index(key string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.keyToIndex[key]
	return idx, ok
}

// Contains reports whether key is registered.
func (c *Catalog) Contains(key string) bool {
	_, ok := c.Index(key)
	return ok
}

// Freeze prevents further registrations.
func (c *Catalog) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
}

// Count returns the number of registered keys.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Groups returns the catalog grouped by resource. Groups appear in the
// order their first key was registered; keys keep catalog order.
func (c *Catalog) Groups() []Group {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var groups []Group
	pos := make(map[string]int)
	for _, e := range c.entries {
		resource := Resource(e.Key)
		i, ok := pos[resource]
		if !ok {
			i = len(groups)
			pos[resource] = i
			groups = append(groups, Group{Resource: resource})
		}
		groups[i].Keys = append(groups[i].Keys, e.Key)
	}
	return groups
}

// Group returns the keys of one resource in catalog order.
func (c *Catalog) Group(resource string) ([]string, bool) {
	for _, g := range c.Groups() {
		if g.Resource == resource {
			return g.Keys, true
		}
	}
	return nil, false
}

// Ordered returns the keys of s in catalog order. Keys the catalog does not
// know are appended afterwards in lexical order.
func (c *Catalog) Ordered(s Set) []string {
	known := make([]string, 0, len(s))
	var unknown []string
	for k := range s {
		if c.Contains(k) {
			known = append(known, k)
		} else {
			unknown = append(unknown, k)
		}
	}
	sort.Slice(known, func(i, j int) bool {
		a, _ := c.Index(known[i])
		b, _ := c.Index(known[j])
		return a < b
	})
	sort.Strings(unknown)
	return append(known, unknown...)
}
