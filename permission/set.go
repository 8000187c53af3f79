package permission

import "sort"

// Set is a set of permission keys. The zero value is an empty set ready
// for reads; use [NewSet] or [Set.Clone] before writing.
type Set map[string]struct{}

// NewSet builds a set from keys. Duplicates collapse.
func NewSet(keys ...string) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is present.
func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// HasAny reports whether at least one of keys is present.
func (s Set) HasAny(keys Set) bool {
	small, large := keys, s
	if len(small) > len(large) {
		small, large = large, small
	}
	for k := range small {
		if large.Has(k) {
			return true
		}
	}
	return false
}

// HasAll reports whether every key is present. An empty keys slice is
// trivially contained.
func (s Set) HasAll(keys []string) bool {
	for _, k := range keys {
		if !s.Has(k) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold exactly the same keys.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// Sorted returns the keys in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
