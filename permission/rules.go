package permission

import (
	"fmt"
	"sort"
)

// Rules is the static dependency policy between write and read keys.
//
// RequiresRead maps a write key to its prerequisite read key. A key may map
// to itself; such entries are no-ops. CascadesTo maps a read key to the
// write keys revoked together with it.
//
// Rules values are immutable after [NewRules]; Toggle and GroupToggle are
// pure and safe for concurrent use.
type Rules struct {
	requiresRead map[string]string
	cascadesTo   map[string][]string
}

// NewRules validates and copies the two relations.
//
// Validation rejects:
//   - malformed keys ([ErrInvalidKey]);
//   - a prerequisite read that itself requires another key, or a cascaded
//     write that itself cascades further ([ErrChainedRule]);
//   - a write w with RequiresRead[w] = r (r != w) that is missing from
//     CascadesTo[r] ([ErrChainedRule]), since revoking r would then strand w.
//
// Together these guarantee that single-hop application reaches the same
// set as a fixpoint closure.
func NewRules(requiresRead map[string]string, cascadesTo map[string][]string) (*Rules, error) {
	r := &Rules{
		requiresRead: make(map[string]string, len(requiresRead)),
		cascadesTo:   make(map[string][]string, len(cascadesTo)),
	}

	for w, read := range requiresRead {
		if !ValidKey(w) || !ValidKey(read) {
			return nil, fmt.Errorf("%w: requiresRead %q -> %q", ErrInvalidKey, w, read)
		}
		r.requiresRead[w] = read
	}
	for read, writes := range cascadesTo {
		if !ValidKey(read) {
			return nil, fmt.Errorf("%w: cascadesTo %q", ErrInvalidKey, read)
		}
		seen := make(map[string]struct{}, len(writes))
		out := make([]string, 0, len(writes))
		for _, w := range writes {
			if !ValidKey(w) {
				return nil, fmt.Errorf("%w: cascadesTo %q -> %q", ErrInvalidKey, read, w)
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
		r.cascadesTo[read] = out
	}

	for w, read := range r.requiresRead {
		if read == w {
			continue
		}
		if next, ok := r.requiresRead[read]; ok && next != read {
			return nil, fmt.Errorf("%w: %q requires %q which requires %q", ErrChainedRule, w, read, next)
		}
		if !contains(r.cascadesTo[read], w) {
			return nil, fmt.Errorf("%w: %q requires %q but is not in its cascade", ErrChainedRule, w, read)
		}
	}
	for read, writes := range r.cascadesTo {
		for _, w := range writes {
			if w == read {
				continue
			}
			for _, further := range r.cascadesTo[w] {
				if further != w {
					return nil, fmt.Errorf("%w: %q cascades to %q which cascades to %q", ErrChainedRule, read, w, further)
				}
			}
		}
	}

	return r, nil
}

// MustRules is NewRules for package-level tables; it panics on error.
func MustRules(requiresRead map[string]string, cascadesTo map[string][]string) *Rules {
	r, err := NewRules(requiresRead, cascadesTo)
	if err != nil {
		panic(err)
	}
	return r
}

// RequiresRead returns the prerequisite read key of key, if any.
func (r *Rules) RequiresRead(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	read, ok := r.requiresRead[key]
	return read, ok
}

// CascadesTo returns a copy of the write keys revoked along with key.
func (r *Rules) CascadesTo(key string) []string {
	if r == nil {
		return nil
	}
	writes := r.cascadesTo[key]
	out := make([]string, len(writes))
	copy(out, writes)
	return out
}

// Toggle returns a copy of current with key enabled or disabled.
//
// Enabling inserts key and its prerequisite read. Disabling removes key and
// every write it cascades to. Both directions apply one hop.
func (r *Rules) Toggle(key string, enable bool, current Set) Set {
	next := current.Clone()
	r.apply(key, enable, next)
	return next
}

// GroupToggle flips a group of keys together. When every key is already
// present the group is disabled, otherwise it is enabled. Keys are applied
// in input order against the accumulating set, so a cascade caused by an
// earlier key can be undone by a later one.
func (r *Rules) GroupToggle(keys []string, current Set) Set {
	enable := !current.HasAll(keys)
	next := current.Clone()
	for _, k := range keys {
		r.apply(k, enable, next)
	}
	return next
}

func (r *Rules) apply(key string, enable bool, s Set) {
	if enable {
		s[key] = struct{}{}
		if read, ok := r.RequiresRead(key); ok {
			s[read] = struct{}{}
		}
		return
	}
	delete(s, key)
	if r == nil {
		return
	}
	for _, w := range r.cascadesTo[key] {
		delete(s, w)
	}
}

// Violation describes one broken dependency in a set.
type Violation struct {
	Key     string
	Missing string
}

// Violations lists every present write whose prerequisite read is absent,
// sorted by key.
func (r *Rules) Violations(s Set) []Violation {
	var out []Violation
	if r == nil {
		return out
	}
	for k := range s {
		if read, ok := r.requiresRead[k]; ok && !s.Has(read) {
			out = append(out, Violation{Key: k, Missing: read})
		}
	}
	for read, writes := range r.cascadesTo {
		if s.Has(read) {
			continue
		}
		for _, w := range writes {
			if s.Has(w) && w != read {
				out = append(out, Violation{Key: w, Missing: read})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Missing < out[j].Missing
	})
	return dedupe(out)
}

// Consistent reports whether s satisfies both dependency relations.
func (r *Rules) Consistent(s Set) bool {
	return len(r.Violations(s)) == 0
}

// Normalize returns a consistent copy of s: prerequisite reads of present
// writes are added first, then writes cascading from still-absent reads are
// removed. Used when a role arrives from storage in an unknown state.
func (r *Rules) Normalize(s Set) Set {
	next := s.Clone()
	if r == nil {
		return next
	}
	for k := range s {
		if read, ok := r.requiresRead[k]; ok {
			next[read] = struct{}{}
		}
	}
	for read, writes := range r.cascadesTo {
		if next.Has(read) {
			continue
		}
		for _, w := range writes {
			delete(next, w)
		}
	}
	return next
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func dedupe(in []Violation) []Violation {
	if len(in) < 2 {
		return in
	}
	out := in[:1]
	for _, v := range in[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
