package access

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/MrEthical07/hrauth/permission"
	"gopkg.in/yaml.v3"
)

// Route declares which permissions open a path. A trailing "/*" makes the
// route cover the prefix and everything beneath it.
type Route struct {
	Path               string   `yaml:"path"`
	AllowedPermissions []string `yaml:"allowed_permissions"`
}

// Guard is a compiled route.
type Guard struct {
	Pattern string
	Allowed permission.Set
}

// RouteTable resolves request paths to guards. It is immutable after
// construction.
type RouteTable struct {
	exact    map[string]Guard
	prefixes []prefixGuard
}

type prefixGuard struct {
	prefix string
	guard  Guard
}

type routeFile struct {
	Routes []Route `yaml:"routes"`
}

// NewRouteTable validates routes and compiles them. Every route needs at
// least one well-formed permission key; a guard with none would silently
// lock the route to the super-role.
func NewRouteTable(routes []Route) (*RouteTable, error) {
	t := &RouteTable{exact: make(map[string]Guard, len(routes))}
	seen := make(map[string]struct{}, len(routes))

	for _, r := range routes {
		p, wildcard, err := normalizePattern(r.Path)
		if err != nil {
			return nil, err
		}
		if len(r.AllowedPermissions) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyGuard, r.Path)
		}
		for _, k := range r.AllowedPermissions {
			if !permission.ValidKey(k) {
				return nil, fmt.Errorf("%w: %s: permission %q", ErrInvalidRoute, r.Path, k)
			}
		}

		id := p
		if wildcard {
			id += "/*"
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, r.Path)
		}
		seen[id] = struct{}{}

		g := Guard{Pattern: id, Allowed: permission.NewSet(r.AllowedPermissions...)}
		if wildcard {
			t.prefixes = append(t.prefixes, prefixGuard{prefix: p, guard: g})
		} else {
			t.exact[p] = g
		}
	}

	sort.Slice(t.prefixes, func(i, j int) bool {
		return len(t.prefixes[i].prefix) > len(t.prefixes[j].prefix)
	})
	return t, nil
}

// MustRouteTable is NewRouteTable for static tables; it panics on error.
func MustRouteTable(routes []Route) *RouteTable {
	t, err := NewRouteTable(routes)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadRoutes reads a YAML document of the form
//
//	routes:
//	  - path: /admin/employees
//	    allowed_permissions: [employee:read_all]
func LoadRoutes(r io.Reader) (*RouteTable, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc routeFile
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode routes: %w", err)
	}
	return NewRouteTable(doc.Routes)
}

// Match returns the guard for requestPath. Exact routes win over wildcard
// routes; among wildcards the longest prefix wins.
func (t *RouteTable) Match(requestPath string) (Guard, bool) {
	if t == nil {
		return Guard{}, false
	}
	p := cleanPath(requestPath)
	if g, ok := t.exact[p]; ok {
		return g, true
	}
	for _, pg := range t.prefixes {
		if p == pg.prefix || strings.HasPrefix(p, pg.prefix+"/") || pg.prefix == "" {
			return pg.guard, true
		}
	}
	return Guard{}, false
}

// Len returns the number of routes.
func (t *RouteTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.exact) + len(t.prefixes)
}

func normalizePattern(raw string) (string, bool, error) {
	if !strings.HasPrefix(raw, "/") {
		return "", false, fmt.Errorf("%w: path %q must start with /", ErrInvalidRoute, raw)
	}
	wildcard := false
	p := raw
	if strings.HasSuffix(p, "/*") {
		wildcard = true
		p = strings.TrimSuffix(p, "/*")
	}
	if strings.Contains(p, "*") {
		return "", false, fmt.Errorf("%w: path %q: wildcard only allowed as final /*", ErrInvalidRoute, raw)
	}
	if p == "" {
		// "/*" covers every path.
		return "", true, nil
	}
	p = cleanPath(p)
	if p == RootPath && !wildcard {
		return "", false, fmt.Errorf("%w: %q always redirects to the role home", ErrInvalidRoute, raw)
	}
	return p, wildcard, nil
}

func cleanPath(p string) string {
	if p == "" {
		return RootPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
