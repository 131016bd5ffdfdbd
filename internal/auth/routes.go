package auth

import (
	"sort"
	"strings"
	"sync"

	"kitchen_control/internal/models"
)

// RouteTable records the role set every guarded route prefix declares at
// registration. Lookups use the longest registered prefix on a path segment
// boundary, so "/store" covers "/store/cart" but not "/storefront".
type RouteTable struct {
	mu     sync.RWMutex
	routes map[string]RoleSet
}

func NewRouteTable() *RouteTable {
	return &RouteTable{routes: make(map[string]RoleSet)}
}

// Register declares the roles allowed under prefix. Registering the same
// prefix twice replaces the earlier set.
func (t *RouteTable) Register(prefix string, roles RoleSet) {
	prefix = normalizePrefix(prefix)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes[prefix] = roles
}

// Lookup returns the role set guarding path.
func (t *RouteTable) Lookup(path string) (RoleSet, bool) {
	path = normalizePrefix(path)
	t.mu.RLock()
	defer t.mu.RUnlock()

	best := ""
	var found RoleSet
	ok := false
	for prefix, roles := range t.routes {
		if !covers(prefix, path) {
			continue
		}
		if !ok || len(prefix) > len(best) {
			best, found, ok = prefix, roles, true
		}
	}
	return found, ok
}

// AllowedPrefixes lists the prefixes role may enter, sorted. Used for the
// navigation menu.
func (t *RouteTable) AllowedPrefixes(role models.RoleID) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	for prefix, roles := range t.routes {
		if len(roles) == 0 || roles.Contains(role) {
			out = append(out, prefix)
		}
	}
	sort.Strings(out)
	return out
}

func covers(prefix, path string) bool {
	if prefix == "/" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func normalizePrefix(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
