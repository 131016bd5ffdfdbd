package auth

import (
	"net/url"
	"sort"
	"strings"

	"kitchen_control/internal/models"
)

// LoginPath is the only public view.
const LoginPath = "/login"

// homePaths is the role -> landing view mapping.
var homePaths = map[models.RoleID]string{
	models.RoleAdmin:             "/admin",
	models.RoleManager:           "/manager",
	models.RoleStoreStaff:        "/store",
	models.RoleKitchenManager:    "/kitchen",
	models.RoleSupplyCoordinator: "/coordinator",
	models.RoleShipper:           "/shipper",
}

// HomePath returns the landing view of role. Unknown roles go to the login view.
func HomePath(role models.RoleID) string {
	if p, ok := homePaths[role]; ok {
		return p
	}
	return LoginPath
}

// LoginRedirect builds the login location that returns the user to from after
// signing in.
func LoginRedirect(from string) string {
	if from == "" || from == "/" || strings.HasPrefix(from, LoginPath) {
		return LoginPath
	}
	return LoginPath + "?from=" + url.QueryEscape(from)
}

// SafeReturnPath validates a "from" parameter: only local absolute paths are
// honoured, anything else falls back to the role's home. Browsers treat a
// backslash like a slash, so "/\host" is rejected along with "//host".
func SafeReturnPath(from string, role models.RoleID) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") ||
		strings.Contains(from, "\\") || strings.HasPrefix(from, LoginPath) {
		return HomePath(role)
	}
	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return HomePath(role)
	}
	return from
}

// RoleSet is the set of roles allowed on a route.
type RoleSet map[models.RoleID]struct{}

// Roles builds a RoleSet.
func Roles(roles ...models.RoleID) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

func (s RoleSet) Contains(r models.RoleID) bool {
	_, ok := s[r]
	return ok
}

// List returns the roles in id order.
func (s RoleSet) List() []models.RoleID {
	out := make([]models.RoleID, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Outcome of an authorization check.
type Outcome int

const (
	Allow Outcome = iota
	Redirect
	RedirectToLogin
)

// Decision is the result of Authorize. Location is empty for Allow.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Authorize decides whether p may see path. An empty required set admits any
// authenticated principal. A principal whose role is not resolvable is
// treated as anonymous.
func Authorize(p *models.Principal, path string, required RoleSet) Decision {
	if p == nil || !p.Role.Valid() {
		return Decision{Outcome: RedirectToLogin, Location: LoginRedirect(path)}
	}
	if len(required) > 0 && !required.Contains(p.Role) {
		return Decision{Outcome: Redirect, Location: HomePath(p.Role)}
	}
	return Decision{Outcome: Allow}
}
