package session

import "github.com/vedantshetti/infyair-frontend/internal/client/models"

// Decision is the navigation outcome for a protected route.
type Decision int

const (
	// Allow renders the requested view.
	Allow Decision = iota

	// RedirectToLogin sends the user to the login flow.
	RedirectToLogin

	// RedirectToFallback sends the user to the default landing view
	// (the dashboard) because their role does not meet the requirement.
	RedirectToFallback
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToFallback:
		return "redirect-to-fallback"
	default:
		return "unknown"
	}
}

// RouteRequirement is the gate attached to a protected route. An empty
// RequiredRole means any authenticated role may enter.
type RouteRequirement struct {
	RequiredRole models.Role
}

// Decide maps the current session and a route's requirement to a navigation
// decision. It is pure: no side effects, no clock. Callers must not consult
// the guard while the session is still restoring.
func Decide(s Session, req RouteRequirement) Decision {
	if s.Status != StatusAuthenticated || s.User == nil {
		return RedirectToLogin
	}
	if req.RequiredRole == "" {
		return Allow
	}
	if s.User.Role.Satisfies(req.RequiredRole) {
		return Allow
	}
	return RedirectToFallback
}
