package cli

import (
	"context"
	"fmt"

	"github.com/vedantshetti/infyair-frontend/internal/client/models"
	"github.com/vedantshetti/infyair-frontend/internal/client/session"
)

// route names double as REPL commands.
const (
	routeDashboard = "dashboard"
	routeProducts  = "products"
	routeProduct   = "product"
	routeGeography = "geography"
	routeAdmin     = "admin"
)

type route struct {
	requirement session.RouteRequirement
	render      func(a *App, ctx context.Context, args []string) error
}

// routeTable mirrors the web client's router: every view requires an
// authenticated session, and the admin view additionally requires the
// admin role.
var routeTable = map[string]route{
	routeDashboard: {render: (*App).viewDashboard},
	routeProducts:  {render: (*App).viewProducts},
	routeProduct:   {render: (*App).viewProductDetail},
	routeGeography: {render: (*App).viewGeography},
	routeAdmin: {
		requirement: session.RouteRequirement{RequiredRole: models.RoleAdmin},
		render:      (*App).viewAdmin,
	},
}

// Navigate resolves a command against the route table through the access
// guard. A redirect-to-login starts the login flow; a redirect-to-fallback
// lands on the dashboard, the default authenticated view.
func (a *App) Navigate(ctx context.Context, name string, args []string) error {
	r, ok := routeTable[name]
	if !ok {
		return fmt.Errorf("unknown route: %s", name)
	}

	switch session.Decide(a.session.Snapshot(), r.requirement) {
	case session.RedirectToLogin:
		fmt.Fprintln(a.out, noteStyle.Render("Please log in to continue."))
		return a.Login(ctx)
	case session.RedirectToFallback:
		fmt.Fprintln(a.out, errorStyle.Render("Access denied: this view requires the admin role."))
		return routeTable[routeDashboard].render(a, ctx, nil)
	default:
		return r.render(a, ctx, args)
	}
}
