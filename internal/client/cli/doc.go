// Package cli provides the interactive InfyAir terminal client.
//
// It wires configuration, the local credential store, the backend API
// client, and an interactive REPL that navigates between role-gated views.
// Typical flow: restore the previous session from disk, prompt for
// credentials when needed, and execute navigation commands.
//
// Key features:
//   - Login / Logout against the backend auth endpoint
//   - Dashboard, products, product detail and geography views
//   - Admin-only view, gated by role
//   - Session-expiry notifications surfaced at the prompt
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL, and the route table in routes.go for details.
package cli
