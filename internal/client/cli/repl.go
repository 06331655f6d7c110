package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Navigate(ctx context.Context, name string, args []string) error
}

// runREPL starts a simple read–eval–print loop for the InfyAir client.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Navigation commands resolve
// through the access guard inside Navigate. The loop exits on scanner EOF
// or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - dashboard      — landing view (category/region breakdowns)
//	  - products       — product table (optional filter term and page)
//	  - product <id>   — single product detail
//	  - geography      — region/state/city summary
//	  - admin          — admin-only view
//	  - whoami         — session details
//	  - logout         — revoke the session
//	  - exit | quit    — leave the program
//
// Before each prompt, pending session notices (from noticeFn) are printed;
// this is how the "session expired" message reaches the user.
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, noticeFn func() []string, scanner *bufio.Scanner) {
	for {
		for _, notice := range noticeFn() {
			printlnFn(notice)
		}

		printlnFn(fmt.Sprintf("infyair> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: dashboard, products, product <id>, geography, admin, whoami, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case routeDashboard, routeProducts, routeProduct, routeGeography, routeAdmin:
			_ = a.Navigate(ctx, cmd, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			// The web client routes unknown paths to the dashboard; do the
			// same for authenticated users, otherwise point at help.
			if a.isLoggedIn() {
				_ = a.Navigate(ctx, routeDashboard, nil)
			} else {
				printlnFn("Unknown command:", cmd)
			}
		}
	}
}
