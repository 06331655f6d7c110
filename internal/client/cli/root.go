package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"
)

// getStatus builds the prompt status fragment: username, role, and the
// time left on the session.
func (a *App) getStatus() string {
	s := a.session.Snapshot()
	if s.User == nil {
		return "(not logged in)"
	}
	return fmt.Sprintf("(%s %s, %s left)", s.User.Username, s.User.Role,
		a.session.TimeRemaining().Round(time.Second))
}

// drainNotices collects pending session notifications without blocking.
func (a *App) drainNotices() []string {
	var notices []string
	for {
		select {
		case n := <-a.session.Events():
			notices = append(notices, noteStyle.Render(string(n)))
		default:
			return notices
		}
	}
}

// Root runs the interactive loop until the user exits. Users start at the
// dashboard when a session was restored, at the login flow otherwise,
// matching the web client's default redirect.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to the InfyAir dashboard (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	if a.isLoggedIn() {
		_ = a.Navigate(ctx, routeDashboard, nil)
	} else {
		_ = a.Login(ctx)
	}

	runREPL(ctx, a, a.getStatus, a.drainNotices, scanner)
}
