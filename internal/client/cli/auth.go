package cli

import (
	"context"
	"fmt"
	"time"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts the user for credentials and delegates to the session
// manager. Empty fields are rejected before any network call. A rejected
// login prints the server's message; state is left untouched so the user
// can simply retry. The password buffer is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	fmt.Fprintln(a.out, hintStyle.Render("Hint: Use admin/admin123 for Admin role or viewer/viewer123 for Viewer role"))

	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	if username == "" || len(password) == 0 {
		fmt.Fprintln(a.out, errorStyle.Render("Please enter both username and password"))
		return nil
	}

	if err := a.session.Login(ctx, username, string(password)); err != nil {
		fmt.Fprintln(a.out, errorStyle.Render(err.Error()))
		return nil
	}

	s := a.session.Snapshot()
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", s.User.Username, s.User.Role)
	return nil
}

// Logout revokes the current session. Safe to call when not logged in.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		a.log.Error(ctx, "logout failed", "error", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI prints the current session's read model.
func (a *App) WhoAmI(ctx context.Context) error {
	s := a.session.Snapshot()
	if s.User == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s), session expires in %s\n",
		s.User.Username, s.User.Role, a.session.TimeRemaining().Round(time.Second))
	return nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
