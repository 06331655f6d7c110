package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vedantshetti/infyair-frontend/internal/client/api"
	"github.com/vedantshetti/infyair-frontend/internal/client/config"
	"github.com/vedantshetti/infyair-frontend/internal/client/repositories/credentials"
	"github.com/vedantshetti/infyair-frontend/internal/client/session"
	"github.com/vedantshetti/infyair-frontend/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	session *session.Manager
	catalog api.Catalog
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := credentials.OpenDatabase(ctx, c.CredentialsDSN)
	if err != nil {
		log.Error(ctx, "error initializing credential store", "error", err)
		return nil, err
	}

	apiClient := api.NewClient(c.APIBaseURL, c.RequestTimeout)
	store := credentials.NewSQLiteRepository(db)
	mgr := session.NewManager(apiClient, store, log, c.ValidateOnStart)

	return &App{
		config:  c,
		session: mgr,
		catalog: apiClient,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run restores the previous session (blocking, so the REPL never observes
// the restoring state) and enters the command loop.
func (a *App) Run(ctx context.Context) error {
	if err := a.session.Initialize(ctx); err != nil {
		return err
	}

	if s := a.session.Snapshot(); s.Status == session.StatusAuthenticated {
		fmt.Fprintf(a.out, "Welcome back, %s (%s)\n", s.User.Username, s.User.Role)
	}

	a.Root(ctx)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}
