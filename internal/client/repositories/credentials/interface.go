// Package credentials persists the current session credential (token and
// user profile) in the client's local sqlite database. Two fixed slots are
// used, "token" and "user"; both are written in a single transaction so a
// reader never observes a token from one login paired with the user of
// another.
package credentials

import (
	"context"

	"github.com/vedantshetti/infyair-frontend/internal/client/models"
)

type Repository interface {
	// Save overwrites both slots with the given credential.
	Save(ctx context.Context, cred *models.StoredCredential) error

	// Load returns the stored credential, or nil when either slot is absent.
	// A user slot that fails to parse is reported as ErrStorageRead.
	Load(ctx context.Context) (*models.StoredCredential, error)

	// Clear removes both slots. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
