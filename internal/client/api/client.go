// Package api implements the HTTP client for the InfyAir backend.
//
// The backend wraps every response in a {success, data, error} JSON
// envelope. Transport-level failures are reported as ErrUnavailable so
// callers can distinguish "server said no" from "server unreachable".
package api

import (
	"context"
	"errors"

	"github.com/vedantshetti/infyair-frontend/internal/client/models"
)

var (
	// ErrUnavailable means the backend could not be reached at all.
	ErrUnavailable = errors.New("server unavailable")

	// ErrAuthRejected means the backend explicitly declined the credentials.
	// The wrapping error carries the server-supplied message when present.
	ErrAuthRejected = errors.New("authentication rejected")

	// ErrNotFound means the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)

// LoginResult is the payload of a successful login.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Authenticator is the auth surface the session manager depends on.
//
// Validate returns the server's verdict on the current token; a non-nil
// error means the call itself failed (transport) and carries no verdict.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Validate(ctx context.Context) (bool, error)
	SetAuthToken(token string)
}

// Catalog is the data surface the views depend on.
type Catalog interface {
	Products(ctx context.Context) ([]models.Product, error)
	ProductByID(ctx context.Context, id string) (*models.Product, error)
	Geography(ctx context.Context) ([]models.GeoRecord, error)
}
