package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vedantshetti/infyair-frontend/internal/client/models"
)

// ErrDecode indicates a token that is malformed or missing required claims.
// Expiration is not a decode error; callers check Claims.ExpiresAt themselves.
var ErrDecode = errors.New("malformed token")

// Claims are the fields this client needs from a token. The full claim set
// is server business; only subject, role and expiry drive the UI.
type Claims struct {
	Subject   string
	Role      models.Role
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// DecodeToken extracts the claims from a signed token without verifying the
// signature. It is a pure function: same token, same result. A token that
// cannot be parsed, or that lacks sub, role or exp, yields ErrDecode.
func DecodeToken(token string) (*Claims, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrDecode)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp claim", ErrDecode)
	}
	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: missing or unknown role claim", ErrDecode)
	}

	return &Claims{
		Subject:   claims.Subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
