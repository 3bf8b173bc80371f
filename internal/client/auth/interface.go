package auth

import (
	"context"

	"github.com/iudanet/metareview/internal/models"
	pkgapi "github.com/iudanet/metareview/pkg/api"
)

// API defines the authentication endpoints used by the session.
// Implemented by *api.Client.
type API interface {
	// IssueToken exchanges credentials for a bearer token
	IssueToken(ctx context.Context, email, password string) (*pkgapi.TokenResponse, error)

	// Register creates an account; it never issues a token
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*models.User, error)

	// CurrentUser returns the owner of the token
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// Credentials are the login form values
type Credentials struct {
	Email    string
	Password string
}
