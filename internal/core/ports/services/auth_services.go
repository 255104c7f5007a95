package services

import (
	"context"
	"time"

	"github.com/litc-ly/claims_backend/internal/core/domain"
)

// AuthSvcFacade issues access tokens for the claims backend. Google sign-in
// never provisions accounts; the Google identity must match an existing user.
type AuthSvcFacade interface {
	// Login verifies password credentials and returns the user plus a signed
	// access token and its expiry.
	Login(ctx context.Context, username string, password string) (*domain.User, string, time.Time, error)

	// LoginWithGoogleIDToken validates a Google ID token and logs in the
	// matching user.
	LoginWithGoogleIDToken(ctx context.Context, idToken string) (*domain.User, string, time.Time, error)

	// GenerateStateString creates the CSRF state for the OAuth redirect flow.
	GenerateStateString(ctx context.Context) (string, error)

	// GoogleLoginURL returns the Google consent page URL for the given state.
	GoogleLoginURL(state string) string

	// CompleteGoogleLogin exchanges the OAuth code, fetches the Google user
	// info and logs in the matching user.
	CompleteGoogleLogin(ctx context.Context, code string) (*domain.User, string, time.Time, error)
}
