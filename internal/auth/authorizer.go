package auth

import "context"

// Identity describes an authenticated user as reported by the auth
// collaborator.
type Identity struct {
	UserID string `json:"userId"`
}

// Authorizer validates bearer session tokens.
type Authorizer interface {
	// Authorize resolves a session token to an identity, or returns
	// ErrInvalidToken when the token is missing, malformed or expired.
	Authorize(ctx context.Context, token string) (*Identity, error)
}
