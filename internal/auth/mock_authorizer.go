package auth

import "context"

// MockAuthorizer resolves fixed tokens to fixed identities. Tests and local
// development only.
type MockAuthorizer struct {
	tokens map[string]string // token -> user id
}

func NewMockAuthorizer(tokens map[string]string) *MockAuthorizer {
	if tokens == nil {
		tokens = map[string]string{}
	}
	return &MockAuthorizer{tokens: tokens}
}

func (m *MockAuthorizer) Authorize(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	uid, ok := m.tokens[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: uid}, nil
}
