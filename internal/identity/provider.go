package identity

import "context"

// Provider is the identity collaborator: account creation, password sign-in
// and bearer-token verification.
type Provider interface {
	SignUp(ctx context.Context, email, password, fullName string) (*User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	Verify(ctx context.Context, token string) (*Principal, error)
}
