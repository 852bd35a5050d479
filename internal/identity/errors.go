package identity

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidSignUp      = errors.New("email and password are required")
)
