package shares

import "errors"

var (
	ErrForbidden    = errors.New("you do not own this file")
	ErrInvalidEmail = errors.New("target email is invalid")
	ErrInvalidRole  = errors.New("role must be viewer or editor")
)
