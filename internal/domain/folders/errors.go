package folders

import "errors"

var (
	ErrNotFound       = errors.New("folder not found")
	ErrParentNotFound = errors.New("parent folder not found")
	ErrInvalidName    = errors.New("folder name is required")
)
