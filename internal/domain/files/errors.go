package files

import "errors"

var (
	ErrNotFound       = errors.New("file not found")
	ErrNoFile         = errors.New("no file uploaded")
	ErrFileTooLarge   = errors.New("file exceeds maximum allowed size")
	ErrInvalidName    = errors.New("file name is required")
	ErrQueryRequired  = errors.New("search query is required")
	ErrFolderNotFound = errors.New("folder not found")
	ErrFileInTrash    = errors.New("file is in trash")
	ErrFileNotInTrash = errors.New("file must be moved to trash before permanent deletion")
)

func isDomainError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrNoFile),
		errors.Is(err, ErrFileTooLarge),
		errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrQueryRequired),
		errors.Is(err, ErrFolderNotFound),
		errors.Is(err, ErrFileInTrash),
		errors.Is(err, ErrFileNotInTrash):
		return true
	}
	return false
}
