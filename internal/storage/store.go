// Package storage holds the blob store collaborator and its adapters.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

var (
	ErrInvalidKey  = errors.New("invalid storage key")
	ErrBlobMissing = errors.New("blob not found")
)

// Store addresses binaries by opaque keys. Delete of a missing key is not an
// error so compensation and reconciliation can retry freely.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	SignURL(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error)
}

// ValidateKey rejects keys that could escape a bucket prefix or base directory.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	if path.Clean(key) != key {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return ErrInvalidKey
		}
	}
	return nil
}
