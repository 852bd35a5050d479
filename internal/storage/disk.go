package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

type blobSigner interface {
	SignBlobKey(key string, ttl time.Duration) (string, time.Time, error)
	ParseBlobKey(token string) (string, error)
}

// DiskStore writes blobs under a base directory. Signed links point at the
// download endpoint with a short-lived token naming the key.
type DiskStore struct {
	baseDir     string
	downloadURL string
	signer      blobSigner
}

const DownloadPath = "/api/blobs/download"

func NewDiskStore(baseDir, publicBaseURL string, signer blobSigner) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &DiskStore{
		baseDir:     baseDir,
		downloadURL: publicBaseURL + DownloadPath,
		signer:      signer,
	}, nil
}

func (s *DiskStore) Put(ctx context.Context, key string, body io.Reader, _ int64, _ string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	absPath := s.path(key)
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}

	// write to a temp file first so a failed copy never leaves a partial blob at key
	tmp, err := os.CreateTemp(filepath.Dir(absPath), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: body}); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close blob: %w", err)
	}
	if err := os.Rename(tmpName, absPath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move blob into place: %w", err)
	}
	return nil
}

func (s *DiskStore) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

func (s *DiskStore) SignURL(_ context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	if err := ValidateKey(key); err != nil {
		return "", time.Time{}, err
	}

	token, expiresAt, err := s.signer.SignBlobKey(key, ttl)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign blob key: %w", err)
	}
	return s.downloadURL + "?token=" + url.QueryEscape(token), expiresAt, nil
}

// Resolve maps a download token to the on-disk path of its blob.
func (s *DiskStore) Resolve(token string) (string, error) {
	key, err := s.signer.ParseBlobKey(token)
	if err != nil {
		return "", err
	}
	if err := ValidateKey(key); err != nil {
		return "", err
	}

	absPath := s.path(key)
	if _, err := os.Stat(absPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrBlobMissing
		}
		return "", err
	}
	return absPath, nil
}

func (s *DiskStore) path(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
