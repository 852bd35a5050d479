package files

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cloudstore/internal/events"
	"cloudstore/internal/pkg/upstream"
	"cloudstore/internal/storage"
)

const (
	DefaultLinkTTL       = time.Hour
	DefaultMaxUploadSize = 50 * 1024 * 1024 // 50 MB
	defaultMimeType      = "application/octet-stream"
	sniffLen             = 512
)

var keyExtPattern = regexp.MustCompile(`^\.[a-z0-9]{1,16}$`)

// FolderChecker tells the file manager whether a folder belongs to a principal.
type FolderChecker interface {
	OwnsFolder(ctx context.Context, folderID, ownerID string) (bool, error)
}

type Config struct {
	LinkTTL         time.Duration
	UpstreamTimeout time.Duration
	MaxUploadSize   int64
}

// UploadInput is one binary handed to Upload. Body is read once.
type UploadInput struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
	FolderID    *string
}

type Service struct {
	repo      Repository
	intents   IntentRepository
	store     storage.Store
	folders   FolderChecker
	publisher events.Publisher
	log       zerolog.Logger
	cfg       Config
}

func NewService(
	repo Repository,
	intents IntentRepository,
	store storage.Store,
	folders FolderChecker,
	publisher events.Publisher,
	log zerolog.Logger,
	cfg Config,
) *Service {
	if cfg.LinkTTL <= 0 {
		cfg.LinkTTL = DefaultLinkTTL
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		intents:   intents,
		store:     store,
		folders:   folders,
		publisher: publisher,
		log:       log.With().Str("component", "files").Logger(),
		cfg:       cfg,
	}
}

func (s *Service) MaxUploadSize() int64 { return s.cfg.MaxUploadSize }

// Upload stores the blob first and the metadata row second. The caller only
// sees success when both exist; a failed insert deletes the blob again and
// anything left behind is tracked by an upload intent for the reconciler.
func (s *Service) Upload(ctx context.Context, ownerID string, in UploadInput) (*File, error) {
	if in.Body == nil || in.Size == 0 {
		return nil, ErrNoFile
	}
	if in.Size > s.cfg.MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	name := strings.TrimSpace(filepath.Base(in.Name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, ErrInvalidName
	}

	if in.FolderID != nil && *in.FolderID != "" {
		if s.folders == nil {
			return nil, ErrFolderNotFound
		}
		var owned bool
		err := s.call(ctx, "check folder", func(ctx context.Context) error {
			var err error
			owned, err = s.folders.OwnsFolder(ctx, *in.FolderID, ownerID)
			return err
		})
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, ErrFolderNotFound
		}
	} else {
		in.FolderID = nil
	}

	body, mimeType := detectMimeType(in.Body, in.ContentType)

	key := fmt.Sprintf("%s/%s%s", ownerID, uuid.NewString(), keyExtension(name))
	intent := &BlobIntent{
		ID:         uuid.NewString(),
		Op:         IntentUpload,
		StorageKey: key,
		OwnerID:    ownerID,
	}
	if err := s.call(ctx, "record upload intent", func(ctx context.Context) error {
		return s.intents.Create(ctx, intent)
	}); err != nil {
		return nil, err
	}

	if err := s.call(ctx, "put blob", func(ctx context.Context) error {
		return s.store.Put(ctx, key, body, in.Size, mimeType)
	}); err != nil {
		// a failed put may still have written the object
		s.compensateUpload(ctx, intent)
		return nil, err
	}

	file := &File{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Name:       name,
		Size:       in.Size,
		MimeType:   mimeType,
		StorageKey: key,
		FolderID:   in.FolderID,
	}
	if err := s.call(ctx, "insert file", func(ctx context.Context) error {
		return s.repo.Create(ctx, file)
	}); err != nil {
		s.compensateUpload(ctx, intent)
		return nil, err
	}

	s.clearIntent(ctx, intent)

	s.publish(ctx, events.FileUploaded, file, map[string]any{
		"name":      file.Name,
		"size":      file.Size,
		"mime_type": file.MimeType,
	})
	return file, nil
}

func (s *Service) Rename(ctx context.Context, ownerID, id, name string) (*File, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	f, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if f.IsDeleted {
		return nil, ErrFileInTrash
	}

	var renamed *File
	err = s.call(ctx, "rename file", func(ctx context.Context) error {
		var err error
		renamed, err = s.repo.Rename(ctx, id, ownerID, name)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.FileRenamed, renamed, map[string]any{"old_name": f.Name, "name": renamed.Name})
	return renamed, nil
}

func (s *Service) ToggleFavorite(ctx context.Context, ownerID, id string) (bool, error) {
	var value bool
	err := s.call(ctx, "toggle favorite", func(ctx context.Context) error {
		var err error
		value, err = s.repo.ToggleFavorite(ctx, id, ownerID)
		return err
	})
	if err != nil {
		return false, err
	}

	s.publishID(ctx, events.FileFavoriteToggled, id, ownerID, map[string]any{"is_favorite": value})
	return value, nil
}

// SoftDelete moves a file to the trash. Trashing a trashed file is a no-op.
func (s *Service) SoftDelete(ctx context.Context, ownerID, id string) error {
	f, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if f.IsDeleted {
		return nil
	}

	if err := s.call(ctx, "trash file", func(ctx context.Context) error {
		return s.repo.SetDeleted(ctx, id, ownerID, true)
	}); err != nil {
		return err
	}

	s.publish(ctx, events.FileTrashed, f, nil)
	return nil
}

// Restore brings a file back from the trash. Restoring an active file is a no-op.
func (s *Service) Restore(ctx context.Context, ownerID, id string) error {
	f, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !f.IsDeleted {
		return nil
	}

	if err := s.call(ctx, "restore file", func(ctx context.Context) error {
		return s.repo.SetDeleted(ctx, id, ownerID, false)
	}); err != nil {
		return err
	}

	s.publish(ctx, events.FileRestored, f, nil)
	return nil
}

// Purge permanently removes a trashed file: blob first, then the row. If the
// blob delete fails the row is kept and the purge intent is left for the
// reconciler, which completes the purge once the store answers again.
func (s *Service) Purge(ctx context.Context, ownerID, id string) error {
	f, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !f.IsDeleted {
		return ErrFileNotInTrash
	}

	fileID := f.ID
	intent := &BlobIntent{
		ID:         uuid.NewString(),
		Op:         IntentPurge,
		StorageKey: f.StorageKey,
		OwnerID:    ownerID,
		FileID:     &fileID,
	}
	if err := s.call(ctx, "record purge intent", func(ctx context.Context) error {
		return s.intents.Create(ctx, intent)
	}); err != nil {
		return err
	}

	if err := s.call(ctx, "delete blob", func(ctx context.Context) error {
		return s.store.Delete(ctx, f.StorageKey)
	}); err != nil {
		// a failed delete may still have removed the object; the intent
		// stays so the reconciler finishes the purge
		s.log.Error().Err(err).
			Str("file_id", f.ID).
			Str("intent_id", intent.ID).
			Msg("purge blob delete failed, left for reconciler")
		return err
	}

	if err := s.call(ctx, "delete file", func(ctx context.Context) error {
		return s.repo.DeleteWithIntent(ctx, f.ID, intent.ID)
	}); err != nil {
		// blob is gone; the reconciler finishes the purge from the intent
		s.log.Error().Err(err).
			Str("file_id", f.ID).
			Str("intent_id", intent.ID).
			Msg("purge left metadata row behind")
		return err
	}

	s.publish(ctx, events.FilePurged, f, nil)
	return nil
}

func (s *Service) List(ctx context.Context, ownerID string) ([]File, error) {
	var files []File
	err := s.call(ctx, "list files", func(ctx context.Context) error {
		var err error
		files, err = s.repo.ListActive(ctx, ownerID)
		return err
	})
	return files, err
}

func (s *Service) ListTrash(ctx context.Context, ownerID string) ([]File, error) {
	var files []File
	err := s.call(ctx, "list trash", func(ctx context.Context) error {
		var err error
		files, err = s.repo.ListTrash(ctx, ownerID)
		return err
	})
	return files, err
}

func (s *Service) Search(ctx context.Context, ownerID, query string) ([]File, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}

	var files []File
	err := s.call(ctx, "search files", func(ctx context.Context) error {
		var err error
		files, err = s.repo.Search(ctx, ownerID, query)
		return err
	})
	return files, err
}

// GetLink issues a signed URL for an owned file, trashed or not.
func (s *Service) GetLink(ctx context.Context, ownerID, id string) (*Link, error) {
	f, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	var link Link
	err = s.call(ctx, "sign url", func(ctx context.Context) error {
		var err error
		link.URL, link.ExpiresAt, err = s.store.SignURL(ctx, f.StorageKey, s.cfg.LinkTTL)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// loadOwned is the single ownership check: absent and foreign ids are
// indistinguishable to the caller.
func (s *Service) loadOwned(ctx context.Context, ownerID, id string) (*File, error) {
	if strings.TrimSpace(id) == "" || ownerID == "" {
		return nil, ErrNotFound
	}

	var f *File
	err := s.call(ctx, "load file", func(ctx context.Context) error {
		var err error
		f, err = s.repo.GetOwned(ctx, id, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := upstream.Call(ctx, s.cfg.UpstreamTimeout, fn)
	if err == nil || isDomainError(err) {
		return err
	}
	return upstream.Failure(op, err)
}

// compensateUpload removes a blob whose metadata row was never written. If
// that fails too the intent stays for the reconciler.
func (s *Service) compensateUpload(ctx context.Context, intent *BlobIntent) {
	ctx = context.WithoutCancel(ctx)

	if err := s.call(ctx, "delete orphan blob", func(ctx context.Context) error {
		return s.store.Delete(ctx, intent.StorageKey)
	}); err != nil {
		s.log.Error().Err(err).
			Str("storage_key", intent.StorageKey).
			Str("owner_id", intent.OwnerID).
			Str("intent_id", intent.ID).
			Msg("orphan blob left for reconciler")
		return
	}
	s.clearIntent(ctx, intent)
}

func (s *Service) clearIntent(ctx context.Context, intent *BlobIntent) {
	ctx = context.WithoutCancel(ctx)

	if err := s.call(ctx, "clear intent", func(ctx context.Context) error {
		return s.intents.Delete(ctx, intent.ID)
	}); err != nil {
		s.log.Warn().Err(err).
			Str("intent_id", intent.ID).
			Str("op", intent.Op).
			Msg("failed to clear blob intent")
	}
}

func (s *Service) publish(ctx context.Context, eventType string, f *File, attrs map[string]any) {
	s.publishID(ctx, eventType, f.ID, f.OwnerID, attrs)
}

func (s *Service) publishID(ctx context.Context, eventType, id, ownerID string, attrs map[string]any) {
	evt := events.New(eventType, events.AssetFile, id, ownerID, attrs)
	if err := s.publisher.Publish(context.WithoutCancel(ctx), evt); err != nil {
		s.log.Warn().Err(err).
			Str("event_type", eventType).
			Str("file_id", id).
			Msg("failed to publish event")
	}
}

// keyExtension keeps a short alphanumeric extension for the storage key and
// drops anything else; the display name is stored separately.
func keyExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if !keyExtPattern.MatchString(ext) {
		return ""
	}
	return ext
}

// detectMimeType trusts an explicit content type and sniffs the first bytes
// otherwise. The returned reader still yields the whole body and stays
// seekable when body was, which S3 over plain http requires.
func detectMimeType(body io.Reader, declared string) (io.Reader, string) {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "" && mt != defaultMimeType {
		return body, mt
	}

	if rs, ok := body.(io.ReadSeeker); ok {
		head := make([]byte, sniffLen)
		n, _ := io.ReadFull(rs, head)
		if _, err := rs.Seek(0, io.SeekStart); err == nil {
			return rs, sniffedType(head[:n])
		}
		// the seek failed after a partial read; keep the consumed bytes in front
		return io.MultiReader(bytes.NewReader(head[:n]), rs), sniffedType(head[:n])
	}

	br := bufio.NewReaderSize(body, sniffLen)
	head, _ := br.Peek(sniffLen)
	return br, sniffedType(head)
}

func sniffedType(head []byte) string {
	if len(head) == 0 {
		return defaultMimeType
	}
	mt, _, err := mime.ParseMediaType(http.DetectContentType(head))
	if err != nil {
		return defaultMimeType
	}
	return mt
}
