package folders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cloudstore/internal/events"
	"cloudstore/internal/pkg/upstream"
)

type Service struct {
	repo      Repository
	publisher events.Publisher
	log       zerolog.Logger
	timeout   time.Duration
}

func NewService(repo Repository, publisher events.Publisher, log zerolog.Logger, timeout time.Duration) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log.With().Str("component", "folders").Logger(),
		timeout:   timeout,
	}
}

// Create adds a folder. A parent, when given, must belong to the same owner.
func (s *Service) Create(ctx context.Context, ownerID, name string, parentID *string) (*Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	if parentID != nil && strings.TrimSpace(*parentID) == "" {
		parentID = nil
	}
	if parentID != nil {
		err := s.call(ctx, "load parent folder", func(ctx context.Context) error {
			_, err := s.repo.GetOwned(ctx, *parentID, ownerID)
			return err
		})
		if errors.Is(err, ErrNotFound) {
			return nil, ErrParentNotFound
		}
		if err != nil {
			return nil, err
		}
	}

	folder := &Folder{
		ID:       uuid.NewString(),
		Name:     name,
		OwnerID:  ownerID,
		ParentID: parentID,
	}
	if err := s.call(ctx, "create folder", func(ctx context.Context) error {
		return s.repo.Create(ctx, folder)
	}); err != nil {
		return nil, err
	}

	attrs := map[string]any{"name": folder.Name}
	if parentID != nil {
		attrs["parent_id"] = *parentID
	}
	evt := events.New(events.FolderCreated, events.AssetFolder, folder.ID, ownerID, attrs)
	if err := s.publisher.Publish(context.WithoutCancel(ctx), evt); err != nil {
		s.log.Warn().Err(err).Str("folder_id", folder.ID).Msg("failed to publish event")
	}
	return folder, nil
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Folder, error) {
	var folders []Folder
	err := s.call(ctx, "list folders", func(ctx context.Context) error {
		var err error
		folders, err = s.repo.ListByOwner(ctx, ownerID)
		return err
	})
	return folders, err
}

// OwnsFolder reports whether folderID exists and belongs to ownerID.
func (s *Service) OwnsFolder(ctx context.Context, folderID, ownerID string) (bool, error) {
	err := s.call(ctx, "load folder", func(ctx context.Context) error {
		_, err := s.repo.GetOwned(ctx, folderID, ownerID)
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := upstream.Call(ctx, s.timeout, fn)
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	return upstream.Failure(op, err)
}
