package shares

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cloudstore/internal/domain/files"
	"cloudstore/internal/events"
	"cloudstore/internal/pkg/upstream"
)

// FileLookup resolves a file only when it belongs to ownerID.
type FileLookup interface {
	GetOwned(ctx context.Context, id, ownerID string) (*files.File, error)
}

type Service struct {
	repo      Repository
	files     FileLookup
	publisher events.Publisher
	log       zerolog.Logger
	timeout   time.Duration
}

func NewService(repo Repository, fileLookup FileLookup, publisher events.Publisher, log zerolog.Logger, timeout time.Duration) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		files:     fileLookup,
		publisher: publisher,
		log:       log.With().Str("component", "shares").Logger(),
		timeout:   timeout,
	}
}

// Share grants targetEmail a role on a file the caller owns. An empty role
// means viewer. Grants are recorded only; reads never consult them.
func (s *Service) Share(ctx context.Context, ownerID, fileID, targetEmail, role string) (*Share, error) {
	targetEmail = strings.ToLower(strings.TrimSpace(targetEmail))
	if addr, err := mail.ParseAddress(targetEmail); err != nil || addr.Address != targetEmail {
		return nil, ErrInvalidEmail
	}

	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = RoleViewer
	}
	if role != RoleViewer && role != RoleEditor {
		return nil, ErrInvalidRole
	}

	err := s.call(ctx, "load file", func(ctx context.Context) error {
		_, err := s.files.GetOwned(ctx, fileID, ownerID)
		return err
	})
	if errors.Is(err, files.ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	var share *Share
	err = s.call(ctx, "save share", func(ctx context.Context) error {
		var err error
		share, err = s.repo.Upsert(ctx, &Share{
			ID:              uuid.NewString(),
			FileID:          fileID,
			OwnerID:         ownerID,
			SharedWithEmail: targetEmail,
			Role:            role,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	evt := events.New(events.FileShared, events.AssetFile, fileID, ownerID, map[string]any{
		"shared_with_email": share.SharedWithEmail,
		"role":              share.Role,
	})
	if err := s.publisher.Publish(context.WithoutCancel(ctx), evt); err != nil {
		s.log.Warn().Err(err).Str("file_id", fileID).Msg("failed to publish event")
	}
	return share, nil
}

func (s *Service) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := upstream.Call(ctx, s.timeout, fn)
	if err == nil || errors.Is(err, files.ErrNotFound) {
		return err
	}
	return upstream.Failure(op, err)
}
