package files

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cloudstore/internal/database"
	"cloudstore/internal/events"
	"cloudstore/internal/pkg/logger"
	"cloudstore/internal/storage"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:files_test_%s?mode=memory&cache=shared", name)
	db, err := database.Connect(dsn, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, &File{}, &BlobIntent{}))
	return db
}

// flakyStore wraps the in-memory store with switchable failures.
type flakyStore struct {
	*storage.MemoryStore
	putErr    error
	deleteErr error
	signErr   error
	block     bool
	// deleteThenBlock removes the blob and then hangs until the deadline,
	// like a DeleteObject whose response is lost.
	deleteThenBlock bool
}

func (s *flakyStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if s.putErr != nil {
		return s.putErr
	}
	return s.MemoryStore.Put(ctx, key, body, size, contentType)
}

func (s *flakyStore) Delete(ctx context.Context, key string) error {
	if s.deleteThenBlock {
		if err := s.MemoryStore.Delete(ctx, key); err != nil {
			return err
		}
		<-ctx.Done()
		return ctx.Err()
	}
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.MemoryStore.Delete(ctx, key)
}

func (s *flakyStore) SignURL(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	if s.signErr != nil {
		return "", time.Time{}, s.signErr
	}
	return s.MemoryStore.SignURL(ctx, key, ttl)
}

type flakyRepo struct {
	Repository
	createErr error
	deleteErr error
}

func (r *flakyRepo) Create(ctx context.Context, f *File) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.Repository.Create(ctx, f)
}

func (r *flakyRepo) DeleteWithIntent(ctx context.Context, fileID, intentID string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	return r.Repository.DeleteWithIntent(ctx, fileID, intentID)
}

type fakeFolders map[string]string // folder id -> owner id

func (f fakeFolders) OwnsFolder(_ context.Context, folderID, ownerID string) (bool, error) {
	return f[folderID] == ownerID, nil
}

type fixture struct {
	db      *gorm.DB
	repo    *flakyRepo
	intents IntentRepository
	store   *flakyStore
	events  *events.Recorder
	svc     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupDB(t)
	fx := &fixture{
		db:      db,
		repo:    &flakyRepo{Repository: NewRepository(db)},
		intents: NewIntentRepository(db),
		store:   &flakyStore{MemoryStore: storage.NewMemoryStore()},
		events:  &events.Recorder{},
	}
	fx.svc = NewService(fx.repo, fx.intents, fx.store, fakeFolders{"folder-a": "user-a"}, fx.events, logger.Nop(), Config{
		LinkTTL:         time.Hour,
		UpstreamTimeout: 2 * time.Second,
		MaxUploadSize:   1024,
	})
	return fx
}

func (fx *fixture) reconciler() *Reconciler {
	r := NewReconciler(fx.repo, fx.intents, fx.store, logger.Nop(), 15*time.Minute, 2*time.Second)
	r.now = func() time.Time { return time.Now().Add(time.Hour) }
	return r
}

func (fx *fixture) countFiles(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, fx.db.Model(&File{}).Count(&n).Error)
	return n
}

func (fx *fixture) countIntents(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, fx.db.Model(&BlobIntent{}).Count(&n).Error)
	return n
}

func (fx *fixture) upload(t *testing.T, owner, name, content string) *File {
	t.Helper()
	f, err := fx.svc.Upload(context.Background(), owner, textUpload(name, content))
	require.NoError(t, err)
	return f
}

func textUpload(name, content string) UploadInput {
	return UploadInput{
		Name:        name,
		Size:        int64(len(content)),
		ContentType: "text/plain",
		Body:        strings.NewReader(content),
	}
}

func ids(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.ID)
	}
	return out
}
