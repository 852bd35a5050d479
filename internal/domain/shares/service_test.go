package shares

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cloudstore/internal/database"
	"cloudstore/internal/domain/files"
	"cloudstore/internal/events"
	"cloudstore/internal/middleware"
	"cloudstore/internal/pkg/logger"
)

type fixture struct {
	db    *gorm.DB
	svc   *Service
	repo  Repository
	files files.Repository
	rec   *events.Recorder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:shares_test_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, &files.File{}, &Share{}))

	fx := &fixture{
		db:    db,
		repo:  NewRepository(db),
		files: files.NewRepository(db),
		rec:   &events.Recorder{},
	}
	fx.svc = NewService(fx.repo, fx.files, fx.rec, logger.Nop(), 2*time.Second)
	return fx
}

func (fx *fixture) seedFile(t *testing.T, id, owner string) {
	t.Helper()
	require.NoError(t, fx.files.Create(context.Background(), &files.File{
		ID:         id,
		OwnerID:    owner,
		Name:       id + ".txt",
		Size:       3,
		MimeType:   "text/plain",
		StorageKey: owner + "/" + id + ".txt",
	}))
}

func TestShare_DefaultsToViewer(t *testing.T) {
	fx := setup(t)
	fx.seedFile(t, "file-f", "user-a")

	share, err := fx.svc.Share(context.Background(), "user-a", "file-f", "B@Example.com", "")
	require.NoError(t, err)

	assert.Equal(t, "file-f", share.FileID)
	assert.Equal(t, "user-a", share.OwnerID)
	assert.Equal(t, "b@example.com", share.SharedWithEmail)
	assert.Equal(t, RoleViewer, share.Role)
	assert.Equal(t, []string{events.FileShared}, fx.rec.Types())
}

func TestShare_NonOwnerIsForbidden(t *testing.T) {
	fx := setup(t)
	fx.seedFile(t, "file-f", "user-a")
	ctx := context.Background()

	_, err := fx.svc.Share(ctx, "user-c", "file-f", "b@example.com", "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = fx.svc.Share(ctx, "user-c", "no-such-file", "b@example.com", "")
	assert.ErrorIs(t, err, ErrForbidden)

	grants, err := fx.repo.ListByFile(ctx, "file-f")
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestShare_RepeatUpdatesRole(t *testing.T) {
	fx := setup(t)
	fx.seedFile(t, "file-f", "user-a")
	ctx := context.Background()

	first, err := fx.svc.Share(ctx, "user-a", "file-f", "b@example.com", "viewer")
	require.NoError(t, err)

	second, err := fx.svc.Share(ctx, "user-a", "file-f", "b@example.com", "editor")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, RoleEditor, second.Role)

	grants, err := fx.repo.ListByFile(ctx, "file-f")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, RoleEditor, grants[0].Role)
}

func TestShare_Validation(t *testing.T) {
	fx := setup(t)
	fx.seedFile(t, "file-f", "user-a")
	ctx := context.Background()

	_, err := fx.svc.Share(ctx, "user-a", "file-f", "not-an-email", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = fx.svc.Share(ctx, "user-a", "file-f", "b@example.com", "owner")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestShare_GrantsGoAwayWithFile(t *testing.T) {
	fx := setup(t)
	fx.seedFile(t, "file-f", "user-a")
	ctx := context.Background()

	_, err := fx.svc.Share(ctx, "user-a", "file-f", "b@example.com", "")
	require.NoError(t, err)

	require.NoError(t, fx.db.Where("id = ?", "file-f").Delete(&files.File{}).Error)

	grants, err := fx.repo.ListByFile(ctx, "file-f")
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestHandler_Share(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fx := setup(t)
	fx.seedFile(t, "file-f", "user-a")

	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, c.GetHeader("X-Test-User"))
		c.Next()
	})
	RegisterRoutes(api, NewHandler(fx.svc))

	post := func(user, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/shares", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", user)
		r.ServeHTTP(w, req)
		return w
	}

	w := post("user-a", `{"fileId":"file-f","targetEmail":"b@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"role":"viewer"`)
	assert.Contains(t, w.Body.String(), `"message"`)

	w = post("user-c", `{"fileId":"file-f","targetEmail":"b@example.com"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")

	w = post("user-a", `{"fileId":"file-f","targetEmail":"b@example.com","role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")

	w = post("user-a", `{"targetEmail":"b@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
