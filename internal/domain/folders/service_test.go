package folders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudstore/internal/database"
	"cloudstore/internal/events"
	"cloudstore/internal/middleware"
	"cloudstore/internal/pkg/logger"
)

func setupService(t *testing.T) (*Service, *events.Recorder) {
	t.Helper()
	dsn := fmt.Sprintf("file:folders_test_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, &Folder{}))

	rec := &events.Recorder{}
	return NewService(NewRepository(db), rec, logger.Nop(), 2*time.Second), rec
}

func TestCreate_RootAndChild(t *testing.T) {
	svc, rec := setupService(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, "user-a", " Projects ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Projects", root.Name)
	assert.Nil(t, root.ParentID)

	child, err := svc.Create(ctx, "user-a", "2024", &root.ID)
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)

	assert.Equal(t, []string{events.FolderCreated, events.FolderCreated}, rec.Types())
}

func TestCreate_ParentMustBeOwned(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	theirs, err := svc.Create(ctx, "user-b", "Private", nil)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "user-a", "Sneaky", &theirs.ID)
	assert.ErrorIs(t, err, ErrParentNotFound)

	missing := "no-such-folder"
	_, err = svc.Create(ctx, "user-a", "Orphan", &missing)
	assert.ErrorIs(t, err, ErrParentNotFound)

	empty := ""
	f, err := svc.Create(ctx, "user-a", "Root", &empty)
	require.NoError(t, err)
	assert.Nil(t, f.ParentID)
}

func TestCreate_RequiresName(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Create(context.Background(), "user-a", "  ", nil)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestOwnsFolderAndList(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, "user-a", "b", nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-a", "a", nil)
	require.NoError(t, err)

	owned, err := svc.OwnsFolder(ctx, b.ID, "user-a")
	require.NoError(t, err)
	assert.True(t, owned)

	owned, err = svc.OwnsFolder(ctx, b.ID, "user-b")
	require.NoError(t, err)
	assert.False(t, owned)

	list, err := svc.List(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "b", list[1].Name)
}

func TestHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := setupService(t)

	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "user-a")
		c.Next()
	})
	RegisterRoutes(api, NewHandler(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/folders", bytes.NewBufferString(`{"name":"Docs"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body struct {
		Message string `json:"message"`
		Folder  Folder `json:"folder"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Message)
	assert.Equal(t, "Docs", body.Folder.Name)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/folders", bytes.NewBufferString(`{"name":"x","parent_id":"missing"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "PARENT_NOT_FOUND")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/folders", bytes.NewBufferString(`{"name":""}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/folders", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Docs")
}
