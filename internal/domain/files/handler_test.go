package files

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudstore/internal/middleware"
)

const testUserHeader = "X-Test-User"

func newTestRouter(fx *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		if uid := c.GetHeader(testUserHeader); uid != "" {
			c.Set(middleware.ContextUserID, uid)
		}
		c.Next()
	})
	RegisterRoutes(api, NewHandler(fx.svc))
	return r
}

func multipartBody(t *testing.T, field, filename, content string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range extra {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func do(r *gin.Engine, method, path, user string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
	return body.Code
}

func TestHandler_UploadAndList(t *testing.T) {
	fx := newFixture(t)
	r := newTestRouter(fx)

	body, ct := multipartBody(t, "file", "hello.txt", "hello", nil)
	w := do(r, http.MethodPost, "/api/files/upload", "user-a", body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "hello.txt", created.Name)
	assert.Equal(t, int64(5), created.Size)

	w = do(r, http.MethodGet, "/api/files", "user-a", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []string{created.ID}, ids(list))

	w = do(r, http.MethodGet, "/api/files", "user-b", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestHandler_UploadErrors(t *testing.T) {
	fx := newFixture(t)
	r := newTestRouter(fx)

	body, ct := multipartBody(t, "", "", "", map[string]string{"name": "x"})
	w := do(r, http.MethodPost, "/api/files/upload", "user-a", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NO_FILE", decodeError(t, w))

	body, ct = multipartBody(t, "file", "empty.txt", "", nil)
	w = do(r, http.MethodPost, "/api/files/upload", "user-a", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NO_FILE", decodeError(t, w))

	body, ct = multipartBody(t, "file", "big.bin", strings.Repeat("x", 4096), nil)
	w = do(r, http.MethodPost, "/api/files/upload", "user-a", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "FILE_TOO_LARGE", decodeError(t, w))

	body, ct = multipartBody(t, "file", "a.txt", "abc", map[string]string{"folder_id": "folder-a"})
	w = do(r, http.MethodPost, "/api/files/upload", "user-b", body, ct)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "FOLDER_NOT_FOUND", decodeError(t, w))

	body, ct = multipartBody(t, "file", "a.txt", "abc", nil)
	w = do(r, http.MethodPost, "/api/files/upload", "", body, ct)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, 0, fx.store.Len())
}

func TestHandler_SearchRequiresQuery(t *testing.T) {
	fx := newFixture(t)
	r := newTestRouter(fx)

	w := do(r, http.MethodGet, "/api/files/search", "user-a", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "QUERY_REQUIRED", decodeError(t, w))

	fx.upload(t, "user-a", "budget.xlsx", "abc")
	w = do(r, http.MethodGet, "/api/files/search?q=budg", "user-a", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var found []File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	assert.Len(t, found, 1)
}

func TestHandler_LifecycleEndpoints(t *testing.T) {
	fx := newFixture(t)
	r := newTestRouter(fx)
	f := fx.upload(t, "user-a", "a.txt", "abc")
	base := "/api/files/" + f.ID

	w := do(r, http.MethodPatch, base, "user-a", bytes.NewBufferString(`{"name":"b.txt"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	var renamed File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &renamed))
	assert.Equal(t, "b.txt", renamed.Name)

	w = do(r, http.MethodPatch, base, "user-a", bytes.NewBufferString(`{"name":""}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w))

	w = do(r, http.MethodPatch, base+"/favorite", "user-a", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var fav FavoriteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fav))
	assert.True(t, fav.IsFavorite)
	assert.NotEmpty(t, fav.Message)

	w = do(r, http.MethodGet, base+"/link", "user-a", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var link map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &link))
	assert.NotEmpty(t, link["signedUrl"])
	expiresAt, err := time.Parse(time.RFC3339, link["expires_at"])
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	w = do(r, http.MethodDelete, base+"/permanent", "user-a", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "FILE_NOT_IN_TRASH", decodeError(t, w))

	w = do(r, http.MethodDelete, base, "user-a", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "message")

	w = do(r, http.MethodGet, "/api/files/trash", "user-a", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), f.ID)

	w = do(r, http.MethodPatch, base, "user-a", bytes.NewBufferString(`{"name":"c.txt"}`), "application/json")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "FILE_IN_TRASH", decodeError(t, w))

	w = do(r, http.MethodPost, base+"/restore", "user-a", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, http.StatusOK, do(r, http.MethodDelete, base, "user-a", nil, "").Code)
	w = do(r, http.MethodDelete, base+"/permanent", "user-a", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, base+"/link", "user-a", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w))
}

func TestHandler_ForeignFileIsNotFound(t *testing.T) {
	fx := newFixture(t)
	r := newTestRouter(fx)
	f := fx.upload(t, "user-a", "a.txt", "abc")

	w := do(r, http.MethodGet, "/api/files/"+f.ID+"/link", "user-b", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	foreign := w.Body.String()

	w = do(r, http.MethodGet, "/api/files/does-not-exist/link", "user-b", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, foreign, w.Body.String())
}

func TestHandler_UpstreamTimeout(t *testing.T) {
	fx := newFixture(t)
	fx.svc.cfg.UpstreamTimeout = 20 * time.Millisecond
	fx.store.block = true
	r := newTestRouter(fx)

	body, ct := multipartBody(t, "file", "a.txt", "abc", nil)
	w := do(r, http.MethodPost, "/api/files/upload", "user-a", body, ct)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, "UPSTREAM_TIMEOUT", decodeError(t, w))
}
