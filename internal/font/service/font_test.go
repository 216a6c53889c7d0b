package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/typetester/font-tester-backend/internal/font/biz"
	"github.com/typetester/font-tester-backend/internal/font/lifecycle"
	"github.com/typetester/font-tester-backend/internal/font/storage"
	"github.com/typetester/font-tester-backend/internal/font/types"
	"github.com/typetester/font-tester-backend/internal/font/validator"
	apperrors "github.com/typetester/font-tester-backend/internal/pkg/errors"
	"github.com/typetester/font-tester-backend/internal/pkg/logger"
	pkgredis "github.com/typetester/font-tester-backend/internal/pkg/redis"
)

type memRepo struct {
	assets map[uint]*types.FontAsset
	nextID uint
}

func newMemRepo() *memRepo {
	return &memRepo{assets: make(map[uint]*types.FontAsset), nextID: 1}
}

func (r *memRepo) Create(_ context.Context, asset *types.FontAsset) error {
	asset.ID = r.nextID
	r.nextID++
	cp := *asset
	r.assets[asset.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uint) (*types.FontAsset, error) {
	asset, ok := r.assets[id]
	if !ok {
		return nil, apperrors.New(apperrors.ErrFontNotFound)
	}
	cp := *asset
	return &cp, nil
}

func (r *memRepo) List(_ context.Context) ([]*types.FontAsset, error) {
	out := make([]*types.FontAsset, 0, len(r.assets))
	for id := r.nextID; id > 0; id-- {
		if asset, ok := r.assets[id]; ok {
			cp := *asset
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.assets[id]; !ok {
		return apperrors.New(apperrors.ErrFontNotFound)
	}
	delete(r.assets, id)
	return nil
}

type memCache struct {
	entries map[string]string
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]string)}
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.entries[key]
	if !ok {
		return "", pkgredis.ErrNil
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.entries[key] = fmt.Sprint(value)
	return nil
}

func (c *memCache) Del(_ context.Context, keys ...string) (int64, error) {
	for _, key := range keys {
		delete(c.entries, key)
	}
	return int64(len(keys)), nil
}

func (c *memCache) DelByPrefix(_ context.Context, _ string) (int64, error) {
	c.entries = make(map[string]string)
	return 0, nil
}

type memStore struct {
	files map[string][]byte
	seq   int
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string][]byte)}
}

func (s *memStore) Put(_ context.Context, ext string, content io.Reader, _ int64) (*storage.StoredFont, error) {
	s.seq++
	name := fmt.Sprintf("font_test%08d.%s", s.seq, ext)
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	s.files[name] = data
	return &storage.StoredFont{Filename: name, Path: name}, nil
}

func (s *memStore) Remove(_ context.Context, path string) error {
	delete(s.files, path)
	return nil
}

func (s *memStore) ResolveURL(storedFilename string) string {
	return "http://fonts.test/" + storedFilename
}

func (s *memStore) EnsureRoot(_ context.Context) error { return nil }

func (s *memStore) RemoveRoot(_ context.Context) error {
	s.files = make(map[string][]byte)
	return nil
}

type noopMigrator struct{}

func (noopMigrator) AutoMigrate(_ ...interface{}) error { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := logger.DefaultConfig()
	cfg.Level = "error"
	log, err := logger.New(cfg)
	require.NoError(t, err)

	store := newMemStore()
	registry := biz.NewRegistry(newMemRepo(), store, newMemCache(), validator.New(0), time.Minute, log)
	lc := lifecycle.NewManager(store, noopMigrator{}, registry, nil, log)
	svc := NewFontService(registry, lc, log)

	router := gin.New()
	router.POST("/api/v1/admin/fonts", svc.UploadFont)
	router.DELETE("/api/v1/admin/fonts/:id", svc.DeleteFont)
	router.POST("/api/v1/admin/deactivate", svc.Deactivate)
	router.GET("/api/v1/fonts", svc.ListFonts)
	router.GET("/api/v1/fonts/:id", svc.GetFont)
	router.GET("/api/v1/preview/config", svc.GetPreviewConfig)
	return router, store
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Reason  string          `json:"reason"`
	Data    json.RawMessage `json:"data"`
}

func multipartUpload(t *testing.T, filename, fontName string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("font_file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	if fontName != "" {
		require.NoError(t, w.WriteField("font_name", fontName))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/fonts", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func woffBytes() []byte {
	return append([]byte("wOFF"), bytes.Repeat([]byte{0x10}, 60)...)
}

func doRequest(router *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestUploadFont(t *testing.T) {
	router, store := newTestRouter(t)

	rec, env := doRequest(router, multipartUpload(t, "Inter-Bold.woff", "Inter Bold", woffBytes()))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got FontResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, uint(1), got.ID)
	assert.Equal(t, "Inter Bold", got.Name)
	assert.Equal(t, "Inter-Bold.woff", got.OriginalFilename)
	assert.Contains(t, got.URL, "http://fonts.test/")
	assert.NotEmpty(t, got.UploadedAt)
	assert.Len(t, store.files, 1)

	// a failed insert rolls the stored file back, so the upload envelope
	// carries no best-effort warning field
	assert.NotContains(t, string(env.Data), "file_warning")
}

func TestUploadFontMissingFile(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/fonts", nil)
	rec, env := doRequest(router, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.ErrFontNoFile, env.Code)
	assert.Equal(t, "no-file", env.Reason)
}

func TestUploadFontBadSignature(t *testing.T) {
	router, store := newTestRouter(t)

	content := append([]byte("MZ\x90\x00"), bytes.Repeat([]byte{0}, 32)...)
	rec, env := doRequest(router, multipartUpload(t, "malware.ttf", "", content))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid-signature", env.Reason)
	assert.Empty(t, store.files)
}

func TestUploadFontBadExtension(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, env := doRequest(router, multipartUpload(t, "notes.txt", "", woffBytes()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid-extension", env.Reason)
}

func TestListFontsEmpty(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fonts", nil)
	rec, env := doRequest(router, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(env.Data))
}

func TestListFonts(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, name := range []string{"first.woff", "second.woff"} {
		rec, _ := doRequest(router, multipartUpload(t, name, "", woffBytes()))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fonts", nil)
	rec, env := doRequest(router, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []FontListItem
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 2)
	// newest first
	assert.Equal(t, "second", items[0].Name)
	assert.Equal(t, "first", items[1].Name)
	for _, item := range items {
		assert.NotEmpty(t, item.URL)
	}
}

func TestGetFont(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, _ := doRequest(router, multipartUpload(t, "detail.woff", "", woffBytes()))
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fonts/1", nil)
	rec, env := doRequest(router, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got FontResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "detail", got.Name)
}

func TestGetFontNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fonts/99", nil)
	rec, env := doRequest(router, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not-found", env.Reason)
}

func TestGetFontInvalidID(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, raw := range []string{"abc", "-1", "0", "1.5"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/fonts/"+raw, nil)
		rec, env := doRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
		assert.Equal(t, "invalid-id", env.Reason, raw)
	}
}

func TestDeleteFont(t *testing.T) {
	router, store := newTestRouter(t)

	rec, _ := doRequest(router, multipartUpload(t, "doomed.woff", "", woffBytes()))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.files, 1)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/fonts/1", nil)
	rec, env := doRequest(router, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got DeleteFontResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, uint(1), got.ID)
	assert.Empty(t, got.FileWarning)
	assert.Empty(t, store.files)
}

func TestDeleteFontUnknown(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/fonts/7", nil)
	rec, env := doRequest(router, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not-found", env.Reason)
}

func TestDeactivate(t *testing.T) {
	router, store := newTestRouter(t)

	rec, _ := doRequest(router, multipartUpload(t, "gone.woff", "", woffBytes()))
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/deactivate", nil)
	rec, _ = doRequest(router, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.files)
}

func TestGetPreviewConfig(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/preview/config", nil)
	rec, env := doRequest(router, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg PreviewConfig
	require.NoError(t, json.Unmarshal(env.Data, &cfg))
	assert.Equal(t, float64(8), cfg.FontSize.Min)
	assert.Equal(t, float64(120), cfg.FontSize.Max)
	assert.Equal(t, 0.8, cfg.LineHeight.Min)
	assert.Equal(t, 3.0, cfg.LineHeight.Max)
	assert.NotEmpty(t, cfg.SampleText)
}
