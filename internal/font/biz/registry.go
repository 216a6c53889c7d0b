package biz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/typetester/font-tester-backend/internal/font/storage"
	"github.com/typetester/font-tester-backend/internal/font/types"
	"github.com/typetester/font-tester-backend/internal/font/validator"
	apperrors "github.com/typetester/font-tester-backend/internal/pkg/errors"
	"github.com/typetester/font-tester-backend/internal/pkg/logger"
	pkgredis "github.com/typetester/font-tester-backend/internal/pkg/redis"
	"go.uber.org/zap"
)

// cachePrefix namespaces every cache key owned by the registry
const cachePrefix = "fonttester:"

const (
	listCacheKey    = cachePrefix + "fonts:all"
	fontCacheKeyFmt = cachePrefix + "fonts:id:%d"
)

// DefaultCacheTTL bounds how long a stale cache entry can outlive a crash
// between a durable write and its invalidation
const DefaultCacheTTL = time.Hour

// FontAssetRepo defines the repository interface for font metadata
type FontAssetRepo interface {
	Create(ctx context.Context, asset *types.FontAsset) error
	GetByID(ctx context.Context, id uint) (*types.FontAsset, error)
	List(ctx context.Context) ([]*types.FontAsset, error)
	Delete(ctx context.Context, id uint) error
}

// Cache is the key-value cache the registry accelerates reads with. The
// durable store remains the source of truth; every cache failure degrades to
// a direct repository call.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	DelByPrefix(ctx context.Context, prefix string) (int64, error)
}

// Registry owns font metadata records and orchestrates uploads and deletes
// across the validator, the blob store and the repository.
type Registry struct {
	repo      FontAssetRepo
	store     storage.Store
	cache     Cache
	validator *validator.Validator
	ttl       time.Duration
	logger    *logger.Logger
}

// NewRegistry creates a Registry; ttl <= 0 uses DefaultCacheTTL
func NewRegistry(repo FontAssetRepo, store storage.Store, cache Cache, v *validator.Validator, ttl time.Duration, log *logger.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Registry{
		repo:      repo,
		store:     store,
		cache:     cache,
		validator: v,
		ttl:       ttl,
		logger:    log,
	}
}

// UploadRequest carries one validated-to-be upload
type UploadRequest struct {
	Filename    string        // caller-declared filename
	Size        int64         // caller-declared size in bytes
	Content     io.ReadSeeker // upload bytes; rewound after validation
	DisplayName string        // optional; defaults to the base filename
}

// Upload validates the request, stores the bytes under an obfuscated name and
// inserts the metadata record. If the durable insert fails the stored file is
// removed again so no orphan blob survives a failed upload.
func (r *Registry) Upload(ctx context.Context, req *UploadRequest) (*types.FontAsset, error) {
	decision, err := r.validator.CheckUpload(req.Filename, req.Size, req.Content)
	if err != nil {
		return nil, err
	}

	if _, err := req.Content.Seek(0, io.SeekStart); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFontTransport)
	}

	stored, err := r.store.Put(ctx, decision.Extension, req.Content, req.Size)
	if err != nil {
		return nil, err
	}

	name := req.DisplayName
	if name == "" {
		name = decision.BaseName
	}

	asset := &types.FontAsset{
		Name:             name,
		OriginalFilename: decision.SanitizedName,
		StoredFilename:   stored.Filename,
		StoragePath:      stored.Path,
		UploadedAt:       time.Now().UTC(),
	}

	if err := r.repo.Create(ctx, asset); err != nil {
		// Undo the blob write; the upload failed as a whole.
		if rmErr := r.store.Remove(ctx, stored.Path); rmErr != nil {
			r.logger.Error("failed to remove orphaned font file after insert failure",
				zap.String("path", stored.Path),
				zap.Error(rmErr),
			)
		}
		return nil, err
	}

	r.cacheSet(ctx, fontKey(asset.ID), asset)
	r.cacheDel(ctx, listCacheKey)

	r.logger.Info("font uploaded",
		zap.Uint("id", asset.ID),
		zap.String("name", asset.Name),
		zap.String("stored_filename", asset.StoredFilename),
	)

	return asset, nil
}

// Get returns one font record, read-through cached. Not-found results are
// never cached.
func (r *Registry) Get(ctx context.Context, id uint) (*types.FontAsset, error) {
	key := fontKey(id)

	if asset := r.cacheGetAsset(ctx, key); asset != nil {
		return asset, nil
	}

	asset, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cacheSet(ctx, key, asset)
	return asset, nil
}

// List returns all font records newest first, read-through cached under a
// single key. An empty listing is a valid cached value.
func (r *Registry) List(ctx context.Context) ([]*types.FontAsset, error) {
	if assets, ok := r.cacheGetList(ctx); ok {
		return assets, nil
	}

	assets, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	r.cacheSet(ctx, listCacheKey, assets)
	return assets, nil
}

// DeleteResult reports the outcome of a delete
type DeleteResult struct {
	// FileWarning is set when the durable record was removed but the backing
	// file could not be; the metadata row never outlives a delete request.
	FileWarning string
}

// Delete removes a font record and its backing file. File removal is
// best-effort: a failure there is reported via DeleteResult but does not keep
// the durable record alive.
func (r *Registry) Delete(ctx context.Context, id uint) (*DeleteResult, error) {
	asset, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{}
	if err := r.store.Remove(ctx, asset.StoragePath); err != nil {
		r.logger.Warn("failed to remove font file, deleting record anyway",
			zap.Uint("id", id),
			zap.String("path", asset.StoragePath),
			zap.Error(err),
		)
		result.FileWarning = "font file could not be removed"
	}

	if err := r.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	r.cacheDel(ctx, fontKey(id), listCacheKey)

	r.logger.Info("font deleted", zap.Uint("id", id))
	return result, nil
}

// URL derives the public URL for an asset
func (r *Registry) URL(asset *types.FontAsset) string {
	return r.store.ResolveURL(asset.StoredFilename)
}

// FlushCache drops every cache entry owned by the registry
func (r *Registry) FlushCache(ctx context.Context) {
	if _, err := r.cache.DelByPrefix(ctx, cachePrefix); err != nil {
		r.logger.Warn("failed to flush font cache", zap.Error(err))
	}
}

func fontKey(id uint) string {
	return fmt.Sprintf(fontCacheKeyFmt, id)
}

func (r *Registry) cacheGetAsset(ctx context.Context, key string) *types.FontAsset {
	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNil(err) {
			r.logger.Warn("cache read failed, falling back to database",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return nil
	}

	var asset types.FontAsset
	if err := json.Unmarshal([]byte(raw), &asset); err != nil {
		r.logger.Warn("corrupt cache entry, falling back to database",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil
	}
	return &asset
}

func (r *Registry) cacheGetList(ctx context.Context) ([]*types.FontAsset, bool) {
	raw, err := r.cache.Get(ctx, listCacheKey)
	if err != nil {
		if !pkgredis.IsNil(err) {
			r.logger.Warn("cache read failed, falling back to database",
				zap.String("key", listCacheKey),
				zap.Error(err),
			)
		}
		return nil, false
	}

	var assets []*types.FontAsset
	if err := json.Unmarshal([]byte(raw), &assets); err != nil {
		r.logger.Warn("corrupt cache entry, falling back to database",
			zap.String("key", listCacheKey),
			zap.Error(err),
		)
		return nil, false
	}
	return assets, true
}

func (r *Registry) cacheSet(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		return
	}

	if err := r.cache.Set(ctx, key, string(raw), r.ttl); err != nil {
		r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *Registry) cacheDel(ctx context.Context, keys ...string) {
	if _, err := r.cache.Del(ctx, keys...); err != nil {
		r.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
