package data

import (
	"context"
	"time"

	"github.com/typetester/font-tester-backend/internal/font/biz"
	"github.com/typetester/font-tester-backend/internal/font/types"
	"github.com/typetester/font-tester-backend/internal/pkg/database"
	apperrors "github.com/typetester/font-tester-backend/internal/pkg/errors"
)

// FontAssetPO is the database model for uploaded fonts
type FontAssetPO struct {
	ID               uint      `gorm:"primarykey"`
	Name             string    `gorm:"size:255;not null"`
	OriginalFilename string    `gorm:"size:255;not null"`
	StoredFilename   string    `gorm:"size:255;not null;uniqueIndex:idx_font_assets_stored_filename"`
	StoragePath      string    `gorm:"size:500;not null"`
	UploadedAt       time.Time `gorm:"not null;index:idx_font_assets_uploaded_at"`
}

func (FontAssetPO) TableName() string {
	return "font_assets"
}

// FontAssetRepo is the gorm-backed repository for font metadata
type FontAssetRepo struct {
	db *database.DB
}

// NewFontAssetRepo creates the font asset repository
func NewFontAssetRepo(db *database.DB) biz.FontAssetRepo {
	return &FontAssetRepo{db: db}
}

// Create inserts a new font record and fills in the assigned ID
func (r *FontAssetRepo) Create(ctx context.Context, asset *types.FontAsset) error {
	po := &FontAssetPO{
		Name:             asset.Name,
		OriginalFilename: asset.OriginalFilename,
		StoredFilename:   asset.StoredFilename,
		StoragePath:      asset.StoragePath,
		UploadedAt:       asset.UploadedAt,
	}

	if err := r.db.WithContext(ctx).GetDB().Create(po).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrFontDurableWrite)
	}

	asset.ID = po.ID
	return nil
}

// GetByID fetches one font record
func (r *FontAssetRepo) GetByID(ctx context.Context, id uint) (*types.FontAsset, error) {
	var po FontAssetPO
	err := r.db.WithContext(ctx).GetDB().
		Where("id = ?", id).
		First(&po).Error
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, apperrors.New(apperrors.ErrFontNotFound)
		}
		return nil, err
	}

	return toFontAsset(&po), nil
}

// List returns all font records, newest upload first
func (r *FontAssetRepo) List(ctx context.Context) ([]*types.FontAsset, error) {
	var pos []FontAssetPO
	err := r.db.WithContext(ctx).GetDB().
		Order("uploaded_at DESC, id DESC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	assets := make([]*types.FontAsset, len(pos))
	for i := range pos {
		assets[i] = toFontAsset(&pos[i])
	}
	return assets, nil
}

// Delete removes one font record
func (r *FontAssetRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).GetDB().
		Where("id = ?", id).
		Delete(&FontAssetPO{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, apperrors.ErrFontDurableWrite)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.ErrFontNotFound)
	}
	return nil
}

func toFontAsset(po *FontAssetPO) *types.FontAsset {
	return &types.FontAsset{
		ID:               po.ID,
		Name:             po.Name,
		OriginalFilename: po.OriginalFilename,
		StoredFilename:   po.StoredFilename,
		StoragePath:      po.StoragePath,
		UploadedAt:       po.UploadedAt,
	}
}
