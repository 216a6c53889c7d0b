package service

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/typetester/font-tester-backend/internal/font/biz"
	"github.com/typetester/font-tester-backend/internal/font/lifecycle"
	"github.com/typetester/font-tester-backend/internal/font/types"
	apperrors "github.com/typetester/font-tester-backend/internal/pkg/errors"
	"github.com/typetester/font-tester-backend/internal/pkg/logger"
	"github.com/typetester/font-tester-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// FontService exposes the font registry over HTTP
type FontService struct {
	registry  *biz.Registry
	lifecycle *lifecycle.Manager
	logger    *logger.Logger
}

func NewFontService(registry *biz.Registry, lc *lifecycle.Manager, logger *logger.Logger) *FontService {
	return &FontService{
		registry:  registry,
		lifecycle: lc,
		logger:    logger,
	}
}

// FontResponse is the admin-facing representation of a stored font
type FontResponse struct {
	ID               uint   `json:"id"`
	Name             string `json:"name"`
	URL              string `json:"url"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	UploadedAt       string `json:"uploaded_at"`
}

// FontListItem is the public listing entry consumed by the preview panel
type FontListItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DeleteFontResponse reports the outcome of a delete
type DeleteFontResponse struct {
	ID          uint   `json:"id"`
	FileWarning string `json:"file_warning,omitempty"`
}

func (s *FontService) toFontResponse(asset *types.FontAsset) *FontResponse {
	return &FontResponse{
		ID:               asset.ID,
		Name:             asset.Name,
		URL:              s.registry.URL(asset),
		Filename:         asset.StoredFilename,
		OriginalFilename: asset.OriginalFilename,
		UploadedAt:       asset.UploadedAt.Format(time.RFC3339),
	}
}

// UploadFont handles POST /api/v1/admin/fonts
func (s *FontService) UploadFont(c *gin.Context) {
	header, err := c.FormFile("font_file")
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrFontNoFile)
		return
	}

	file, err := header.Open()
	if err != nil {
		s.logger.Warn("failed to open uploaded file", zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrFontTransport)
		return
	}
	defer file.Close()

	asset, err := s.registry.Upload(c.Request.Context(), &biz.UploadRequest{
		Filename:    header.Filename,
		Size:        header.Size,
		Content:     file,
		DisplayName: c.PostForm("font_name"),
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Created(c, s.toFontResponse(asset))
}

// DeleteFont handles DELETE /api/v1/admin/fonts/:id
func (s *FontService) DeleteFont(c *gin.Context) {
	id, ok := parseFontID(c.Param("id"))
	if !ok {
		response.ErrorWithCode(c, apperrors.ErrFontInvalidID)
		return
	}

	result, err := s.registry.Delete(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, &DeleteFontResponse{
		ID:          id,
		FileWarning: result.FileWarning,
	})
}

// ListFonts handles GET /api/v1/fonts
func (s *FontService) ListFonts(c *gin.Context) {
	assets, err := s.registry.List(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}

	items := make([]*FontListItem, 0, len(assets))
	for _, asset := range assets {
		items = append(items, &FontListItem{
			ID:   asset.ID,
			Name: asset.Name,
			URL:  s.registry.URL(asset),
		})
	}

	response.Success(c, items)
}

// GetFont handles GET /api/v1/fonts/:id
func (s *FontService) GetFont(c *gin.Context) {
	id, ok := parseFontID(c.Param("id"))
	if !ok {
		response.ErrorWithCode(c, apperrors.ErrFontInvalidID)
		return
	}

	asset, err := s.registry.Get(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, s.toFontResponse(asset))
}

// Deactivate handles POST /api/v1/admin/deactivate
func (s *FontService) Deactivate(c *gin.Context) {
	if err := s.lifecycle.Deactivate(c.Request.Context()); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"deactivated": true})
}

func parseFontID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
