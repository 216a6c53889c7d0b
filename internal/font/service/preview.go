package service

import (
	"github.com/gin-gonic/gin"
	"github.com/typetester/font-tester-backend/internal/pkg/response"
)

// ControlRange describes one slider in the preview panel
type ControlRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
	Unit string  `json:"unit,omitempty"`
}

// PreviewConfig is the static typography configuration the preview panel
// renders its controls from
type PreviewConfig struct {
	FontSize      ControlRange `json:"font_size"`
	LineHeight    ControlRange `json:"line_height"`
	LetterSpacing ControlRange `json:"letter_spacing"`
	WordSpacing   ControlRange `json:"word_spacing"`
	SampleText    string       `json:"sample_text"`
}

var defaultPreviewConfig = PreviewConfig{
	FontSize:      ControlRange{Min: 8, Max: 120, Step: 1, Unit: "px"},
	LineHeight:    ControlRange{Min: 0.8, Max: 3.0, Step: 0.1},
	LetterSpacing: ControlRange{Min: -5, Max: 20, Step: 0.5, Unit: "px"},
	WordSpacing:   ControlRange{Min: -10, Max: 50, Step: 1, Unit: "px"},
	SampleText:    "The quick brown fox jumps over the lazy dog. 0123456789",
}

// GetPreviewConfig handles GET /api/v1/preview/config
func (s *FontService) GetPreviewConfig(c *gin.Context) {
	response.Success(c, defaultPreviewConfig)
}
