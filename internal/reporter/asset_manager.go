package reporter

import (
	"embed"
	"fmt"
	"html/template"
	"os"

	"github.com/rs/zerolog"
)

// AssetManager reads stylesheets for inlining into generated pages
type AssetManager struct {
	logger zerolog.Logger
}

// NewAssetManager creates a new AssetManager
func NewAssetManager(logger zerolog.Logger) *AssetManager {
	return &AssetManager{
		logger: logger,
	}
}

// EmbedCSS returns the stylesheet at customPath, or the embedded default when
// customPath is empty.
func (am *AssetManager) EmbedCSS(efs embed.FS, customPath string) (template.CSS, error) {
	if customPath != "" {
		am.logger.Debug().Str("asset", customPath).Msg("Using custom CSS asset.")
		data, err := os.ReadFile(customPath)
		if err != nil {
			return "", fmt.Errorf("failed to read custom CSS asset '%s': %w", customPath, err)
		}
		return template.CSS(data), nil
	}

	data, err := efs.ReadFile(EmbeddedCSSPath)
	if err != nil {
		return "", fmt.Errorf("failed to read embedded CSS asset '%s': %w", EmbeddedCSSPath, err)
	}
	return template.CSS(data), nil
}

// EmbedAssetsIntoPageData inlines the stylesheet into pageData. A missing
// stylesheet only costs the styling.
func (am *AssetManager) EmbedAssetsIntoPageData(pageData PageDataInterface, efs embed.FS, customPath string) {
	css, err := am.EmbedCSS(efs, customPath)
	if err != nil {
		am.logger.Warn().Err(err).Msg("Failed to embed CSS, report styling might be affected.")
	}
	pageData.SetCustomCSS(css)
}

// PageDataInterface interface for setting assets into page data
type PageDataInterface interface {
	SetCustomCSS(template.CSS)
}
