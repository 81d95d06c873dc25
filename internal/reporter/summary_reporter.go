package reporter

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/common/filemanager"
	"github.com/aleister1102/isolatedaudit/internal/config"
	"github.com/aleister1102/isolatedaudit/internal/models"
	"github.com/rs/zerolog"
)

// SummaryReporter renders the rows of a batch, grouped by pattern, as a single HTML page
type SummaryReporter struct {
	cfg          config.ReporterConfig
	logger       zerolog.Logger
	template     *template.Template
	fileManager  *filemanager.FileManager
	assetManager *AssetManager
}

// NewSummaryReporter creates a SummaryReporter with the embedded or custom template
func NewSummaryReporter(cfg config.ReporterConfig, appLogger zerolog.Logger) (*SummaryReporter, error) {
	moduleLogger := appLogger.With().Str("component", "SummaryReporter").Logger()

	reporter := &SummaryReporter{
		cfg:          cfg,
		logger:       moduleLogger,
		fileManager:  filemanager.NewFileManager(moduleLogger),
		assetManager: NewAssetManager(moduleLogger),
	}

	if err := reporter.setupTemplate(); err != nil {
		return nil, err
	}
	return reporter, nil
}

// setupTemplate initializes the HTML template with function map
func (r *SummaryReporter) setupTemplate() error {
	if r.cfg.TemplatePath != "" {
		return r.loadCustomTemplate()
	}
	return r.loadEmbeddedTemplate()
}

// loadCustomTemplate loads template from file path
func (r *SummaryReporter) loadCustomTemplate() error {
	r.logger.Info().Str("template_path", r.cfg.TemplatePath).Msg("Loading custom summary template from file.")

	tmpl := template.New(filepath.Base(r.cfg.TemplatePath)).Funcs(GetCommonTemplateFunctions())
	if _, err := tmpl.ParseFiles(r.cfg.TemplatePath); err != nil {
		return fmt.Errorf("failed to parse custom summary template '%s': %w", r.cfg.TemplatePath, err)
	}

	r.template = tmpl
	return nil
}

// loadEmbeddedTemplate loads the default embedded template
func (r *SummaryReporter) loadEmbeddedTemplate() error {
	content, err := templatesFS.ReadFile("templates/" + DefaultSummaryTemplateName)
	if err != nil {
		return fmt.Errorf("failed to load embedded summary template: %w", err)
	}

	cleaned := strings.ReplaceAll(string(content), "\r\n", "\n")
	tmpl, err := template.New(DefaultSummaryTemplateName).Funcs(GetCommonTemplateFunctions()).Parse(cleaned)
	if err != nil {
		return fmt.Errorf("failed to parse embedded summary template: %w", err)
	}

	r.template = tmpl
	return nil
}

// Generate writes the summary of rows to outputPath.
func (r *SummaryReporter) Generate(url string, rows []models.AuditResult, outputPath string) error {
	if len(rows) == 0 {
		r.logger.Warn().Msg("No results provided for summary generation.")
		return nil
	}

	pageData := models.SummaryPageData{
		ReportTitle: r.title(),
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		URL:         url,
		TotalRuns:   len(rows),
		MetricNames: MetricNames(),
		Patterns:    GroupByPattern(rows),
	}
	r.assetManager.EmbedAssetsIntoPageData(&pageData, assetsFS, r.cfg.CSSPath)

	var htmlBuffer bytes.Buffer
	if err := r.template.Execute(&htmlBuffer, pageData); err != nil {
		return fmt.Errorf("template execution failed: %w", err)
	}

	if err := r.fileManager.EnsureDirectory(filepath.Dir(outputPath), DirPermissions); err != nil {
		return &FileWriteError{Path: outputPath, Err: err}
	}
	if err := os.WriteFile(outputPath, htmlBuffer.Bytes(), FilePermissions); err != nil {
		return &FileWriteError{Path: outputPath, Err: err}
	}

	r.logger.Info().Str("path", outputPath).Int("patterns", len(pageData.Patterns)).Msg("HTML summary generated")
	return nil
}

func (r *SummaryReporter) title() string {
	if r.cfg.ReportTitle != "" {
		return r.cfg.ReportTitle
	}
	return DefaultSummaryTitle
}
