package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/urlhandler"
)

// RunConfig defines what is measured and where results go
type RunConfig struct {
	URL           string `json:"url,omitempty" yaml:"url,omitempty" validate:"required,targeturl"`
	NumberOfRuns  int    `json:"number_of_runs,omitempty" yaml:"number_of_runs,omitempty" validate:"min=1"`
	Filename      string `json:"filename,omitempty" yaml:"filename,omitempty"`
	OutputDir     string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	FailurePolicy string `json:"failure_policy,omitempty" yaml:"failure_policy,omitempty" validate:"required,failurepolicy"`
}

// NewDefaultRunConfig creates default run configuration
func NewDefaultRunConfig() RunConfig {
	return RunConfig{
		URL:           DefaultRunURL,
		NumberOfRuns:  DefaultRunNumberOfRuns,
		OutputDir:     DefaultRunOutputDir,
		FailurePolicy: DefaultRunFailurePolicy,
	}
}

// ResolveFilename returns Filename, or the default
// <output_dir>/isolated_n<runs>_<sanitized url>-<unix millis>.csv.
func (rc RunConfig) ResolveFilename(now time.Time) string {
	if rc.Filename != "" {
		return rc.Filename
	}

	name := fmt.Sprintf("isolated_n%d_%s-%d.csv", rc.NumberOfRuns, urlhandler.ConvertURLToFilename(rc.URL), now.UnixMilli())
	return filepath.Join(rc.OutputDir, name)
}
