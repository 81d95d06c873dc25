package orchestrator

import (
	"context"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/blocklist"
	"github.com/aleister1102/isolatedaudit/internal/config"
	"github.com/rs/zerolog"
)

// HTMLFetcher renders a page and returns its HTML.
type HTMLFetcher interface {
	FetchHTML(ctx context.Context, pageURL string, timeout time.Duration) (string, error)
}

// ResolvePatterns returns the configured patterns (or the built-in list when
// none are configured) followed by any third-party domains discovered on the
// page. Discovery failures only cost the discovered patterns.
func ResolvePatterns(ctx context.Context, cfg config.PatternsConfig, pageURL string, fetcher HTMLFetcher, loadTimeout time.Duration, logger zerolog.Logger) []string {
	patterns := cfg.BlockedURLPatterns
	if len(patterns) == 0 {
		patterns = blocklist.DefaultPatterns()
	}

	if !cfg.Discover || fetcher == nil {
		return patterns
	}

	html, err := fetcher.FetchHTML(ctx, pageURL, loadTimeout)
	if err != nil {
		logger.Warn().Err(err).Str("url", pageURL).Msg("Pattern discovery failed, using configured patterns only")
		return patterns
	}

	discovered, err := blocklist.Discover(html, pageURL, cfg.DiscoverLimit)
	if err != nil {
		logger.Warn().Err(err).Str("url", pageURL).Msg("Pattern discovery failed, using configured patterns only")
		return patterns
	}

	logger.Info().Strs("patterns", discovered).Msg("Discovered third-party patterns")
	out := make([]string, 0, len(patterns)+len(discovered))
	out = append(out, patterns...)
	return append(out, discovered...)
}
