package config

// PatternsConfig selects the blocked URL patterns measured against the baseline.
// An empty BlockedURLPatterns list means the built-in ad/tracker list.
type PatternsConfig struct {
	BlockedURLPatterns []string `json:"blocked_url_patterns,omitempty" yaml:"blocked_url_patterns,omitempty"`
	Discover           bool     `json:"discover" yaml:"discover"`
	DiscoverLimit      int      `json:"discover_limit,omitempty" yaml:"discover_limit,omitempty" validate:"gte=0"`
}

// NewDefaultPatternsConfig creates default patterns configuration
func NewDefaultPatternsConfig() PatternsConfig {
	return PatternsConfig{
		DiscoverLimit: DefaultPatternsDiscoverLimit,
	}
}
