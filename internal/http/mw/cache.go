package mw

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/asagaorino0/formlink-api/internal/constants"
)

// CachePolicy defines caching behavior for a route pattern.
type CachePolicy struct {
	// Pattern is the route pattern to match (prefix match by default).
	Pattern string
	// CacheControl is the Cache-Control header value to set.
	CacheControl string
}

// CacheConfig holds the cache middleware configuration.
type CacheConfig struct {
	// Policies are the cache policies to apply, matched in order.
	Policies []CachePolicy
	// DefaultPolicy is applied when no policy matches (empty = no header set).
	DefaultPolicy string
}

// DefaultCacheConfig returns cache defaults for the API. The link preview
// endpoint manages its own headers per audience, so it is not listed here.
func DefaultCacheConfig() CacheConfig {
	healthSecs := int(constants.HealthCacheMaxAge.Seconds())
	inspectSecs := int(constants.InspectCacheMaxAge.Seconds())

	return CacheConfig{
		DefaultPolicy: "private, no-cache",
		Policies: []CachePolicy{
			{Pattern: "/api/v1/health", CacheControl: fmt.Sprintf("public, max-age=%d", healthSecs)},

			// Probes are never cached (must reflect real-time state)
			{Pattern: "/healthz", CacheControl: "no-store"},
			{Pattern: "/readyz", CacheControl: "no-store"},

			// Inspect results are CDN-cacheable; forms change rarely
			{Pattern: "/api/v1/forms/inspect", CacheControl: fmt.Sprintf("public, s-maxage=%d", inspectSecs)},
		},
	}
}

// Cache returns middleware that sets Cache-Control headers based on route patterns.
// For non-GET/HEAD requests, it sets "no-store" to prevent caching of mutations.
// For GET/HEAD requests, it matches against configured policies in order.
func Cache(cfg CacheConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				w.Header().Set("Cache-Control", "no-store")
				next.ServeHTTP(w, r)
				return
			}

			path := r.URL.Path
			for _, policy := range cfg.Policies {
				if matchesPattern(path, policy.Pattern) {
					w.Header().Set("Cache-Control", policy.CacheControl)
					next.ServeHTTP(w, r)
					return
				}
			}

			if cfg.DefaultPolicy != "" {
				w.Header().Set("Cache-Control", cfg.DefaultPolicy)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// matchesPattern checks if the path matches the pattern by exact, prefix,
// or substring match.
func matchesPattern(path, pattern string) bool {
	if path == pattern || strings.HasPrefix(path, pattern) {
		return true
	}
	return strings.Contains(path, pattern)
}
