// Package constants defines centralized timing and caching configuration.
package constants

import "time"

// Request timeout configuration.
const (
	// DefaultRequestTimeout applies to most endpoints.
	DefaultRequestTimeout = 30 * time.Second

	// DiscoveryRequestTimeout applies to endpoints that fetch a form page
	// through the proxy fallback chain, which can take several attempts.
	DiscoveryRequestTimeout = 60 * time.Second
)

// Cache-Control ages.
const (
	// PreviewCacheMaxAge is how long crawlers may cache the OG preview
	// page. Short, so form metadata edits propagate quickly.
	PreviewCacheMaxAge = 60 * time.Second

	// InspectCacheMaxAge is the CDN age for inspect results. Entry IDs
	// almost never change once a form is published.
	InspectCacheMaxAge = 300 * time.Second

	// HealthCacheMaxAge keeps health responses CDN-cacheable but fresh.
	HealthCacheMaxAge = 10 * time.Second
)
