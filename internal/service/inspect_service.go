package service

import (
	"context"
	"log/slog"

	"github.com/asagaorino0/formlink-api/internal/forms"
)

// InspectService resolves a form URL to its entry map, caching results
// keyed by the caller's raw URL.
type InspectService struct {
	discoverer *forms.Discoverer
	cache      *forms.Cache
	logger     *slog.Logger
}

// NewInspectService creates a new inspect service.
func NewInspectService(discoverer *forms.Discoverer, cache *forms.Cache, logger *slog.Logger) *InspectService {
	return &InspectService{
		discoverer: discoverer,
		cache:      cache,
		logger:     logger,
	}
}

// Inspect normalizes rawURL and returns its entry map, from cache when
// possible. Only successful discoveries are cached so a transient fetch
// failure does not pin a fallback result.
func (s *InspectService) Inspect(ctx context.Context, rawURL string) (forms.Reference, *forms.EntryMap, error) {
	ref := forms.Normalize(rawURL)

	if em := s.cache.Get(rawURL); em != nil {
		s.logger.Debug("entry map served from cache", "url", rawURL)
		return ref, em, nil
	}

	em, err := s.discoverer.Discover(ctx, ref)
	if err != nil {
		return ref, nil, err
	}

	s.cache.Set(rawURL, em)
	return ref, em, nil
}
