// Package service contains the business logic layer.
// Note: login and profile lookup are handled by the LINE platform; the
// user IDs flowing through here are LINE user IDs (e.g., "Uxxx").
package service

import (
	"log/slog"

	"github.com/asagaorino0/formlink-api/internal/config"
	"github.com/asagaorino0/formlink-api/internal/forms"
	"github.com/asagaorino0/formlink-api/internal/line"
	"github.com/asagaorino0/formlink-api/internal/repository"
)

// Services holds all service instances.
type Services struct {
	Linkage *LinkageService
	Inspect *InspectService
	Line    *line.Client
}

// NewServices creates all service instances.
func NewServices(cfg *config.Config, repos *repository.Repositories, logger *slog.Logger) (*Services, error) {
	discoverer := forms.NewDiscoverer(forms.DiscovererConfig{
		Timeout:            cfg.DiscoveryTimeout,
		UserAgent:          cfg.DiscoveryUserAgent,
		ProxyChainEnabled:  cfg.ProxyChainEnabled,
		DefaultTitle:       cfg.DefaultOGTitle,
		DefaultDescription: cfg.DefaultOGDesc,
		Logger:             logger,
	})

	lineClient := line.NewClient(cfg.LineChannelAccessToken, logger)
	if !cfg.LineConfigured() {
		logger.Warn("LINE channel credentials not configured - push notifications unavailable")
	}

	inspectSvc := NewInspectService(discoverer, forms.NewCache(), logger)
	linkageSvc := NewLinkageService(cfg, repos, inspectSvc, lineClient, logger)

	return &Services{
		Linkage: linkageSvc,
		Inspect: inspectSvc,
		Line:    lineClient,
	}, nil
}
