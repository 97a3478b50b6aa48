package handlers

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/microcosm-cc/bluemonday"

	"github.com/asagaorino0/formlink-api/internal/config"
	"github.com/asagaorino0/formlink-api/internal/constants"
	"github.com/asagaorino0/formlink-api/internal/service"
	"github.com/asagaorino0/formlink-api/internal/useragent"
)

// LinkPreviewHandler serves the shared link URL. The same URL is hit by
// preview crawlers, by humans inside the LINE app, and by plain browsers;
// each audience gets a different response. This is a raw chi handler
// because it negotiates HTML and redirects, not JSON.
type LinkPreviewHandler struct {
	cfg      *config.Config
	inspect  *service.InspectService
	sanitize *bluemonday.Policy
	logger   *slog.Logger
}

// NewLinkPreviewHandler creates a new link preview handler.
func NewLinkPreviewHandler(cfg *config.Config, inspect *service.InspectService, logger *slog.Logger) *LinkPreviewHandler {
	return &LinkPreviewHandler{
		cfg:      cfg,
		inspect:  inspect,
		sanitize: bluemonday.StrictPolicy(),
		logger:   logger,
	}
}

// ServeHTTP negotiates the response by User-Agent.
func (h *LinkPreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	formURL := r.URL.Query().Get("form")
	if formURL == "" {
		http.Error(w, `Missing "form" parameter`, http.StatusBadRequest)
		return
	}

	notify := r.URL.Query().Get("notify")
	notifyFlag := "0"
	if notify == "1" || notify == "true" {
		notifyFlag = "1"
	}

	appURL := h.appURL(r, formURL, notifyFlag)

	switch useragent.Classify(r.Header.Get("User-Agent")) {
	case useragent.Crawler:
		h.serveCrawler(w, r, formURL, appURL)
	case useragent.InAppHuman:
		h.serveInApp(w, appURL)
	default:
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, appURL, http.StatusFound)
	}
}

// appURL builds the app-shell URL the previewed link ultimately opens.
// Scheme comes from the proxy header because the service runs behind TLS
// termination.
func (h *LinkPreviewHandler) appURL(r *http.Request, formURL, notifyFlag string) string {
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = "https"
	}
	return fmt.Sprintf("%s://%s/?form=%s&redirect=true&notify=%s",
		proto, r.Host, url.QueryEscape(formURL), notifyFlag)
}

// serveCrawler renders the OG metadata page. Metadata precedence is
// caller-supplied query overrides, then form metadata fetched best-effort,
// then config defaults, so the preview renders even when discovery fails.
func (h *LinkPreviewHandler) serveCrawler(w http.ResponseWriter, r *http.Request, formURL, appURL string) {
	q := r.URL.Query()
	overrideTitle := q.Get("title")
	overrideDesc := q.Get("desc")
	overrideImage := q.Get("image")

	title := h.cfg.DefaultOGTitle
	description := h.cfg.DefaultOGDesc

	// Discovery is skipped when the caller already supplied both texts.
	if overrideTitle == "" || overrideDesc == "" {
		if _, em, err := h.inspect.Inspect(r.Context(), formURL); err == nil {
			if em.Title != "" {
				title = em.Title
			}
			if em.Description != "" {
				description = em.Description
			}
		} else {
			h.logger.Debug("preview metadata discovery failed, using defaults", "form", formURL, "error", err)
		}
	}

	// Crawler-derived text goes through the strict policy, which strips
	// tags and entity-escapes what remains. Caller-supplied overrides are
	// entity-escaped instead so markup arrives inert but intact.
	title = h.sanitize.Sanitize(title)
	description = h.sanitize.Sanitize(description)
	if overrideTitle != "" {
		title = html.EscapeString(overrideTitle)
	}
	if overrideDesc != "" {
		description = html.EscapeString(overrideDesc)
	}
	image := h.cfg.DefaultOGImage
	if overrideImage != "" {
		image = overrideImage
	}
	image = html.EscapeString(image)
	escapedApp := html.EscapeString(appURL)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d, s-maxage=%d",
		int(constants.PreviewCacheMaxAge.Seconds()), int(constants.PreviewCacheMaxAge.Seconds())))

	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>%s</title>
<meta property="og:title" content="%s">
<meta property="og:description" content="%s">
<meta property="og:image" content="%s">
<meta property="og:url" content="%s">
<meta property="og:type" content="website">
<meta name="twitter:card" content="summary_large_image">
</head>
<body>%s</body>
</html>
`, title, title, description, image, escapedApp, description)
}

// serveInApp sends the in-app browser to the app shell without a 302:
// some WebViews drop query parameters on redirects, so navigation happens
// client-side with a meta refresh fallback.
func (h *LinkPreviewHandler) serveInApp(w http.ResponseWriter, appURL string) {
	escapedApp := html.EscapeString(appURL)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="0;url=%s">
<script>location.replace(%q);</script>
</head>
<body>
<p><a href="%s">開いています...</a></p>
</body>
</html>
`, escapedApp, appURL, escapedApp)
}
