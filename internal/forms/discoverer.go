package forms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/tidwall/gjson"
)

// EntryMap holds what discovery learned about a form.
type EntryMap struct {
	// IdentityField receives the LINE user ID on prefill.
	IdentityField string `json:"identity_field"`
	// MessageField receives the optional free-text message; empty when the
	// form has a single question.
	MessageField string `json:"message_field,omitempty"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	// Entries is every entry ID found, in document order.
	Entries []string `json:"entries"`
}

// Discovery failure reasons.
const (
	ReasonNoHTML    = "no-html"
	ReasonNoEntries = "no-entries"
)

// DiscoveryError reports why entry discovery failed for a form.
type DiscoveryError struct {
	Reason string
	URL    string
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("form discovery failed (%s): %s", e.Reason, e.URL)
}

// Public CORS proxy endpoints tried, in order, when the direct fetch is
// blocked. allorigins wraps the body in JSON; the others relay it raw.
const (
	allOriginsEndpoint = "https://api.allorigins.win/get?url="
	corsProxyEndpoint  = "https://corsproxy.io/?"
	thingProxyEndpoint = "https://thingproxy.freeboard.io/fetch/"
)

// DiscovererConfig holds configuration for creating a Discoverer.
type DiscovererConfig struct {
	Timeout            time.Duration // per-attempt fetch timeout
	UserAgent          string        // presented on the direct fetch
	ProxyChainEnabled  bool
	DefaultTitle       string
	DefaultDescription string
	Logger             *slog.Logger

	// Endpoint overrides for tests; production uses the public proxies.
	AllOriginsURL string
	CORSProxyURL  string
	ThingProxyURL string
}

// Discoverer fetches a form's viewform page and extracts its entry IDs and
// metadata. Fetching runs through a fallback chain because Google serves
// different markup (or refuses) depending on origin.
type Discoverer struct {
	cfg    DiscovererConfig
	client *http.Client
	logger *slog.Logger
}

// NewDiscoverer creates a Discoverer with defaults applied.
func NewDiscoverer(cfg DiscovererConfig) *Discoverer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0"
	}
	if cfg.AllOriginsURL == "" {
		cfg.AllOriginsURL = allOriginsEndpoint
	}
	if cfg.CORSProxyURL == "" {
		cfg.CORSProxyURL = corsProxyEndpoint
	}
	if cfg.ThingProxyURL == "" {
		cfg.ThingProxyURL = thingProxyEndpoint
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Discover fetches the form page and extracts entries and metadata.
// Returns *DiscoveryError when no usable HTML or no entries were found.
func (d *Discoverer) Discover(ctx context.Context, ref Reference) (*EntryMap, error) {
	html, err := d.fetchHTML(ctx, ref.ViewURL)
	if err != nil {
		return nil, &DiscoveryError{Reason: ReasonNoHTML, URL: ref.ViewURL}
	}

	entries := extractEntries(html)
	if len(entries) == 0 {
		return nil, &DiscoveryError{Reason: ReasonNoEntries, URL: ref.ViewURL}
	}

	em := &EntryMap{
		IdentityField: entries[0],
		Entries:       entries,
		Title:         d.cfg.DefaultTitle,
		Description:   d.cfg.DefaultDescription,
	}
	if len(entries) > 1 {
		em.MessageField = entries[1]
	}

	if title := extractTitle(html); title != "" {
		em.Title = title
	}
	if desc := extractDescription(html); desc != "" {
		em.Description = desc
	}

	d.logger.Debug("form discovery succeeded",
		"url", ref.ViewURL,
		"entries", len(entries),
		"identity_field", em.IdentityField,
	)
	return em, nil
}

// fetchHTML walks the fetch chain until one source yields a non-empty body.
func (d *Discoverer) fetchHTML(ctx context.Context, viewURL string) (string, error) {
	type attempt struct {
		name  string
		fetch func(context.Context, string) (string, error)
	}

	attempts := []attempt{
		{"direct", d.fetchDirect},
	}
	if d.cfg.ProxyChainEnabled {
		attempts = append(attempts,
			attempt{"allorigins", d.fetchAllOrigins},
			attempt{"corsproxy", d.fetchCORSProxy},
			attempt{"thingproxy", d.fetchThingProxy},
		)
	}

	var lastErr error
	for _, a := range attempts {
		// The direct fetch runs on colly, which carries no context; the
		// cancellation check here keeps a cancelled request from walking
		// further down the chain.
		if err := ctx.Err(); err != nil {
			return "", err
		}
		html, err := a.fetch(ctx, viewURL)
		if err != nil {
			d.logger.Debug("fetch attempt failed", "source", a.name, "url", viewURL, "error", err)
			lastErr = err
			continue
		}
		if strings.TrimSpace(html) == "" {
			d.logger.Debug("fetch attempt returned empty body", "source", a.name, "url", viewURL)
			lastErr = fmt.Errorf("%s: empty body", a.name)
			continue
		}
		return html, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no fetch sources available")
	}
	return "", lastErr
}

// fetchDirect performs a first-party fetch with a browser user agent.
// Redirects are followed, which also resolves forms.gle short links.
func (d *Discoverer) fetchDirect(ctx context.Context, viewURL string) (string, error) {
	var body string
	var statusCode int

	c := colly.NewCollector(
		colly.UserAgent(d.cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(d.cfg.Timeout)

	c.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body = string(r.Body)
	})

	if err := c.Visit(viewURL); err != nil {
		return "", err
	}
	if statusCode < 200 || statusCode >= 300 {
		return "", fmt.Errorf("direct fetch: status %d", statusCode)
	}
	return body, nil
}

// fetchAllOrigins relays through allorigins, which wraps the upstream body
// in a JSON envelope under "contents".
func (d *Discoverer) fetchAllOrigins(ctx context.Context, viewURL string) (string, error) {
	raw, err := d.get(ctx, d.cfg.AllOriginsURL+url.QueryEscape(viewURL))
	if err != nil {
		return "", err
	}
	contents := gjson.Get(raw, "contents")
	if !contents.Exists() {
		return "", fmt.Errorf("allorigins: no contents field")
	}
	return contents.String(), nil
}

func (d *Discoverer) fetchCORSProxy(ctx context.Context, viewURL string) (string, error) {
	return d.get(ctx, d.cfg.CORSProxyURL+url.QueryEscape(viewURL))
}

func (d *Discoverer) fetchThingProxy(ctx context.Context, viewURL string) (string, error) {
	return d.get(ctx, d.cfg.ThingProxyURL+viewURL)
}

func (d *Discoverer) get(ctx context.Context, u string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Entry IDs appear both in form input markup and inside the inline
// FB_PUBLIC_LOAD_DATA_ script blob, so extraction is regex over the raw
// page rather than a DOM walk. Patterns are tried in order and results
// merged into one document-ordered set.
var entryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`name="entry\.(\d+)"`),
	regexp.MustCompile(`entry\.(\d+)`),
	regexp.MustCompile(`"entry\.(\d+)"`),
	regexp.MustCompile(`entry_(\d+)`),
	regexp.MustCompile(`'entry\.(\d+)'`),
	// Field descriptor pairs inside FB_PUBLIC_LOAD_DATA_: the second ID of
	// [id, ..., null, ... [id, null, 1]] is the submittable entry ID.
	regexp.MustCompile(`\[(\d{8,}),[^,]*?,null,.*?\[(\d{8,}),null,1\]`),
}

// Real entry IDs are long; shorter digit runs are artifacts of the
// surrounding script data.
const minEntryDigits = 8

// extractEntries returns the entry IDs found in the page, normalized to
// "entry.<digits>", first occurrence wins.
func extractEntries(html string) []string {
	seen := make(map[string]bool)
	var entries []string

	for _, p := range entryPatterns {
		for _, m := range p.FindAllStringSubmatch(html, -1) {
			digits := m[len(m)-1]
			if len(digits) < minEntryDigits {
				continue
			}
			id := "entry." + digits
			if seen[id] {
				continue
			}
			seen[id] = true
			entries = append(entries, id)
		}
	}

	return entries
}

// titleSuffix is what Google appends to every form's <title>.
const titleSuffix = " - Google フォーム"

var headerTitlePattern = regexp.MustCompile(`freebirdFormviewerViewHeaderTitle[^>]*>(.*?)</div>`)

// extractTitle returns the form title, or "" when the page has none.
func extractTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		title := strings.TrimSpace(doc.Find("title").First().Text())
		title = strings.TrimSuffix(title, titleSuffix)
		if title != "" {
			return title
		}
	}
	if m := headerTitlePattern.FindStringSubmatch(html); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractDescription returns the form's meta description, or "".
func extractDescription(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	desc, _ := doc.Find(`meta[itemprop="description"]`).First().Attr("content")
	return strings.TrimSpace(desc)
}
