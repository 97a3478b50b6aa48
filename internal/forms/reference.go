// Package forms implements the Google Forms linkage engine: URL
// normalization, entry ID discovery, and prefill URL construction.
package forms

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Reference is a normalized pointer to a form.
type Reference struct {
	// RawURL is the caller-supplied URL, untouched.
	RawURL string
	// ViewURL is the canonical viewform URL (or the raw input when no
	// token could be recognized).
	ViewURL string
	// Token is the published form token, empty when unrecognized.
	Token string
}

var (
	// Published form tokens carry a fixed prefix.
	tokenPattern = regexp.MustCompile(`1FAIpQL[0-9A-Za-z_-]+`)

	shortLinkPattern = regexp.MustCompile(`forms\.gle/([a-zA-Z0-9_-]+)`)
	ePathPattern     = regexp.MustCompile(`forms/d/e/([a-zA-Z0-9_-]+)`)
	dPathPattern     = regexp.MustCompile(`forms/d/([a-zA-Z0-9_-]+)`)
)

// Normalize canonicalizes a user-supplied form URL. It never fails: inputs
// it cannot make sense of come back as-is in ViewURL so downstream fetch
// errors surface against the original string.
func Normalize(raw string) Reference {
	// PathUnescape rather than QueryUnescape: a literal "+" in a
	// passthrough URL must survive, only %XX sequences are decoded.
	decoded := raw
	if d, err := url.PathUnescape(raw); err == nil {
		decoded = d
	}
	decoded = strings.TrimSpace(decoded)

	ref := Reference{RawURL: raw, ViewURL: decoded}

	// Short links stay opaque until fetched; the redirect resolves them.
	if shortLinkPattern.MatchString(decoded) {
		return ref
	}

	token := tokenPattern.FindString(decoded)
	if token == "" {
		return ref
	}

	ref.Token = token
	// Editor-style /forms/d/{id}/ URLs keep their shape; everything else
	// gets the published /forms/d/e/ shape.
	if strings.Contains(decoded, "/forms/d/") && !strings.Contains(decoded, "/forms/d/e/") {
		ref.ViewURL = fmt.Sprintf("https://docs.google.com/forms/d/%s/viewform", token)
	} else {
		ref.ViewURL = fmt.Sprintf("https://docs.google.com/forms/d/e/%s/viewform", token)
	}

	return ref
}

// ExtractToken pulls a form token out of an arbitrary string, trying the
// published-token prefix first and falling back to path shapes. Returns ""
// when nothing matches.
func ExtractToken(s string) string {
	if m := tokenPattern.FindString(s); m != "" {
		return m
	}
	if m := ePathPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := dPathPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := shortLinkPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// SubmitURL returns the formResponse endpoint matching the reference shape.
func SubmitURL(ref Reference) string {
	if strings.Contains(ref.ViewURL, "/viewform") {
		return strings.Replace(ref.ViewURL, "/viewform", "/formResponse", 1)
	}
	if ref.Token != "" {
		return fmt.Sprintf("https://docs.google.com/forms/d/e/%s/formResponse", ref.Token)
	}
	return ref.ViewURL
}
