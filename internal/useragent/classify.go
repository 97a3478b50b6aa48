// Package useragent classifies User-Agent strings so the link preview
// endpoint can pick a response strategy.
package useragent

import (
	"regexp"
	"strings"
)

// Classification is the audience a request belongs to.
type Classification int

const (
	// PlainBrowser is a regular browser (or an empty/unknown UA).
	PlainBrowser Classification = iota
	// Crawler is a link preview bot (LINE, Slack, Facebook, ...).
	Crawler
	// InAppHuman is a person inside an in-app WebView, most importantly
	// the LINE app itself.
	InAppHuman
)

// String returns the classification name.
func (c Classification) String() string {
	switch c {
	case Crawler:
		return "crawler"
	case InAppHuman:
		return "in-app-human"
	default:
		return "plain-browser"
	}
}

// Substring signals, treated as configuration data. The crawler list is an
// allow-list of preview bot markers; the in-app list marks embedded
// WebViews that a human is actually driving.
var (
	crawlerPattern = regexp.MustCompile(`(?i)(bot|crawler|spider|facebookexternalhit|twitterbot|slackbot|discordbot|linebot)`)

	// "line" would also match "linebot", so the crawler check must run
	// first and the bare-token check below excludes it explicitly.
	inAppPattern = regexp.MustCompile(`(?i)(fbav|fban|instagram|wv)`)
)

// Classify decides the audience for a User-Agent string. The crawler
// check runs first: "LINEBot" style preview fetchers must never fall
// through to the in-app branch, and a human LINE WebView must never be
// treated as a crawler.
func Classify(ua string) Classification {
	if ua == "" {
		return PlainBrowser
	}

	if crawlerPattern.MatchString(ua) {
		return Crawler
	}

	if inAppPattern.MatchString(ua) || containsLineApp(ua) {
		return InAppHuman
	}

	return PlainBrowser
}

// containsLineApp reports whether the UA names the LINE app without being
// the LINEBot crawler (which the caller has already ruled out; this guard
// keeps the function correct standalone).
func containsLineApp(ua string) bool {
	lower := strings.ToLower(ua)
	for i := 0; ; i += 4 {
		j := strings.Index(lower[i:], "line")
		if j < 0 {
			return false
		}
		i += j
		if !strings.HasPrefix(lower[i+4:], "bot") {
			return true
		}
	}
}
