package forms

import (
	"net/url"
	"strings"
)

// BuildPrefillURL returns the viewform URL with the identity field
// prefilled. The message field, when present, is appended empty so the
// form renders it ready for input. Output is deterministic for the same
// inputs.
func BuildPrefillURL(ref Reference, entries *EntryMap, identityValue string) string {
	base := ref.ViewURL
	if i := strings.Index(base, "?"); i >= 0 {
		base = base[:i]
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("?usp=pp_url")
	b.WriteString("&")
	b.WriteString(entries.IdentityField)
	b.WriteString("=")
	b.WriteString(url.QueryEscape(identityValue))
	if entries.MessageField != "" {
		b.WriteString("&")
		b.WriteString(entries.MessageField)
		b.WriteString("=")
	}
	return b.String()
}
