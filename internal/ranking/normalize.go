package ranking

import "strings"

// Normalize reduces a raw domain or URL to the identity key used for
// deduplicating company mentions. It lowercases the input, strips the
// scheme, a leading "www.", and any path, then drops the final dot
// separated label (assumed to be the TLD).
//
// Multi-label TLDs are not special-cased: "sub.example.co.uk" normalizes
// to "sub.example.co", not "sub.example". Downstream ranking has always
// assumed single-label stripping, so this stays as-is.
func Normalize(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}

	parts := strings.Split(d, ".")
	if len(parts) > 1 {
		return strings.Join(parts[:len(parts)-1], ".")
	}
	return d
}

// ExtractDomain strips the scheme, "www." prefix, path, and query from a
// URL-ish string, keeping the TLD. This is the display/lookup form of a
// domain; Normalize is the comparison form.
func ExtractDomain(rawURL string) string {
	d := strings.TrimSpace(rawURL)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	return d
}
