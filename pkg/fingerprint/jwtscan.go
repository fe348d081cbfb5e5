package fingerprint

import (
	"encoding/base64"
	"strings"
)

// FindEncodedFragment reports whether any base64 encoding of needle, or of
// a JSON-boundary-adjusted substring of it, appears verbatim in haystack.
// It exists to confirm a known secret literal actually leaked into a
// captured token (a JWT claim, a base64-wrapped header value) before its
// fingerprint is published: a direct substring search on the encoded text
// alone misses hits whenever the claim's byte offset shifts the base64
// padding relative to a clean encoding of needle.
func FindEncodedFragment(haystack, needle string) (bool, string) {
	for _, pattern := range generateBase64Patterns(needle) {
		if strings.Contains(haystack, pattern) {
			return true, pattern
		}
	}
	return false, ""
}

// generateBase64Patterns enumerates base64 encodings (standard and URL
// alphabets) of every substring of s of length >= 3, plus the same
// substrings wrapped in the JSON-neighbor characters a claim value is
// likely to sit next to, since that context shifts the encoding's padding.
func generateBase64Patterns(s string) []string {
	seen := make(map[string]bool)
	add := func(v string) {
		seen[base64.StdEncoding.EncodeToString([]byte(v))] = true
		seen[base64.URLEncoding.EncodeToString([]byte(v))] = true
	}

	for i := 0; i < len(s); i++ {
		for j := i + 3; j <= len(s); j++ {
			substring := s[i:j]

			add(substring)
			for _, prefix := range []string{"\"", ",", ":", "{", "}"} {
				add(prefix + substring)
			}
			for _, prefix := range []string{"\",", "\":", ":\"", ",\""} {
				add(prefix + substring)
			}
			for _, suffix := range []string{"\"", ",", ":", "}", "\","} {
				add(substring + suffix)
			}
		}
	}

	patterns := make([]string, 0, len(seen)*2)
	for pattern := range seen {
		patterns = append(patterns, pattern)
		if trimmed := strings.TrimRight(pattern, "="); len(trimmed) >= 4 {
			patterns = append(patterns, trimmed)
		}
	}
	return patterns
}
