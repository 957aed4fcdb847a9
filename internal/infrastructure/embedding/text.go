package embedding

import (
	"strings"
)

// DefaultMaxInputLength bounds the text sent to the embedding API.
// Titles and vendor names carry most of the signal; anything past this
// is marginal and costs tokens.
const DefaultMaxInputLength = 800

// ProductText builds the canonical embedding input for a product or
// listing from its descriptive fields. Fields appear in a fixed order so
// identical items produce identical texts regardless of source.
func ProductText(vendor, productType, title, description string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxInputLength
	}

	parts := make([]string, 0, 4)
	for _, s := range []string{vendor, productType, title, description} {
		s = strings.TrimSpace(s)
		if s != "" {
			parts = append(parts, s)
		}
	}

	text := strings.Join(parts, " | ")
	if len(text) > maxLen {
		text = truncateOnRune(text, maxLen)
	}
	return text
}

// truncateOnRune cuts the string to at most maxLen bytes without
// splitting a multi-byte rune.
func truncateOnRune(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !isRuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
