package matching

import (
	"math"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
)

// stopwords are tokens dropped before token-overlap comparison. They carry
// no product identity and inflate overlap on unrelated listings.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {},
	"new": {}, "set": {}, "pack": {}, "black": {}, "white": {},
	"stainless": {}, "steel": {},
}

// categoryGroups maps category synonyms that should compare as near-equal.
// Retailers disagree on taxonomy labels far more than on the products
// themselves.
var categoryGroups = [][]string{
	{"espresso machine", "espresso machines", "coffee machine", "coffee machines", "semi-automatic espresso machine"},
	{"grinder", "grinders", "coffee grinder", "coffee grinders", "burr grinder"},
	{"accessory", "accessories", "barista tools", "coffee accessories"},
	{"coffee", "coffee beans", "whole bean coffee", "roasted coffee"},
}

// StringSimilarity returns normalized edit-distance similarity in [0,1].
// Case-insensitive and whitespace-trimmed; identical strings score 1 and
// either side empty scores 0.
func StringSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	dist := levenshtein.ComputeDistance(a, b)
	sim := float64(maxLen-dist) / float64(maxLen)
	return clamp01(sim)
}

// TokenOverlapSimilarity returns the share of significant tokens the two
// strings have in common, relative to the larger token set.
func TokenOverlapSimilarity(a, b string) float64 {
	termsA := significantTerms(a)
	termsB := significantTerms(b)

	denom := len(termsA)
	if len(termsB) > denom {
		denom = len(termsB)
	}
	if denom == 0 {
		denom = 1
	}

	shared := 0
	for term := range termsA {
		if _, ok := termsB[term]; ok {
			shared++
		}
	}
	return clamp01(float64(shared) / float64(denom))
}

// TitleSimilarity blends surface similarity with token agreement so minor
// wording differences do not erase a strong token match.
func TitleSimilarity(a, b string) float64 {
	return clamp01(0.6*StringSimilarity(a, b) + 0.4*TokenOverlapSimilarity(a, b))
}

// VendorSimilarity compares vendor names, which are short and prone to
// suffix variation ("Acme" vs "Acme Inc").
func VendorSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.8
	}
	return StringSimilarity(a, b)
}

// PriceSimilarity returns a banded similarity based on relative price error
func PriceSimilarity(p1, p2 decimal.Decimal) float64 {
	if !p1.IsPositive() || !p2.IsPositive() {
		return 0
	}

	f1, _ := p1.Float64()
	f2, _ := p2.Float64()
	avg := (f1 + f2) / 2
	relErr := math.Abs(f1-f2) / avg

	switch {
	case relErr <= 0.05:
		return 1
	case relErr <= 0.15:
		return 0.8
	case relErr <= 0.30:
		return 0.6
	case relErr <= 0.50:
		return 0.4
	default:
		return clamp01(1 - relErr)
	}
}

// CategorySimilarity compares product categories, consulting the synonym
// group table before falling back to string similarity.
func CategorySimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	for _, group := range categoryGroups {
		if containsString(group, a) && containsString(group, b) {
			return 0.8
		}
	}
	return StringSimilarity(a, b)
}

// CosineSimilarity computes cosine similarity of two vectors. Missing,
// empty, zero-magnitude, or mismatched-length vectors score 0; it never
// returns NaN.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}

// significantTerms lowercases, strips punctuation, splits on whitespace and
// drops short tokens and stopwords.
func significantTerms(s string) map[string]struct{} {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)

	terms := make(map[string]struct{})
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= 2 {
			continue
		}
		if _, ok := stopwords[tok]; ok {
			continue
		}
		terms[tok] = struct{}{}
	}
	return terms
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
