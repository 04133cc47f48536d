package staticsearch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TextNormalizer maps a display name to the form tokens are cut from.
type TextNormalizer func(string) string

// NormalizeText decomposes s (NFKD), strips combining marks and lowercases
// it. The client must apply the same steps to typed queries, otherwise the
// prefixes it derives will not name existing shards.
func NormalizeText(s string) string {
	// A transform chain keeps internal state, so build one per call.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Tokenize splits s on runs of non-letter characters. Digits, punctuation
// and whitespace all separate tokens; empty tokens are dropped.
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// TokenPrefixes returns the distinct leading n-rune prefixes of tokens in
// first-seen order. A token shorter than n is its own prefix; it is not
// padded.
func TokenPrefixes(tokens []string, n int) []string {
	seen := make(map[string]struct{}, len(tokens))
	prefixes := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		p := tok
		if r := []rune(tok); len(r) > n {
			p = string(r[:n])
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		prefixes = append(prefixes, p)
	}
	return prefixes
}

// IndexTable files every entry of table under each distinct token prefix
// of its normalized display name. Within a shard, entries keep table order.
func IndexTable(table *DisplayTable, tokenLength int, normalize TextNormalizer) *Shards {
	if normalize == nil {
		normalize = NormalizeText
	}
	shards := NewShards()
	for _, e := range table.Entries() {
		entry := ShardEntry{
			Lat:  e.LatitudeText,
			Lon:  e.LongitudeText,
			Pop:  e.PopulationText,
			Name: e.Name,
		}
		for _, p := range TokenPrefixes(Tokenize(normalize(e.Name)), tokenLength) {
			shards.Add(p, entry)
		}
	}
	return shards
}
