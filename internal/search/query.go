package search

import (
	"strings"
	"unicode"
)

const maxVariants = 10

// NormalizeQuery lowercases input, collapses whitespace and drops
// punctuation. Characters that carry meaning in technology names (c++, c#,
// node.js, ci/cd) are kept.
func NormalizeQuery(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		case r == '+' || r == '#' || r == '.' || r == '/' || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ExpandQuery returns normalized followed by synonym variants, at most ten.
// A leading phrase with synonyms is swapped while the rest of the query is
// kept, so "backend jakarta" also yields "back end jakarta". Compact
// spellings of spaced keys ("fullstack") are recognized as well.
func ExpandQuery(normalized string) []string {
	normalized = strings.TrimSpace(normalized)
	if normalized == "" {
		return []string{}
	}

	out := make([]string, 0, maxVariants)
	seen := make(map[string]struct{}, maxVariants)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	add(normalized)
	for _, syn := range GetSynonyms(normalized) {
		add(syn)
	}

	words := strings.Fields(normalized)
	swapPrefix := func(phrase string, rest []string) {
		tail := strings.Join(rest, " ")
		for _, syn := range GetSynonyms(phrase) {
			add(syn + " " + tail)
		}
	}

	if key, ok := spacedKey(words[0]); ok {
		add(strings.TrimSpace(key + " " + strings.Join(words[1:], " ")))
		swapPrefix(key, words[1:])
	}
	if len(words) > 1 {
		swapPrefix(words[0], words[1:])
	}
	if len(words) > 2 {
		swapPrefix(words[0]+" "+words[1], words[2:])
	}

	if len(out) > maxVariants {
		out = out[:maxVariants]
	}
	return out
}

// spacedKey finds the synonym key that word spells without its spaces.
func spacedKey(word string) (string, bool) {
	for k := range Synonyms {
		if strings.Contains(k, " ") && strings.ReplaceAll(k, " ", "") == word {
			return k, true
		}
	}
	return "", false
}
