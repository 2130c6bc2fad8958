package filter

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// Leetspeak substitutions. Multi-character entries are applied first so that
// single-character rules cannot shadow them partially.
var leetMulti = []struct{ from, to string }{
	{"vv", "w"},
	{"()", "o"},
}

var leetSingle = map[rune]rune{
	'4': 'a',
	'@': 'a',
	'8': 'b',
	'3': 'e',
	'6': 'g',
	'9': 'g',
	'1': 'i',
	'!': 'i',
	'|': 'i',
	'0': 'o',
	'5': 's',
	'$': 's',
	'7': 't',
	'2': 'z',
}

// Phonetic substitutions applied after leet decoding.
var phonetic = []struct{ from, to string }{
	{"ph", "f"},
	{"ck", "k"},
	{"kk", "k"},
}

const (
	hashTruncation = 16
	excerptContext = 30
	excerptMaxLen  = 120
)

// Normalize produces the deduplicated canonical variants of text used for
// obfuscation-resistant matching. The first variant is always the raw
// lowercase form. Empty input yields a single empty-string variant, which
// callers must treat as "no match possible".
//
// Characters outside the substitution tables (including non-ASCII) pass
// through unchanged; there is no Unicode confusable mapping.
func Normalize(text string) []string {
	lower := strings.ToLower(text)

	var variants []string
	seen := make(map[string]struct{})
	add := func(v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	add(lower)
	add(alphanumericOnly(lower))

	decoded := DecodeLeetspeak(lower)
	add(decoded)
	add(alphanumericOnly(decoded))

	add(collapseRuns(lower))
	add(stripSeparators(lower))
	// Stripping separators can expose digraphs the first decode pass could
	// not see (p.h.o.n.e -> phone), so the combined form decodes again.
	add(collapseRuns(DecodeLeetspeak(stripSeparators(decoded))))

	return variants
}

// DecodeLeetspeak applies the substitution tables greedily, multi-character
// entries first, followed by the phonetic substitutions.
func DecodeLeetspeak(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); {
		matched := false
		for _, sub := range leetMulti {
			if strings.HasPrefix(text[i:], sub.from) {
				b.WriteString(sub.to)
				i += len(sub.from)
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		r := rune(text[i])
		if r < 128 {
			if repl, ok := leetSingle[r]; ok {
				b.WriteRune(repl)
			} else {
				b.WriteByte(text[i])
			}
			i++
			continue
		}

		// Non-ASCII: copy the byte through untouched.
		b.WriteByte(text[i])
		i++
	}

	out := b.String()
	for _, sub := range phonetic {
		for strings.Contains(out, sub.from) {
			out = strings.ReplaceAll(out, sub.from, sub.to)
		}
	}

	return out
}

// alphanumericOnly strips everything except ASCII letters and digits.
func alphanumericOnly(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// collapseRuns reduces runs of 3 or more identical characters to 2.
func collapseRuns(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	var prev rune = -1
	runLen := 0
	for _, r := range text {
		if r == prev {
			runLen++
		} else {
			prev = r
			runLen = 1
		}
		if runLen <= 2 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripSeparators removes spaces, hyphens, underscores and dots.
func stripSeparators(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case ' ', '-', '_', '.':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ContentHash returns a truncated one-way digest of the raw message content.
// The truncation length is fixed so hashes stay comparable across restarts.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:hashTruncation]
}

// Excerpt builds a bounded, redacted snippet around the first occurrence of
// matched in text (located case-insensitively) for human review. Truncated
// ends are marked with ellipses and the total length is hard-capped.
func Excerpt(text, matched string) string {
	if text == "" || matched == "" {
		return ""
	}

	lower := strings.ToLower(text)
	idx := strings.Index(lower, strings.ToLower(matched))
	if idx < 0 {
		if len(text) > excerptMaxLen {
			return text[:snapRuneStart(text, excerptMaxLen)] + "..."
		}
		return text
	}

	start := snapRuneStart(text, idx-excerptContext)
	end := snapRuneStart(text, idx+len(matched)+excerptContext)

	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	} else {
		start = 0
	}
	if end < len(text) {
		suffix = "..."
	} else {
		end = len(text)
	}

	excerpt := prefix + text[start:end] + suffix
	if len(excerpt) > excerptMaxLen {
		excerpt = excerpt[:snapRuneStart(excerpt, excerptMaxLen)] + "..."
	}
	return excerpt
}

// snapRuneStart moves i left to the nearest UTF-8 rune boundary so window
// slicing never splits a multi-byte character.
func snapRuneStart(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
