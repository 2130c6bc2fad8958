package filter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("empty input yields single empty variant", func(t *testing.T) {
		variants := Normalize("")
		assert.Equal(t, []string{""}, variants)
	})

	t.Run("raw lowercase always first", func(t *testing.T) {
		variants := Normalize("Hello World")
		assert.Equal(t, "hello world", variants[0])
	})

	t.Run("leetspeak decoded", func(t *testing.T) {
		variants := Normalize("b4dw0rd")
		assert.Contains(t, variants, "badword")
	})

	t.Run("separators stripped", func(t *testing.T) {
		variants := Normalize("b.a.d_w-o r d")
		assert.Contains(t, variants, "badword")
	})

	t.Run("repeated characters collapsed", func(t *testing.T) {
		variants := Normalize("baaaad")
		assert.Contains(t, variants, "baad")
	})

	t.Run("combined transform defeats stacked obfuscation", func(t *testing.T) {
		variants := Normalize("b.4.4.4.d w 0 r d")
		assert.Contains(t, variants, "baadword")
	})

	t.Run("separators cannot hide phonetic digraphs", func(t *testing.T) {
		variants := Normalize("p.h.o.n.e")
		assert.Contains(t, variants, "fone")

		variants = Normalize("k.i.c.k")
		assert.Contains(t, variants, "kik")
	})

	t.Run("non-ascii passes through", func(t *testing.T) {
		variants := Normalize("héllo")
		assert.Equal(t, "héllo", variants[0])
	})

	t.Run("variants are deduplicated", func(t *testing.T) {
		variants := Normalize("plain")
		seen := make(map[string]int)
		for _, v := range variants {
			seen[v]++
		}
		for v, n := range seen {
			assert.Equal(t, 1, n, "variant %q appears more than once", v)
		}
	})
}

// Re-normalizing any variant must not invent variants the original set does
// not already contain, or decoding could chase obfuscation indefinitely.
func TestNormalizeIdempotence(t *testing.T) {
	inputs := []string{
		"b4dw0rd",
		"hello world",
		"s.p.a.c.e.d",
		"loooool",
		"ph0ne h4ck",
		"vv0rd",
		"",
		// Separator-hidden digraphs: stripping must not surface strings
		// that another normalization round would decode further.
		"p.h",
		"c k",
		"p-hone",
		"k.k",
		"v.v",
	}

	for _, input := range inputs {
		original := Normalize(input)
		originalSet := make(map[string]struct{}, len(original))
		for _, v := range original {
			originalSet[v] = struct{}{}
		}

		for _, variant := range original {
			for _, again := range Normalize(variant) {
				_, ok := originalSet[again]
				assert.True(t, ok, "input %q: variant %q produced new variant %q", input, variant, again)
			}
		}
	}
}

func TestDecodeLeetspeak(t *testing.T) {
	cases := map[string]string{
		"b4d":    "bad",
		"h3ll0":  "hello",
		"1d10t":  "idiot",
		"$pam":   "spam",
		"vvord":  "word",
		"phone":  "fone",
		"attack": "attak",
		"kkk":    "k",
		"plain":  "plain",
	}

	for input, want := range cases {
		assert.Equal(t, want, DecodeLeetspeak(input), "input %q", input)
	}
}

func TestContentHash(t *testing.T) {
	t.Run("deterministic and truncated", func(t *testing.T) {
		h1 := ContentHash("some message")
		h2 := ContentHash("some message")
		assert.Equal(t, h1, h2)
		assert.Len(t, h1, hashTruncation)
	})

	t.Run("never equals the raw text", func(t *testing.T) {
		raw := "a bad message"
		assert.NotEqual(t, raw, ContentHash(raw))
	})

	t.Run("different content differs", func(t *testing.T) {
		assert.NotEqual(t, ContentHash("one"), ContentHash("two"))
	})
}

func TestExcerpt(t *testing.T) {
	t.Run("short text returned whole", func(t *testing.T) {
		assert.Equal(t, "this is bad", Excerpt("this is bad", "bad"))
	})

	t.Run("long text bounded with ellipses", func(t *testing.T) {
		text := strings.Repeat("x", 200) + "badword" + strings.Repeat("y", 200)
		excerpt := Excerpt(text, "badword")
		assert.Contains(t, excerpt, "badword")
		assert.True(t, strings.HasPrefix(excerpt, "..."))
		assert.True(t, strings.HasSuffix(excerpt, "..."))
		assert.LessOrEqual(t, len(excerpt), excerptMaxLen+3)
	})

	t.Run("match located case-insensitively", func(t *testing.T) {
		excerpt := Excerpt("This Is BADWORD here", "badword")
		assert.Contains(t, excerpt, "BADWORD")
	})

	t.Run("empty inputs", func(t *testing.T) {
		assert.Equal(t, "", Excerpt("", "bad"))
		assert.Equal(t, "", Excerpt("text", ""))
	})

	t.Run("window edges never split multi-byte runes", func(t *testing.T) {
		text := strings.Repeat("é", 100) + "badword" + strings.Repeat("ü", 100)
		excerpt := Excerpt(text, "badword")
		assert.True(t, utf8.ValidString(excerpt), "excerpt %q contains a split rune", excerpt)
		assert.Contains(t, excerpt, "badword")

		long := strings.Repeat("é", 200)
		assert.True(t, utf8.ValidString(Excerpt(long, "zzz")))
		assert.True(t, utf8.ValidString(Excerpt(long, "é")))
	})
}
