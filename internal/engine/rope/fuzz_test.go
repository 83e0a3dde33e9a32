package rope

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func FuzzFromString(f *testing.F) {
	for _, seed := range []string{"", "hello", "日本語", "emoji 🎉 test", "\x00\x01\x02", strings.Repeat("é😀", 200)} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		if !utf8.ValidString(s) {
			t.Skip()
		}
		r := FromString(s)
		if got := string(r.Runes()); got != s {
			t.Fatalf("Runes() lost text: %q", got)
		}
		if r.Len() != utf8.RuneCountInString(s) || r.ByteLen() != len(s) {
			t.Fatalf("Len=%d ByteLen=%d for %d runes, %d bytes", r.Len(), r.ByteLen(), utf8.RuneCountInString(s), len(s))
		}
	})
}

// FuzzReplace checks Replace against a []rune model.
func FuzzReplace(f *testing.F) {
	f.Add("hello world", 0, 5, "hi")
	f.Add("hello world", 6, 11, "universe")
	f.Add("a😀b😀c", 1, 3, "🎉")
	f.Add("", 0, 0, "x")
	f.Add(strings.Repeat("ab😀", 120), 100, 250, "")

	f.Fuzz(func(t *testing.T, initial string, start, end int, text string) {
		if !utf8.ValidString(initial) || !utf8.ValidString(text) {
			t.Skip()
		}
		model := []rune(initial)
		start = min(max(start, 0), len(model))
		end = min(max(end, start), len(model))

		got := FromString(initial).Replace(start, end, text)
		want := string(model[:start]) + text + string(model[end:])
		if got.String() != want {
			t.Fatalf("Replace(%d, %d) = %q, want %q", start, end, got.String(), want)
		}
		if got.Len() != utf8.RuneCountInString(want) {
			t.Fatalf("Len = %d, want %d", got.Len(), utf8.RuneCountInString(want))
		}
	})
}
