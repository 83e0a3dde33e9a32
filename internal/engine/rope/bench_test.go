package rope

import (
	"math/rand"
	"strings"
	"testing"
)

// generateText creates a string of roughly the given size in bytes with a
// sprinkling of multi-byte and astral characters.
func generateText(size int) string {
	words := []string{"the", "quick", "brown", "fox", "jumps", "über", "lazy", "dog", "😀", "世界"}
	var sb strings.Builder
	sb.Grow(size)
	for sb.Len() < size {
		sb.WriteString(words[rand.Intn(len(words))])
		sb.WriteByte(' ')
	}
	return sb.String()
}

func BenchmarkFromString(b *testing.B) {
	text := generateText(1 << 20)
	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = FromString(text)
	}
}

func BenchmarkTypingAtEnd(b *testing.B) {
	for i := 0; i < b.N; i++ {
		r := New()
		for j := 0; j < 10000; j++ {
			r = r.Insert(r.Len(), "x")
		}
	}
}

func BenchmarkRandomReplace(b *testing.B) {
	r := FromString(generateText(1 << 20))
	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pos := rng.Intn(r.Len())
		r = r.Replace(pos, min(pos+3, r.Len()), "abc")
	}
}

func BenchmarkSlice(b *testing.B) {
	r := FromString(generateText(1 << 20))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pos := i % (r.Len() - 100)
		_ = r.Slice(pos, pos+100)
	}
}
