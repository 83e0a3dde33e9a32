package rope

import (
	"testing"
	"unicode"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestRopeMatchesRuneModel replays random edits against both the rope and a
// plain []rune and requires identical content after every step.
// Property: rope(edits) == runes(edits) for any edit sequence.
func TestRopeMatchesRuneModel(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("code point edits agree with a rune slice", prop.ForAll(
		func(initial string, positions []int, texts []string) bool {
			r := FromString(initial)
			model := []rune(initial)

			for i, p := range positions {
				pos := p % (len(model) + 1)
				del := 0
				if i%3 == 0 {
					del = min(p%5, len(model)-pos)
				}
				ins := ""
				if i < len(texts) {
					ins = texts[i]
				}

				r = r.Replace(pos, pos+del, ins)
				next := make([]rune, 0, len(model)-del+len(ins))
				next = append(next, model[:pos]...)
				next = append(next, []rune(ins)...)
				model = append(next, model[pos+del:]...)

				if r.Len() != len(model) || r.String() != string(model) {
					return false
				}
			}
			return r.Summary().UTF16Units == utf16Len(model)
		},
		gen.UnicodeString(unicode.So),
		gen.SliceOf(gen.IntRange(0, 400)),
		gen.SliceOf(gen.UnicodeString(unicode.So)),
	))

	properties.TestingRun(t)
}

func utf16Len(rs []rune) int {
	n := 0
	for _, r := range rs {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}
