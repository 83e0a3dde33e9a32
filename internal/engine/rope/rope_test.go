package rope

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	r := New()
	if r.Len() != 0 {
		t.Errorf("New rope should have length 0, got %d", r.Len())
	}
	if !r.IsEmpty() {
		t.Error("New rope should be empty")
	}
	if r.String() != "" {
		t.Errorf("New rope String() should be empty, got %q", r.String())
	}
}

func TestFromString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		runes int
	}{
		{"empty", "", 0},
		{"single char", "a", 1},
		{"short string", "hello", 5},
		{"cjk", "世界", 2},
		{"emoji", "😀", 1},
		{"mixed", "hello 世界 🌍", 10},
		{"long string", strings.Repeat("abcdefghij", 100), 1000},
		{"long astral", strings.Repeat("𝄞x", 500), 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.input)
			if r.String() != tt.input {
				t.Errorf("String() = %q, want %q", r.String(), tt.input)
			}
			if r.Len() != tt.runes {
				t.Errorf("Len() = %d, want %d", r.Len(), tt.runes)
			}
			if r.ByteLen() != len(tt.input) {
				t.Errorf("ByteLen() = %d, want %d", r.ByteLen(), len(tt.input))
			}
		})
	}
}

func TestSummaryCountsSurrogates(t *testing.T) {
	r := FromString("a😀b")
	sum := r.Summary()
	if sum.Runes != 3 {
		t.Errorf("Runes = %d, want 3", sum.Runes)
	}
	if sum.UTF16Units != 4 {
		t.Errorf("UTF16Units = %d, want 4", sum.UTF16Units)
	}
	if sum.Astral != 1 {
		t.Errorf("Astral = %d, want 1", sum.Astral)
	}
	if sum.Flags&FlagASCII != 0 {
		t.Error("FlagASCII should be cleared")
	}
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		offset   int
		text     string
		expected string
	}{
		{"insert at start", "world", 0, "hello ", "hello world"},
		{"insert at end", "hello", 5, " world", "hello world"},
		{"insert in middle", "helloworld", 5, " ", "hello world"},
		{"insert into empty", "", 0, "hello", "hello"},
		{"insert empty string", "hello", 3, "", "hello"},
		{"insert after cjk", "世界", 1, "!", "世!界"},
		{"insert after emoji", "😀ab", 1, "X", "😀Xab"},
		{"insert between emoji", "😀😀", 1, "|", "😀|😀"},
		{"insert past end appends", "ab", 10, "c", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.initial)
			r = r.Insert(tt.offset, tt.text)
			if got := r.String(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		start    int
		end      int
		expected string
	}{
		{"delete from start", "hello world", 0, 6, "world"},
		{"delete from end", "hello world", 5, 11, "hello"},
		{"delete from middle", "hello world", 5, 6, "helloworld"},
		{"delete all", "hello", 0, 5, ""},
		{"delete nothing", "hello", 3, 3, "hello"},
		{"delete emoji", "a😀b", 1, 2, "ab"},
		{"delete after emoji", "😀abc", 1, 3, "😀c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.initial)
			r = r.Delete(tt.start, tt.end)
			if got := r.String(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		start    int
		end      int
		text     string
		expected string
	}{
		{"replace word", "hello world", 6, 11, "universe", "hello universe"},
		{"replace with shorter", "hello world", 0, 5, "hi", "hi world"},
		{"replace all", "ab", 0, 2, "x", "x"},
		{"replace astral", "x🎉y", 1, 2, "🎊", "x🎊y"},
		{"replace nothing with insert", "hello", 5, 5, " world", "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.initial)
			r = r.Replace(tt.start, tt.end, tt.text)
			if got := r.String(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestImmutability(t *testing.T) {
	original := FromString(strings.Repeat("abc😀", 300))
	before := original.String()

	_ = original.Insert(17, "inserted")
	_ = original.Delete(5, 900)
	_ = original.Replace(0, 1, "z")

	if original.String() != before {
		t.Error("original rope was modified")
	}
}

func TestSlice(t *testing.T) {
	r := FromString("ab😀cd" + strings.Repeat("é", 1000))

	tests := []struct {
		start, end int
		expected   string
	}{
		{0, 2, "ab"},
		{2, 3, "😀"},
		{1, 4, "b😀c"},
		{4, 6, "dé"},
		{-3, 1, "a"},
		{1003, 2000, "éé"},
		{3, 3, ""},
	}
	for _, tt := range tests {
		if got := r.Slice(tt.start, tt.end); got != tt.expected {
			t.Errorf("Slice(%d, %d) = %q, want %q", tt.start, tt.end, got, tt.expected)
		}
	}
}

func TestLargeRopeStaysBalanced(t *testing.T) {
	r := New()
	var model []rune
	for i := 0; i < 20000; i++ {
		c := rune('a' + i%26)
		if i%7 == 0 {
			c = '😀'
		}
		r = r.Insert(r.Len(), string(c))
		model = append(model, c)
	}
	if r.Len() != len(model) {
		t.Fatalf("Len() = %d, want %d", r.Len(), len(model))
	}
	if r.String() != string(model) {
		t.Fatal("content mismatch after appends")
	}
	// 20000 code points fit in a few hundred chunks; a balanced tree of
	// fanout >= 4 stays well under 10 levels.
	if h := r.height(); h > 10 {
		t.Errorf("height() = %d, tree is not balanced", h)
	}
}

func TestDeleteCollapsesRoot(t *testing.T) {
	r := FromString(strings.Repeat("x", 10000))
	tall := r.height()
	r = r.Delete(5, 10000)
	if r.String() != "xxxxx" {
		t.Fatalf("got %q", r.String())
	}
	if r.height() >= tall {
		t.Errorf("height() = %d, expected root to collapse below %d", r.height(), tall)
	}
}

func TestRunes(t *testing.T) {
	s := "a😀" + strings.Repeat("世", 400) + "z"
	got := FromString(s).Runes()
	want := []rune(s)
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rune %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRuneIterator(t *testing.T) {
	s := strings.Repeat("a😀é", 200)
	it := FromString(s).Iter()
	want := []rune(s)
	n := 0
	for it.Next() {
		if it.Index() != n {
			t.Fatalf("Index() = %d, want %d", it.Index(), n)
		}
		if it.Rune() != want[n] {
			t.Fatalf("rune %d = %q, want %q", n, it.Rune(), want[n])
		}
		n++
	}
	if n != len(want) {
		t.Errorf("iterated %d runes, want %d", n, len(want))
	}
}

func TestChunkIteratorOffsets(t *testing.T) {
	r := FromString(strings.Repeat("😀bc", 400))
	it := r.Chunks()
	expected := 0
	for it.Next() {
		if it.Offset() != expected {
			t.Fatalf("Offset() = %d, want %d", it.Offset(), expected)
		}
		expected += it.Chunk().Runes()
	}
	if expected != r.Len() {
		t.Errorf("chunks cover %d runes, want %d", expected, r.Len())
	}
}
