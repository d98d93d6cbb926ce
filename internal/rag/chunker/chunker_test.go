package chunker

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordTokenizer maps every whitespace-led word to one token id.
type wordTokenizer struct {
	vocab map[string]int
	words []string
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{vocab: map[string]int{}}
}

func (w *wordTokenizer) Encode(text string) []int {
	var ids []int
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		piece := cur.String()
		id, ok := w.vocab[piece]
		if !ok {
			id = len(w.words)
			w.vocab[piece] = id
			w.words = append(w.words, piece)
		}
		ids = append(ids, id)
		cur.Reset()
	}
	for _, r := range text {
		if r == ' ' || r == '\n' {
			flush()
		}
		cur.WriteRune(r)
	}
	flush()
	return ids
}

func (w *wordTokenizer) Decode(tokens []int) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(w.words[t])
	}
	return sb.String()
}

func TestSplit_EmptyDocument(t *testing.T) {
	c := New(newWordTokenizer(), 400)
	assert.Empty(t, c.Split(""))
	assert.Empty(t, c.Windows(""))
}

func TestSplit_WindowSizes(t *testing.T) {
	tests := []struct {
		name       string
		words      int
		window     int
		wantChunks int
		lastLen    int
	}{
		{"shorter than window", 10, 400, 1, 10},
		{"exact window", 400, 400, 1, 400},
		{"one over", 401, 400, 2, 1},
		{"many windows", 1000, 400, 3, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.TrimSpace(strings.Repeat("token ", tt.words))
			c := New(newWordTokenizer(), tt.window)

			windows := c.Windows(text)
			require.Len(t, windows, tt.wantChunks)
			for _, w := range windows[:len(windows)-1] {
				assert.Len(t, w, tt.window)
			}
			assert.Len(t, windows[len(windows)-1], tt.lastLen)
			assert.Len(t, c.Split(text), tt.wantChunks)
		})
	}
}

func TestSplit_RoundTripAtTokenGranularity(t *testing.T) {
	texts := []string{
		"The quick brown fox jumps over the lazy dog",
		strings.Repeat("lorem ipsum dolor sit amet\n", 120),
		"Zażółć gęślą jaźń and 中文 text mixed together",
	}

	for _, text := range texts {
		tok := newWordTokenizer()
		c := New(tok, 7)

		original := tok.Encode(text)
		var rejoined []int
		for _, w := range c.Windows(text) {
			rejoined = append(rejoined, w...)
		}
		assert.True(t, slices.Equal(original, rejoined), "token sequence changed for %q", text[:min(20, len(text))])
		assert.Equal(t, text, strings.Join(c.Split(text), ""))
	}
}

func TestSplit_NoOverlap(t *testing.T) {
	tok := newWordTokenizer()
	text := "a b c d e f g h i j"
	c := New(tok, 3)

	chunks := c.Split(text)
	require.Equal(t, []string{"a b c", " d e f", " g h i", " j"}, chunks)
}

func TestSplit_InvalidUTF8IsReplaced(t *testing.T) {
	c := New(byteTokenizer{}, 1)
	chunks := c.Split("ż")
	require.Len(t, chunks, 2)
	for _, ch := range chunks {
		assert.Equal(t, "�", ch)
	}
}

// byteTokenizer emits one token per byte so a window can cut through a rune.
type byteTokenizer struct{}

func (byteTokenizer) Encode(text string) []int {
	ids := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		ids[i] = int(text[i])
	}
	return ids
}

func (byteTokenizer) Decode(tokens []int) string {
	b := make([]byte, len(tokens))
	for i, t := range tokens {
		b[i] = byte(t)
	}
	return string(b)
}
