package chunker

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer is the subset of a BPE encoding the chunker needs.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

func (t tiktokenTokenizer) Encode(text string) []int {
	// special tokens are treated as plain text
	return t.enc.Encode(text, nil, nil)
}

func (t tiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// NewTiktoken loads a named encoding, e.g. cl100k_base. The BPE ranks are fetched
// once and cached under TIKTOKEN_CACHE_DIR when it is set.
func NewTiktoken(encoding string) (Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("loading %s encoding: %w", encoding, err)
	}
	return tiktokenTokenizer{enc: enc}, nil
}

type Chunker struct {
	tokenizer Tokenizer
	window    int
}

func New(tokenizer Tokenizer, window int) *Chunker {
	if window <= 0 {
		window = 1
	}
	return &Chunker{tokenizer: tokenizer, window: window}
}

// Windows returns the token ids cut into consecutive, non-overlapping windows.
func (c *Chunker) Windows(text string) [][]int {
	if text == "" {
		return nil
	}
	tokens := c.tokenizer.Encode(text)
	if len(tokens) == 0 {
		return nil
	}

	windows := make([][]int, 0, (len(tokens)+c.window-1)/c.window)
	for start := 0; start < len(tokens); start += c.window {
		end := min(start+c.window, len(tokens))
		windows = append(windows, tokens[start:end])
	}
	return windows
}

// Split decodes every window back to text. A rune cut at a window edge decodes to U+FFFD.
func (c *Chunker) Split(text string) []string {
	windows := c.Windows(text)
	if len(windows) == 0 {
		return nil
	}
	chunks := make([]string, 0, len(windows))
	for _, w := range windows {
		chunks = append(chunks, strings.ToValidUTF8(c.tokenizer.Decode(w), "�"))
	}
	return chunks
}
