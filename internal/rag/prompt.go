package rag

import (
	"regexp"
	"strings"

	"github.com/akolanti/ragrouter/internal/config"
	"github.com/akolanti/ragrouter/internal/domain/commonModels"
)

var reservedWord = regexp.MustCompile(`(?i)\bcontext\b`)

const reservedReplacement = "provided information"

// Sanitize replaces the standalone word "context", which some hosted models treat as an instruction.
func Sanitize(text string) string {
	return reservedWord.ReplaceAllString(text, reservedReplacement)
}

// BuildContext lists the source filenames once each, in retrieval order, followed by the chunk texts.
func BuildContext(r commonModels.RetrievalResult) string {
	if r.Len() == 0 {
		return "Sources: none\n\nNo matching documents were found."
	}

	seen := make(map[string]bool, r.Len())
	var names []string
	for _, m := range r.Metadata {
		if m.Filename == "" || seen[m.Filename] {
			continue
		}
		seen[m.Filename] = true
		names = append(names, m.Filename)
	}

	var b strings.Builder
	b.WriteString("Sources: ")
	b.WriteString(strings.Join(names, ", "))
	for _, doc := range r.Documents {
		b.WriteString("\n\n")
		b.WriteString(doc)
	}
	return b.String()
}

// BuildPrompt assembles the grounded prompt. The reserved word is scrubbed from the whole
// body, retrieved chunks included.
func BuildPrompt(contextBlock string, question string) string {
	var b strings.Builder
	b.WriteString(config.GroundingInstruction)
	b.WriteString("\n\n### Information\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\n### Question\n")
	b.WriteString(question)
	b.WriteString("\n\n### Answer\n")
	return Sanitize(b.String())
}

// Fragment cuts text into pieces of at most size runes.
func Fragment(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}
	runes := []rune(text)
	out := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		out = append(out, string(runes[start:end]))
	}
	return out
}
