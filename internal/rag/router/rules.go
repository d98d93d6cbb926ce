package router

import (
	"strings"
	"unicode"
)

type Rule struct {
	Name    string
	Match   func(lowered string) bool
	ModelId string
}

var cjk = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1}}}

func containsAnyWord(words ...string) func(string) bool {
	return func(q string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}
}

// rules are evaluated in order, first match wins. Language rules come first.
var rules = []Rule{
	{
		Name:    "polish",
		Match:   func(q string) bool { return strings.ContainsAny(q, "ąćęłńóśźż") },
		ModelId: Bielik,
	},
	{
		Name: "chinese",
		Match: func(q string) bool {
			return strings.ContainsFunc(q, func(r rune) bool { return unicode.Is(cjk, r) })
		},
		ModelId: Breeze,
	},
	{
		Name:    "retrieval",
		Match:   containsAnyWord("qa", "retrieval", "question answer", "document", "rag"),
		ModelId: ChatQA70B,
	},
	{
		Name:    "reasoning",
		Match:   containsAnyWord("math", "reasoning", "logic", "code", "analysis"),
		ModelId: Llama405B,
	},
	{
		Name:    "conversation",
		Match:   containsAnyWord("chat", "assistant", "conversation", "talk", "discuss"),
		ModelId: ChatGLM3,
	},
}

// Heuristic picks a model from the query text alone.
func Heuristic(query string) string {
	q := strings.ToLower(query)
	for _, r := range rules {
		if r.Match(q) {
			return r.ModelId
		}
	}
	return DefaultModel
}
