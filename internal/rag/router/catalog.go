package router

import (
	"strings"

	"github.com/akolanti/ragrouter/internal/domain/commonModels"
)

const (
	Bielik    = "speakleash/bielik-11b-v2.6-instruct"
	Breeze    = "mediatek/breeze-7b-instruct"
	ChatQA70B = "nvidia/llama3-chatqa-1.5-70b"
	Llama405B = "meta/llama-3.1-405b-instruct"
	ChatGLM3  = "thudm/chatglm3-6b"
	ChatQA8B  = "nvidia/llama3-chatqa-1.5-8b"

	DefaultModel = ChatQA8B
)

var catalog = []commonModels.ModelDescriptor{
	{
		Id: Bielik, ShortName: "bielik", DisplayName: "Bielik 11B v2.6 Instruct",
		Developer: "SpeakLeash", ParameterCount: "11B", Language: "Polish",
		Description: "Polish-language instruction model. Best for questions written in Polish.",
	},
	{
		Id: Breeze, ShortName: "breeze", DisplayName: "Breeze 7B Instruct",
		Developer: "MediaTek", ParameterCount: "7B", Language: "Traditional Chinese",
		Description: "Traditional Chinese instruction model. Best for questions written in Chinese.",
	},
	{
		Id: ChatQA70B, ShortName: "chatqa-70b", DisplayName: "Llama3 ChatQA 1.5 70B",
		Developer: "NVIDIA", ParameterCount: "70B", Language: "English",
		Description: "Question answering over retrieved documents, higher capacity.",
	},
	{
		Id: Llama405B, ShortName: "llama-405b", DisplayName: "Llama 3.1 405B Instruct",
		Developer: "Meta", ParameterCount: "405B", Language: "Multilingual",
		Description: "General reasoning, math, code and analysis.",
	},
	{
		Id: ChatGLM3, ShortName: "chatglm3", DisplayName: "ChatGLM3 6B",
		Developer: "Tsinghua KEG / Zhipu AI", ParameterCount: "6B", Language: "Chinese/English",
		Description: "Conversational assistant for open-ended chat.",
	},
	{
		Id: ChatQA8B, ShortName: "chatqa-8b", DisplayName: "Llama3 ChatQA 1.5 8B",
		Developer: "NVIDIA", ParameterCount: "8B", Language: "English",
		Description: "Small default model for question answering over retrieved documents.",
	},
}

// Catalog returns a copy of the known models.
func Catalog() []commonModels.ModelDescriptor {
	out := make([]commonModels.ModelDescriptor, len(catalog))
	copy(out, catalog)
	return out
}

// lookup resolves a model id or short name, case-insensitively.
func lookup(name string) (commonModels.ModelDescriptor, bool) {
	for _, m := range catalog {
		if strings.EqualFold(m.Id, name) || strings.EqualFold(m.ShortName, name) {
			return m, true
		}
	}
	return commonModels.ModelDescriptor{}, false
}
