package provider

import "github.com/ZaguanLabs/deka"

// OpenAIBaseURL is the default OpenAI endpoint.
const OpenAIBaseURL = "https://api.openai.com/v1"

var openAIVendor = chatVendor{
	descriptor: deka.ProviderDescriptor{
		ID:            "openai",
		DisplayName:   "OpenAI",
		Description:   "OpenAI GPT models used as translators",
		Category:      deka.CategoryModel,
		Aliases:       []string{"gpt", "chatgpt", "gpt-4", "gpt-3.5"},
		CredentialKey: "openai_api_key",
		DefaultModel:  "gpt-4o-mini",
	},
	baseURL: OpenAIBaseURL,
	models: []string{
		"gpt-4o-mini",
		"gpt-4o",
		"gpt-4.1",
		"gpt-4.1-mini",
		"gpt-4.1-nano",
		"gpt-4-turbo",
		"gpt-4",
		"gpt-3.5-turbo",
	},
}
