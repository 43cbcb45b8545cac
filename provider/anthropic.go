package provider

import "github.com/ZaguanLabs/deka"

// AnthropicBaseURL is Anthropic's OpenAI-compatible endpoint.
const AnthropicBaseURL = "https://api.anthropic.com/v1"

var anthropicVendor = chatVendor{
	descriptor: deka.ProviderDescriptor{
		ID:            "anthropic",
		DisplayName:   "Anthropic Claude",
		Description:   "Anthropic Claude models used as translators",
		Category:      deka.CategoryModel,
		Aliases:       []string{"claude", "claude-3"},
		CredentialKey: "anthropic_api_key",
		DefaultModel:  "claude-3-5-haiku-latest",
	},
	baseURL: AnthropicBaseURL,
	models: []string{
		"claude-3-5-haiku-latest",
		"claude-3-5-sonnet-latest",
		"claude-3-7-sonnet-latest",
		"claude-sonnet-4-0",
		"claude-opus-4-0",
		"claude-3-haiku-20240307",
		"claude-3-opus-20240229",
	},
}
