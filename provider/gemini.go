package provider

import "github.com/ZaguanLabs/deka"

// GeminiBaseURL is Google's OpenAI-compatible Gemini endpoint.
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

var geminiVendor = chatVendor{
	descriptor: deka.ProviderDescriptor{
		ID:            "gemini",
		DisplayName:   "Google Gemini",
		Description:   "Google Gemini models used as translators",
		Category:      deka.CategoryModel,
		Aliases:       []string{"google-gemini"},
		CredentialKey: "gemini_api_key",
		DefaultModel:  "gemini-2.0-flash",
	},
	baseURL: GeminiBaseURL,
	models: []string{
		"gemini-2.0-flash",
		"gemini-2.0-flash-lite",
		"gemini-2.5-flash",
		"gemini-2.5-pro",
		"gemini-1.5-flash",
		"gemini-1.5-pro",
	},
}
