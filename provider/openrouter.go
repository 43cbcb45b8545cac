package provider

import "github.com/ZaguanLabs/deka"

// OpenRouterBaseURL is the OpenRouter endpoint.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouter model ids carry their own vendor prefix, so selectors look like
// "openrouter/meta-llama/llama-3.1-70b-instruct".
var openRouterVendor = chatVendor{
	descriptor: deka.ProviderDescriptor{
		ID:            "openrouter",
		DisplayName:   "OpenRouter",
		Description:   "Hundreds of hosted models behind one API",
		Category:      deka.CategoryModel,
		Aliases:       []string{"or"},
		CredentialKey: "openrouter_api_key",
		DefaultModel:  "openai/gpt-4o-mini",
	},
	baseURL: OpenRouterBaseURL,
	models: []string{
		"openai/gpt-4o-mini",
		"openai/gpt-4o",
		"anthropic/claude-3.5-sonnet",
		"anthropic/claude-3.5-haiku",
		"google/gemini-2.0-flash-001",
		"meta-llama/llama-3.1-70b-instruct",
		"meta-llama/llama-3.1-8b-instruct",
		"mistralai/mistral-large",
		"deepseek/deepseek-chat",
		"qwen/qwen-2.5-72b-instruct",
	},
	// Optional attribution headers: openrouter_referer, openrouter_title.
	headers: func(cfg deka.ProviderConfig) map[string]string {
		headers := map[string]string{}
		if v := cfg.Option("referer"); v != "" {
			headers["HTTP-Referer"] = v
		}
		if v := cfg.Option("title"); v != "" {
			headers["X-Title"] = v
		}
		return headers
	},
}
