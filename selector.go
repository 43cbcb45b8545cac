package deka

import "strings"

// SelectorSeparator splits a provider token from a model name.
const SelectorSeparator = "/"

// ParseSelector splits a "provider" or "provider/model" selector. Only the
// first separator splits, so model names may themselves contain "/"
// ("openrouter/meta-llama/llama-3.1-70b-instruct"). Neither the provider nor
// the model is checked for existence here.
func ParseSelector(selector string) (provider string, model string, err error) {
	trimmed := strings.TrimSpace(selector)
	if trimmed == "" {
		return "", "", &InvalidSelectorError{Selector: selector, Reason: "empty selector"}
	}

	provider, model, found := strings.Cut(trimmed, SelectorSeparator)
	provider = strings.TrimSpace(provider)
	model = strings.TrimSpace(model)

	if provider == "" {
		return "", "", &InvalidSelectorError{Selector: selector, Reason: "empty provider"}
	}
	if found && model == "" {
		return "", "", &InvalidSelectorError{Selector: selector, Reason: "empty model"}
	}
	return provider, model, nil
}
