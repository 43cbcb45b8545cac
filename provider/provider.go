// Package provider implements the built-in translation back-ends and
// registers them with deka's default registry:
//
//	import _ "github.com/ZaguanLabs/deka/provider"
//
// Classical APIs (google, deepl, ghananlp) talk to the vendor REST endpoints;
// language models (openai, anthropic, gemini, openrouter) go through their
// OpenAI-compatible chat endpoints. Each provider is configured with
// deka.Configure using its id as key prefix.
package provider

import "github.com/ZaguanLabs/deka"

// DefaultProvider is used when a call names no provider.
const DefaultProvider = "google"

// Builtins returns the registrations of every built-in provider.
func Builtins() []deka.Registration {
	return []deka.Registration{
		{Descriptor: googleDescriptor, Factory: newGoogle},
		{Descriptor: deeplDescriptor, Factory: newDeepL},
		{Descriptor: ghanaNLPDescriptor, Factory: newGhanaNLP},
		openAIVendor.registration(),
		anthropicVendor.registration(),
		geminiVendor.registration(),
		openRouterVendor.registration(),
	}
}

// Register adds the built-in providers to reg and makes google the default.
func Register(reg *deka.Registry) error {
	for _, r := range Builtins() {
		if err := reg.Register(r); err != nil {
			return err
		}
	}
	return reg.SetDefaultProvider(DefaultProvider)
}

func init() {
	if err := Register(deka.Default().Registry()); err != nil {
		panic("deka/provider: " + err.Error())
	}
}
