// Package deka translates text through many providers behind one interface.
//
// Classical translation APIs (Google Translate, DeepL, GhanaNLP) and language
// models used as translators (OpenAI, Anthropic, Gemini, OpenRouter) are
// addressed by "provider" or "provider/model" selectors. A single call can
// fan the same text out to several providers concurrently and collect the
// results side by side with per-provider timings.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/deka"
//	    _ "github.com/ZaguanLabs/deka/provider"
//	)
//
//	func main() {
//	    if err := deka.Configure(map[string]string{
//	        "openai": os.Getenv("OPENAI_API_KEY"),
//	        "deepl":  os.Getenv("DEEPL_API_KEY"),
//	    }); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    result, err := deka.Compare(context.Background(), "Hello world", "french",
//	        []string{"deepl", "openai/gpt-4o-mini"})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for _, o := range result.Successful() {
//	        fmt.Printf("%s (%dms): %s\n", o.ID(), o.ElapsedMs, o.Result.Text)
//	    }
//	}
package deka
