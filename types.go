package deka

// LanguageCode is the canonical identifier for a language (ISO 639-1 where one
// exists, ISO 639-3 otherwise).
type LanguageCode string

// AutoDetect marks a source language that the provider should detect.
const AutoDetect LanguageCode = "auto"

func (c LanguageCode) String() string {
	return string(c)
}

// Category separates classical translation APIs from language-model back-ends.
type Category string

const (
	// CategoryClassical is a dedicated machine translation API.
	CategoryClassical Category = "classical"
	// CategoryModel is a general-purpose language model used as a translator.
	CategoryModel Category = "model"
)

// ProviderDescriptor is static metadata for a registered provider.
type ProviderDescriptor struct {
	ID            string   `json:"id"`
	DisplayName   string   `json:"name"`
	Description   string   `json:"description"`
	Category      Category `json:"type"`
	Aliases       []string `json:"aliases,omitempty"`
	CredentialKey string   `json:"credential_key,omitempty"` // e.g. "openai_api_key"
	DefaultModel  string   `json:"default_model,omitempty"`
}

// TranslateRequest is what the engine hands to a provider. Languages are
// already normalized.
type TranslateRequest struct {
	Text   string
	Target LanguageCode
	Source LanguageCode // AutoDetect when the caller gave no source
	Model  string       // empty selects the provider default
}

// Severity grades a Diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Diagnostic codes.
const (
	DiagUnknownModel        = "unknown_model"
	DiagModelIgnored        = "model_ignored"
	DiagUnsupportedLanguage = "unsupported_language"
)

// Diagnostic is a non-fatal finding attached to a result. Permissive
// validation reports through diagnostics instead of failing the call.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// TranslationResult is the outcome of one successful provider invocation.
type TranslationResult struct {
	Text           string         `json:"text"`
	Provider       string         `json:"provider"`
	Model          string         `json:"model,omitempty"`
	SourceLanguage LanguageCode   `json:"source_language"`
	TargetLanguage LanguageCode   `json:"target_language"`
	ElapsedMs      int64          `json:"response_time_ms"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Success        bool           `json:"success"`
	Diagnostics    []Diagnostic   `json:"diagnostics,omitempty"`
}

// SlotState is the lifecycle state of one comparison slot.
type SlotState string

const (
	StatePending   SlotState = "pending"
	StateResolving SlotState = "resolving"
	StateInvoking  SlotState = "invoking"
	StateSucceeded SlotState = "succeeded"
	StateFailed    SlotState = "failed"
)

// Outcome is one provider slot of a comparison: either Result or Err is set.
type Outcome struct {
	Selector    string             // selector as supplied by the caller
	Provider    string             // canonical provider id, empty if unresolved
	Model       string             // effective model, empty for providers without models
	State       SlotState          // StateSucceeded or StateFailed once returned
	FailedIn    SlotState          // stage that failed: StateResolving or StateInvoking
	Result      *TranslationResult // nil on failure
	Err         error              // nil on success
	ElapsedMs   int64
	Diagnostics []Diagnostic
}

// Succeeded reports whether the slot produced a translation.
func (o Outcome) Succeeded() bool {
	return o.State == StateSucceeded && o.Result != nil
}

// ID returns the resolved identity of the slot: "provider" or
// "provider/model". Unresolved slots fall back to the raw selector.
func (o Outcome) ID() string {
	if o.Provider == "" {
		return o.Selector
	}
	if o.Model != "" {
		return o.Provider + "/" + o.Model
	}
	return o.Provider
}

// ComparisonResult aggregates one fan-out over several providers.
type ComparisonResult struct {
	Text            string
	TargetLanguage  LanguageCode
	SourceLanguage  LanguageCode
	Results         []Outcome // caller-supplied selector order
	FastestProvider string    // ID of the fastest successful outcome, "" if none
	TotalMs         int64
}

// Successful returns the succeeded outcomes in input order.
func (c *ComparisonResult) Successful() []Outcome {
	var out []Outcome
	for _, o := range c.Results {
		if o.Succeeded() {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns the failed outcomes in input order.
func (c *ComparisonResult) Failed() []Outcome {
	var out []Outcome
	for _, o := range c.Results {
		if !o.Succeeded() {
			out = append(out, o)
		}
	}
	return out
}

// Ranked returns the successful outcomes ordered by elapsed time. Ties keep
// input order.
func (c *ComparisonResult) Ranked() []Outcome {
	ranked := c.Successful()
	sortOutcomesByElapsed(ranked)
	return ranked
}

// Outcome looks up a slot by its ID or by the selector the caller passed.
func (c *ComparisonResult) Outcome(id string) (Outcome, bool) {
	for _, o := range c.Results {
		if o.ID() == id || o.Selector == id {
			return o, true
		}
	}
	return Outcome{}, false
}
