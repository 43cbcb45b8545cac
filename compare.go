package deka

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// resolved is a selector that made it through parsing, lookup and
// instantiation.
type resolved struct {
	id          string
	model       string
	provider    Provider
	diagnostics []Diagnostic
}

// resolve turns a selector into a provider instance and effective model.
// Model and language checks only produce diagnostics.
func (t *Translator) resolve(selector string, target LanguageCode) (resolved, error) {
	token, model, err := ParseSelector(selector)
	if err != nil {
		return resolved{}, err
	}
	desc, err := t.registry.Resolve(token)
	if err != nil {
		return resolved{}, err
	}
	p, err := t.registry.CreateInstance(desc.ID)
	if err != nil {
		return resolved{}, err
	}

	r := resolved{id: desc.ID, provider: p}
	r.model, r.diagnostics = checkModel(p, desc.ID, model)

	if langs := p.SupportedLanguages(); langs != nil && !slices.Contains(langs, target) {
		r.diagnostics = append(r.diagnostics, Diagnostic{
			Severity: SeverityWarning,
			Code:     DiagUnsupportedLanguage,
			Message:  fmt.Sprintf("%s does not list %s (%s) as a supported language", desc.ID, LanguageName(target), target),
		})
	}
	return r, nil
}

// checkModel picks the effective model. Unknown models are passed through
// with a warning since vendor catalogs move faster than KnownModels.
func checkModel(p Provider, id, model string) (string, []Diagnostic) {
	defaultModel := p.DefaultModel()
	known := p.KnownModels()

	if model == "" {
		return defaultModel, nil
	}
	if defaultModel == "" && len(known) == 0 {
		return "", []Diagnostic{{
			Severity: SeverityWarning,
			Code:     DiagModelIgnored,
			Message:  fmt.Sprintf("%s has no models; %q is ignored", id, model),
		}}
	}
	if len(known) > 0 && !slices.Contains(known, model) {
		return model, []Diagnostic{{
			Severity: SeverityWarning,
			Code:     DiagUnknownModel,
			Message:  fmt.Sprintf("model %q is not a known %s model; sending it anyway", model, id),
		}}
	}
	return model, nil
}

func (t *Translator) logDiagnostics(selector string, diags []Diagnostic) {
	for _, d := range diags {
		t.logger.Warn().
			Str("selector", selector).
			Str("code", d.Code).
			Msg(d.Message)
	}
}

// invoke runs one provider call and records the outcome. The call is timed
// from dispatch to completion; errors and panics are contained in the slot.
func (t *Translator) invoke(ctx context.Context, o *Outcome, p Provider, req TranslateRequest) {
	if t.cache != nil {
		p = NewCachedProvider(p, t.cache, t.logger)
	}

	o.State = StateInvoking
	start := time.Now()
	res, err := call(ctx, o.Provider, p, req)
	o.ElapsedMs = time.Since(start).Milliseconds()

	if err != nil {
		o.State = StateFailed
		o.FailedIn = StateInvoking
		o.Err = err
		t.logger.Debug().Err(err).Str("selector", o.Selector).Int64("elapsed_ms", o.ElapsedMs).Msg("provider failed")
		return
	}

	if res.Provider == "" {
		res.Provider = o.Provider
	}
	if res.Model == "" {
		res.Model = o.Model
	}
	if res.TargetLanguage == "" {
		res.TargetLanguage = req.Target
	}
	if res.SourceLanguage == "" {
		res.SourceLanguage = req.Source
	}
	res.ElapsedMs = o.ElapsedMs
	res.Success = true
	res.Diagnostics = append(res.Diagnostics, o.Diagnostics...)

	o.Result = res
	o.State = StateSucceeded
	t.logger.Debug().Str("selector", o.Selector).Int64("elapsed_ms", o.ElapsedMs).Msg("provider succeeded")
}

type reply struct {
	res *TranslationResult
	err error
}

// call races the provider against ctx so a provider that ignores
// cancellation cannot hold up the caller.
func call(ctx context.Context, id string, p Provider, req TranslateRequest) (*TranslationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CancellationError{Provider: id, Cause: err}
	}

	ch := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- reply{err: &ProviderError{
					Kind:     KindInternal,
					Provider: id,
					Message:  fmt.Sprintf("provider panicked: %v", r),
				}}
			}
		}()
		res, err := p.Translate(ctx, req)
		ch <- reply{res: res, err: err}
	}()

	select {
	case r := <-ch:
		return settle(ctx, id, r)
	case <-ctx.Done():
		return nil, &CancellationError{Provider: id, Cause: ctx.Err()}
	}
}

func settle(ctx context.Context, id string, r reply) (*TranslationResult, error) {
	if r.err != nil {
		if ctx.Err() != nil && (errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded)) {
			return nil, &CancellationError{Provider: id, Cause: ctx.Err()}
		}
		var provErr *ProviderError
		var cancelErr *CancellationError
		if errors.As(r.err, &provErr) || errors.As(r.err, &cancelErr) {
			return nil, r.err
		}
		return nil, &ProviderError{Kind: KindInternal, Provider: id, Message: "translation failed", Cause: r.err}
	}
	if r.res == nil {
		return nil, &ProviderError{Kind: KindMalformedResponse, Provider: id, Message: "provider returned no result"}
	}
	return r.res, nil
}

// Compare translates text with every selected provider concurrently and
// returns one outcome per distinct selector, in the order given.
//
// Only an unknown target or source language, empty text or an empty selector
// list fail the call. Everything that goes wrong for a single provider
// (unknown provider, bad selector, missing credentials, vendor errors,
// cancellation) is recorded in that provider's outcome.
func (t *Translator) Compare(ctx context.Context, text, target string, selectors []string, opts ...CallOption) (*ComparisonResult, error) {
	start := time.Now()
	o := applyCallOptions(opts)

	if strings.TrimSpace(text) == "" {
		return nil, &InvalidRequestError{Message: "text is empty"}
	}
	if len(selectors) == 0 {
		return nil, &InvalidRequestError{Message: "no providers selected"}
	}
	targetCode, err := NormalizeLanguage(target)
	if err != nil {
		return nil, err
	}
	source, err := normalizeSource(o.source)
	if err != nil {
		return nil, err
	}

	type slot struct {
		outcome  Outcome
		provider Provider
	}

	slots := make([]*slot, 0, len(selectors))
	seen := make(map[string]bool, len(selectors))
	for _, selector := range selectors {
		s := &slot{outcome: Outcome{Selector: selector, State: StateResolving}}

		var key string
		r, err := t.resolve(selector, targetCode)
		if err != nil {
			s.outcome.State = StateFailed
			s.outcome.FailedIn = StateResolving
			s.outcome.Err = err
			key = "?" + normalizeProviderName(selector)
		} else {
			s.outcome.Provider = r.id
			s.outcome.Model = r.model
			s.outcome.Diagnostics = r.diagnostics
			s.provider = r.provider
			key = s.outcome.ID()
		}

		t.logDiagnostics(selector, s.outcome.Diagnostics)
		if seen[key] {
			t.logger.Debug().Str("selector", selector).Msg("skipping duplicate provider selector")
			continue
		}
		seen[key] = true
		slots = append(slots, s)
	}

	var g errgroup.Group
	if t.maxConcurrency > 0 {
		g.SetLimit(t.maxConcurrency)
	}
	for _, s := range slots {
		if s.provider == nil {
			continue
		}
		s := s
		g.Go(func() error {
			t.invoke(ctx, &s.outcome, s.provider, TranslateRequest{
				Text:   text,
				Target: targetCode,
				Source: source,
				Model:  s.outcome.Model,
			})
			return nil
		})
	}
	// Tasks record failures in their outcome and always return nil.
	_ = g.Wait()

	result := &ComparisonResult{
		Text:           text,
		TargetLanguage: targetCode,
		SourceLanguage: source,
		Results:        make([]Outcome, len(slots)),
	}
	fastest := -1
	for i, s := range slots {
		result.Results[i] = s.outcome
		if s.outcome.Succeeded() && (fastest < 0 || s.outcome.ElapsedMs < result.Results[fastest].ElapsedMs) {
			fastest = i
		}
	}
	if fastest >= 0 {
		result.FastestProvider = result.Results[fastest].ID()
	}
	result.TotalMs = time.Since(start).Milliseconds()

	t.logger.Info().
		Str("target", string(targetCode)).
		Int("providers", len(result.Results)).
		Int("succeeded", len(result.Successful())).
		Str("fastest", result.FastestProvider).
		Int64("total_ms", result.TotalMs).
		Msg("comparison finished")

	return result, nil
}

// Future is the pending result of CompareAsync.
type Future struct {
	result *ComparisonResult
	err    error
	done   chan struct{}
}

// Await waits for the comparison to complete and returns its result.
func (f *Future) Await() (*ComparisonResult, error) {
	<-f.done
	return f.result, f.err
}

// Done is closed once the comparison has completed.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// CompareAsync starts Compare in the background. The result is identical to
// a synchronous Compare with the same arguments.
func (t *Translator) CompareAsync(ctx context.Context, text, target string, selectors []string, opts ...CallOption) *Future {
	f := &Future{done: make(chan struct{})}
	selectors = slices.Clone(selectors)

	go func() {
		defer close(f.done)
		f.result, f.err = t.Compare(ctx, text, target, selectors, opts...)
	}()

	return f
}

func sortOutcomesByElapsed(outcomes []Outcome) {
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].ElapsedMs < outcomes[j].ElapsedMs
	})
}
