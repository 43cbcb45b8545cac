package deka

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_PartialFailure(t *testing.T) {
	p1 := &stubProvider{id: "p1"}
	p2 := &stubProvider{id: "p2", err: &ProviderError{Kind: KindAuthentication, Provider: "p2", Message: "invalid key", StatusCode: 401}}
	tr := newStubTranslator(t, []*stubProvider{p1, p2})

	result, err := tr.Compare(context.Background(), "Hello world", "french", []string{"p1", "p2"})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	ok := result.Results[0]
	assert.Equal(t, "p1", ok.Selector)
	assert.Equal(t, StateSucceeded, ok.State)
	require.NotNil(t, ok.Result)
	assert.True(t, ok.Result.Success)
	assert.Equal(t, "[p1:fr] Hello world", ok.Result.Text)
	assert.Equal(t, LanguageCode("fr"), ok.Result.TargetLanguage)
	assert.Equal(t, AutoDetect, ok.Result.SourceLanguage)

	failed := result.Results[1]
	assert.Equal(t, StateFailed, failed.State)
	assert.Equal(t, StateInvoking, failed.FailedIn)
	assert.Nil(t, failed.Result)
	var provErr *ProviderError
	require.ErrorAs(t, failed.Err, &provErr)
	assert.Equal(t, KindAuthentication, provErr.Kind)

	assert.Equal(t, "p1", result.FastestProvider)
	assert.Len(t, result.Successful(), 1)
	assert.Len(t, result.Failed(), 1)
	assert.Equal(t, LanguageCode("fr"), result.TargetLanguage)
}

func TestCompare_UnknownProviderRecordedInSlot(t *testing.T) {
	p1 := &stubProvider{id: "p1"}
	tr := newStubTranslator(t, []*stubProvider{p1})

	result, err := tr.Compare(context.Background(), "Hello", "es", []string{"p1", "bogus"})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	assert.True(t, result.Results[0].Succeeded())

	bogus := result.Results[1]
	assert.Equal(t, "bogus", bogus.Selector)
	assert.Equal(t, StateFailed, bogus.State)
	assert.Equal(t, StateResolving, bogus.FailedIn)
	var unknown *UnknownProviderError
	require.ErrorAs(t, bogus.Err, &unknown)
	assert.Equal(t, "bogus", unknown.Token)
	assert.Contains(t, unknown.Providers, "p1")
}

func TestCompare_InvalidSelectorRecordedInSlot(t *testing.T) {
	tr := newStubTranslator(t, []*stubProvider{{id: "p1"}})

	result, err := tr.Compare(context.Background(), "Hello", "es", []string{"p1/", "p1"})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	var selErr *InvalidSelectorError
	require.ErrorAs(t, result.Results[0].Err, &selErr)
	assert.Equal(t, StateResolving, result.Results[0].FailedIn)
	assert.True(t, result.Results[1].Succeeded())
}

func TestCompare_NotConfiguredRecordedInSlot(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(stubRegistration(&stubProvider{id: "p1"})))
	require.NoError(t, reg.Register(Registration{
		Descriptor: ProviderDescriptor{ID: "locked"},
		Factory: func(cfg ProviderConfig) (Provider, error) {
			return nil, NotConfigured("locked", "locked_api_key")
		},
	}))
	tr := NewTranslator(reg)

	result, err := tr.Compare(context.Background(), "Hello", "es", []string{"locked", "p1"})
	require.NoError(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, result.Results[0].Err, &provErr)
	assert.Equal(t, KindNotConfigured, provErr.Kind)
	assert.Equal(t, StateResolving, result.Results[0].FailedIn)
	assert.Equal(t, "p1", result.FastestProvider)
}

func TestCompare_OrderFollowsInputNotSpeed(t *testing.T) {
	fast := &stubProvider{id: "fast", delay: 5 * time.Millisecond}
	slow := &stubProvider{id: "slow", delay: 150 * time.Millisecond}
	tr := newStubTranslator(t, []*stubProvider{fast, slow})

	result, err := tr.Compare(context.Background(), "Hello", "de", []string{"slow", "fast"})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	assert.Equal(t, "slow", result.Results[0].Provider)
	assert.Equal(t, "fast", result.Results[1].Provider)
	assert.Equal(t, "fast", result.FastestProvider)
	assert.GreaterOrEqual(t, result.Results[0].ElapsedMs, int64(150))
	assert.Equal(t, result.Results[0].ElapsedMs, result.Results[0].Result.ElapsedMs)

	ranked := result.Ranked()
	require.Len(t, ranked, 2)
	assert.Equal(t, "fast", ranked[0].Provider)

	// Providers run concurrently, so the total is closer to the slowest
	// provider than to the sum.
	assert.Less(t, result.TotalMs, int64(300))
}

func TestCompare_FastestTieKeepsInputOrder(t *testing.T) {
	a := &stubProvider{id: "a"}
	b := &stubProvider{id: "b"}
	tr := newStubTranslator(t, []*stubProvider{a, b})

	result, err := tr.Compare(context.Background(), "Hello", "es", []string{"b", "a"})
	require.NoError(t, err)

	if result.Results[0].ElapsedMs == result.Results[1].ElapsedMs {
		assert.Equal(t, "b", result.FastestProvider)
	}
}

func TestCompare_NoSuccessLeavesFastestEmpty(t *testing.T) {
	tr := newStubTranslator(t, []*stubProvider{{id: "p1", err: &ProviderError{Kind: KindQuota, Message: "quota"}}})

	result, err := tr.Compare(context.Background(), "Hello", "es", []string{"p1", "nope"})
	require.NoError(t, err)
	assert.Empty(t, result.FastestProvider)
	assert.Empty(t, result.Successful())
	assert.Empty(t, result.Ranked())
}

func TestCompare_UnknownModelIsNotRejected(t *testing.T) {
	p := &stubProvider{id: "llm", defaultModel: "small", models: []string{"small", "large"}}
	tr := newStubTranslator(t, []*stubProvider{p})

	result, err := tr.Compare(context.Background(), "Hello", "es", []string{"llm/made-up-model"})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)

	o := result.Results[0]
	require.True(t, o.Succeeded())
	assert.Equal(t, "made-up-model", o.Model)
	assert.Equal(t, "made-up-model", p.lastReq.Load().Model)
	assert.Equal(t, "llm/made-up-model", o.ID())
	require.Len(t, o.Diagnostics, 1)
	assert.Equal(t, DiagUnknownModel, o.Diagnostics[0].Code)
	assert.Equal(t, SeverityWarning, o.Diagnostics[0].Severity)
	assert.Equal(t, o.Diagnostics, o.Result.Diagnostics)
}

func TestCompare_DefaultModelWhenSelectorHasNone(t *testing.T) {
	p := &stubProvider{id: "llm", defaultModel: "small", models: []string{"small", "large"}}
	tr := newStubTranslator(t, []*stubProvider{p})

	result, err := tr.Compare(context.Background(), "Hello", "es", []string{"llm", "llm/large"})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	assert.Equal(t, "small", result.Results[0].Model)
	assert.Equal(t, "large", result.Results[1].Model)
	assert.Empty(t, result.Results[0].Diagnostics)
	assert.Empty(t, result.Results[1].Diagnostics)
}

func TestCompare_ModelIgnoredForModelLessProvider(t *testing.T) {
	p := &stubProvider{id: "mt"}
	tr := newStubTranslator(t, []*stubProvider{p})

	result, err := tr.Compare(context.Background(), "Hello", "es", []string{"mt/whatever"})
	require.NoError(t, err)

	o := result.Results[0]
	require.True(t, o.Succeeded())
	assert.Empty(t, o.Model)
	assert.Empty(t, p.lastReq.Load().Model)
	require.Len(t, o.Diagnostics, 1)
	assert.Equal(t, DiagModelIgnored, o.Diagnostics[0].Code)
}

func TestCompare_UnsupportedLanguageWarns(t *testing.T) {
	p := &stubProvider{id: "narrow", languages: []LanguageCode{"en", "tw"}}
	tr := newStubTranslator(t, []*stubProvider{p})

	result, err := tr.Compare(context.Background(), "Hello", "japanese", []string{"narrow"})
	require.NoError(t, err)

	o := result.Results[0]
	require.True(t, o.Succeeded())
	require.Len(t, o.Diagnostics, 1)
	assert.Equal(t, DiagUnsupportedLanguage, o.Diagnostics[0].Code)

	result, err = tr.Compare(context.Background(), "Hello", "twi", []string{"narrow"})
	require.NoError(t, err)
	assert.Empty(t, result.Results[0].Diagnostics)
}

func TestCompare_RequestValidation(t *testing.T) {
	tr := newStubTranslator(t, []*stubProvider{{id: "p1"}})
	ctx := context.Background()

	_, err := tr.Compare(ctx, "Hello", "klingon", []string{"p1"})
	var langErr *UnknownLanguageError
	require.ErrorAs(t, err, &langErr)
	assert.Equal(t, "klingon", langErr.Selector)

	_, err = tr.Compare(ctx, "Hello", "es", []string{"p1"}, WithSource("klingon"))
	require.ErrorAs(t, err, &langErr)

	var reqErr *InvalidRequestError
	_, err = tr.Compare(ctx, "Hello", "es", nil)
	require.ErrorAs(t, err, &reqErr)

	_, err = tr.Compare(ctx, "   ", "es", []string{"p1"})
	require.ErrorAs(t, err, &reqErr)
}

func TestCompare_SourceLanguagePassedThrough(t *testing.T) {
	p := &stubProvider{id: "p1"}
	tr := newStubTranslator(t, []*stubProvider{p})

	result, err := tr.Compare(context.Background(), "Bonjour", "english", []string{"p1"}, WithSource("French"))
	require.NoError(t, err)

	assert.Equal(t, LanguageCode("fr"), result.SourceLanguage)
	assert.Equal(t, LanguageCode("fr"), p.lastReq.Load().Source)
	assert.Equal(t, LanguageCode("en"), p.lastReq.Load().Target)
}

func TestCompare_DuplicateSelectorsCollapse(t *testing.T) {
	p := &stubProvider{id: "p1", defaultModel: "m1", models: []string{"m1"}}
	reg := NewRegistry()
	require.NoError(t, reg.Register(stubRegistration(p, "alias1")))
	tr := NewTranslator(reg)

	result, err := tr.Compare(context.Background(), "Hello", "es",
		[]string{"p1", "P1", " p1 ", "alias1", "p1/m1", "bogus", "BOGUS"})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	assert.Equal(t, "p1", result.Results[0].Selector)
	assert.Equal(t, "bogus", result.Results[1].Selector)
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestCompare_DuplicateSelectorKeepsDiagnosticsInLog(t *testing.T) {
	var logs bytes.Buffer
	p := &stubProvider{id: "p1"}
	tr := newStubTranslator(t, []*stubProvider{p}, WithLogger(zerolog.New(&logs)))

	result, err := tr.Compare(context.Background(), "Hello", "es", []string{"p1", "p1/x"})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Empty(t, result.Results[0].Diagnostics)

	assert.Contains(t, logs.String(), `"selector":"p1/x"`)
	assert.Contains(t, logs.String(), DiagModelIgnored)
}

func TestCompare_PanicBecomesFailedSlot(t *testing.T) {
	good := &stubProvider{id: "good"}
	bad := &stubProvider{id: "bad", panicValue: "boom"}
	tr := newStubTranslator(t, []*stubProvider{good, bad})

	result, err := tr.Compare(context.Background(), "Hello", "es", []string{"bad", "good"})
	require.NoError(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, result.Results[0].Err, &provErr)
	assert.Equal(t, KindInternal, provErr.Kind)
	assert.Contains(t, provErr.Message, "boom")
	assert.True(t, result.Results[1].Succeeded())
}

func TestCompare_CancellationKeepsFinishedSlots(t *testing.T) {
	quick := &stubProvider{id: "quick"}
	stuck := &stubProvider{id: "stuck", delay: 2 * time.Second, ignoreCtx: true}
	polite := &stubProvider{id: "polite", delay: 2 * time.Second}
	tr := newStubTranslator(t, []*stubProvider{quick, stuck, polite})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := tr.Compare(ctx, "Hello", "es", []string{"quick", "stuck", "polite"})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	assert.True(t, result.Results[0].Succeeded())
	for _, o := range result.Results[1:] {
		var cancelErr *CancellationError
		require.ErrorAs(t, o.Err, &cancelErr, o.Selector)
		assert.True(t, errors.Is(o.Err, context.DeadlineExceeded))
		assert.Equal(t, StateInvoking, o.FailedIn)
	}
	assert.Equal(t, "quick", result.FastestProvider)
}

func TestCompare_AlreadyCancelled(t *testing.T) {
	p := &stubProvider{id: "p1"}
	tr := newStubTranslator(t, []*stubProvider{p})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := tr.Compare(ctx, "Hello", "es", []string{"p1"})
	require.NoError(t, err)

	var cancelErr *CancellationError
	require.ErrorAs(t, result.Results[0].Err, &cancelErr)
	assert.Equal(t, int32(0), p.calls.Load())
}

func TestCompare_MaxConcurrency(t *testing.T) {
	providers := []*stubProvider{
		{id: "a", delay: 10 * time.Millisecond},
		{id: "b", delay: 10 * time.Millisecond},
		{id: "c", delay: 10 * time.Millisecond},
	}
	tr := newStubTranslator(t, providers, WithMaxConcurrency(1))

	result, err := tr.Compare(context.Background(), "Hello", "es", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, result.Successful(), 3)
	// Serialized dispatch takes at least the sum of the delays.
	assert.GreaterOrEqual(t, result.TotalMs, int64(30))
}

func TestCompare_CachedSecondRun(t *testing.T) {
	p := &stubProvider{id: "p1"}
	c := newMemCache()
	tr := newStubTranslator(t, []*stubProvider{p}, WithCache(c))

	first, err := tr.Compare(context.Background(), "Hello", "es", []string{"p1"})
	require.NoError(t, err)
	second, err := tr.Compare(context.Background(), "Hello", "es", []string{"p1"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), p.calls.Load())
	assert.Equal(t, first.Results[0].Result.Text, second.Results[0].Result.Text)
	assert.Equal(t, true, second.Results[0].Result.Metadata["cached"])
}

func TestCompareAsync(t *testing.T) {
	p1 := &stubProvider{id: "p1", delay: 20 * time.Millisecond}
	p2 := &stubProvider{id: "p2", err: &ProviderError{Kind: KindTransport, Message: "down"}}
	tr := newStubTranslator(t, []*stubProvider{p1, p2})

	selectors := []string{"p1", "p2"}
	future := tr.CompareAsync(context.Background(), "Hello", "es", selectors)
	selectors[0] = "mutated"

	select {
	case <-future.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("CompareAsync did not complete")
	}

	result, err := future.Await()
	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "p1", result.Results[0].Selector)
	assert.True(t, result.Results[0].Succeeded())
	assert.False(t, result.Results[1].Succeeded())
	assert.Equal(t, "p1", result.FastestProvider)

	_, err = tr.CompareAsync(context.Background(), "Hello", "klingon", []string{"p1"}).Await()
	var langErr *UnknownLanguageError
	assert.ErrorAs(t, err, &langErr)
}

func TestComparisonResult_Outcome(t *testing.T) {
	result := &ComparisonResult{Results: []Outcome{
		{Selector: "gpt/gpt-4o", Provider: "openai", Model: "gpt-4o", State: StateSucceeded, Result: &TranslationResult{}},
		{Selector: "bogus", State: StateFailed},
	}}

	o, ok := result.Outcome("openai/gpt-4o")
	require.True(t, ok)
	assert.Equal(t, "gpt/gpt-4o", o.Selector)

	o, ok = result.Outcome("gpt/gpt-4o")
	require.True(t, ok)
	assert.Equal(t, "openai", o.Provider)

	_, ok = result.Outcome("bogus")
	assert.True(t, ok)

	_, ok = result.Outcome("missing")
	assert.False(t, ok)
}

func TestSortOutcomesByElapsed(t *testing.T) {
	outcomes := []Outcome{
		{Selector: "a", ElapsedMs: 30},
		{Selector: "b", ElapsedMs: 10},
		{Selector: "c", ElapsedMs: 30},
		{Selector: "d", ElapsedMs: 5},
	}
	sortOutcomesByElapsed(outcomes)

	var got []string
	for _, o := range outcomes {
		got = append(got, o.Selector)
	}
	assert.Equal(t, []string{"d", "b", "a", "c"}, got)
}
