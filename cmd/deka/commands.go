package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/deka"
)

func translateCmd(a *app) *cobra.Command {
	var to, from, providerName string

	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text with a single provider",
		Long: `Translate text with a single provider. The text is read from stdin when
no arguments are given.

Examples:
  deka translate --to es "Good morning"
  deka translate --to twi --provider khaya "How are you?"
  echo "Hello" | deka translate --to ja --provider openai/gpt-4o`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.inputText(args)
			if err != nil {
				return err
			}
			tr, err := a.translator(cmd.Context())
			if err != nil {
				return err
			}

			ctx, cancel := a.callContext(cmd.Context())
			defer cancel()

			opts := []deka.CallOption{deka.WithSource(from)}
			if providerName != "" {
				opts = append(opts, deka.WithProvider(providerName))
			}

			result, err := tr.Translate(ctx, text, to, opts...)
			if err != nil {
				return err
			}

			if a.jsonOut {
				return a.writeJSON(result)
			}
			for _, d := range result.Diagnostics {
				fmt.Fprintf(a.stderr, "%s: %s\n", d.Severity, d.Message)
			}
			fmt.Fprintln(a.stdout, result.Text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "", "Target language (code or name)")
	cmd.Flags().StringVarP(&from, "from", "f", "", "Source language (default: auto-detect)")
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "Provider selector, e.g. deepl or openai/gpt-4o")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// comparisonJSON is the --json layout of a comparison.
type comparisonJSON struct {
	Text            string        `json:"text"`
	TargetLanguage  string        `json:"target_language"`
	SourceLanguage  string        `json:"source_language"`
	FastestProvider string        `json:"fastest_provider"`
	TotalMs         int64         `json:"total_ms"`
	Results         []outcomeJSON `json:"results"`
}

type outcomeJSON struct {
	Selector    string                  `json:"selector"`
	ID          string                  `json:"id"`
	Success     bool                    `json:"success"`
	Result      *deka.TranslationResult `json:"result,omitempty"`
	Error       string                  `json:"error,omitempty"`
	ErrorKind   string                  `json:"error_kind,omitempty"`
	FailedIn    string                  `json:"failed_in,omitempty"`
	ElapsedMs   int64                   `json:"response_time_ms"`
	Diagnostics []deka.Diagnostic       `json:"diagnostics,omitempty"`
}

func toComparisonJSON(res *deka.ComparisonResult, outcomes []deka.Outcome) comparisonJSON {
	out := comparisonJSON{
		Text:            res.Text,
		TargetLanguage:  string(res.TargetLanguage),
		SourceLanguage:  string(res.SourceLanguage),
		FastestProvider: res.FastestProvider,
		TotalMs:         res.TotalMs,
		Results:         make([]outcomeJSON, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		oj := outcomeJSON{
			Selector:    o.Selector,
			ID:          o.ID(),
			Success:     o.Succeeded(),
			Result:      o.Result,
			ElapsedMs:   o.ElapsedMs,
			Diagnostics: o.Diagnostics,
		}
		if o.Err != nil {
			oj.Error = o.Err.Error()
			oj.FailedIn = string(o.FailedIn)
			var provErr *deka.ProviderError
			if errors.As(o.Err, &provErr) {
				oj.ErrorKind = string(provErr.Kind)
			}
		}
		out.Results = append(out.Results, oj)
	}
	return out
}

func compareCmd(a *app) *cobra.Command {
	var (
		to, from  string
		providers []string
		ranked    bool
	)

	cmd := &cobra.Command{
		Use:   "compare [text...]",
		Short: "Translate text with several providers and compare the results",
		Long: `Send the same text to several providers concurrently. Every provider gets
its own row; one failing provider never hides the others.

Examples:
  deka compare --to fr --providers google,deepl,openai/gpt-4o "Good morning"
  deka compare --to es --sort "See you tomorrow"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.inputText(args)
			if err != nil {
				return err
			}
			tr, err := a.translator(cmd.Context())
			if err != nil {
				return err
			}
			if len(providers) == 0 {
				providers = tr.Registry().ProviderNames()
			}

			ctx, cancel := a.callContext(cmd.Context())
			defer cancel()

			res, err := tr.Compare(ctx, text, to, providers, deka.WithSource(from))
			if err != nil {
				return err
			}

			outcomes := res.Results
			if ranked {
				outcomes = append(res.Ranked(), res.Failed()...)
			}

			if a.jsonOut {
				return a.writeJSON(toComparisonJSON(res, outcomes))
			}

			w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tTIME\tSTATUS\tTRANSLATION")
			for _, o := range outcomes {
				if o.Succeeded() {
					fmt.Fprintf(w, "%s\t%dms\tok\t%s\n", o.ID(), o.ElapsedMs, oneLine(o.Result.Text))
					continue
				}
				fmt.Fprintf(w, "%s\t-\tfailed\t%s\n", o.ID(), oneLine(o.Err.Error()))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			for _, o := range res.Results {
				for _, d := range o.Diagnostics {
					fmt.Fprintf(a.stderr, "%s: %s: %s\n", o.ID(), d.Severity, d.Message)
				}
			}

			if res.FastestProvider != "" {
				fmt.Fprintf(a.stdout, "\nFastest: %s\n", res.FastestProvider)
			} else {
				fmt.Fprintln(a.stdout, "\nNo provider succeeded.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "", "Target language (code or name)")
	cmd.Flags().StringVarP(&from, "from", "f", "", "Source language (default: auto-detect)")
	cmd.Flags().StringSliceVarP(&providers, "providers", "p", nil, "Provider selectors (default: every registered provider)")
	cmd.Flags().BoolVar(&ranked, "sort", false, "Order successful results by response time")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) > 80 {
		s = string([]rune(s)[:77]) + "..."
	}
	return s
}

func providersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.newRegistry()
			if err != nil {
				return err
			}
			descs := reg.ListProviders()

			if a.jsonOut {
				return a.writeJSON(descs)
			}

			w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tDEFAULT MODEL\tALIASES\tDESCRIPTION")
			for _, d := range descs {
				model := d.DefaultModel
				if model == "" {
					model = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Category, model, strings.Join(d.Aliases, ","), d.Description)
			}
			return w.Flush()
		},
	}
}

type languageJSON struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Direction string `json:"direction"`
}

func languagesCmd(a *app) *cobra.Command {
	var providerName string

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List known languages, or those a provider supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			codes := deka.ListLanguages()
			if providerName != "" {
				tr, err := a.translator(cmd.Context())
				if err != nil {
					return err
				}
				supported, err := tr.Registry().ProviderLanguages(providerName)
				if err != nil {
					return err
				}
				if supported == nil {
					fmt.Fprintf(a.stderr, "%s does not restrict target languages\n", providerName)
				} else {
					codes = supported
				}
			}

			langs := make([]languageJSON, 0, len(codes))
			for _, code := range codes {
				langs = append(langs, languageJSON{
					Code:      string(code),
					Name:      deka.LanguageName(code),
					Direction: deka.GetDirection(code),
				})
			}

			if a.jsonOut {
				return a.writeJSON(langs)
			}
			w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			for _, l := range langs {
				fmt.Fprintf(w, "%s\t%s\n", l.Code, l.Name)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "Only list languages this provider supports")
	return cmd
}

func normalizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <language>...",
		Short: "Resolve language names or tags to canonical codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			type entry struct {
				Input string `json:"input"`
				Code  string `json:"code,omitempty"`
				Name  string `json:"name,omitempty"`
				Error string `json:"error,omitempty"`
			}

			entries := make([]entry, 0, len(args))
			failed := 0
			for _, arg := range args {
				code, err := deka.NormalizeLanguage(arg)
				if err != nil {
					failed++
					entries = append(entries, entry{Input: arg, Error: err.Error()})
					continue
				}
				entries = append(entries, entry{Input: arg, Code: string(code), Name: deka.LanguageName(code)})
			}

			if a.jsonOut {
				if err := a.writeJSON(entries); err != nil {
					return err
				}
			} else {
				for _, e := range entries {
					if e.Error != "" {
						fmt.Fprintf(a.stderr, "%s: %s\n", e.Input, e.Error)
						continue
					}
					fmt.Fprintf(a.stdout, "%s\t%s\t%s\n", e.Input, e.Code, e.Name)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d languages not recognized", failed, len(args))
			}
			return nil
		},
	}
}

func versionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.jsonOut {
				return a.writeJSON(map[string]string{
					"name":    deka.Name,
					"version": deka.Version,
					"commit":  deka.GitCommit,
					"built":   deka.BuildDate,
				})
			}
			fmt.Fprintf(a.stdout, "%s %s\n", deka.Name, deka.Version)
			if deka.GitCommit != "unknown" && deka.GitCommit != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", deka.GitCommit)
			}
			if deka.BuildDate != "unknown" && deka.BuildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", deka.BuildDate)
			}
			return nil
		},
	}
}
