// Command deka translates text with one provider or compares several side
// by side.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/deka"
	"github.com/ZaguanLabs/deka/cache"
	"github.com/ZaguanLabs/deka/config"
	"github.com/ZaguanLabs/deka/internal/logging"
	"github.com/ZaguanLabs/deka/provider"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := newApp(stdin, stdout, stderr)
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// app carries the state shared by all commands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	jsonOut    bool
	envFile    string
	configFile string
	timeout    time.Duration
	logLevel   string

	// newRegistry builds the provider registry before configuration.
	newRegistry func() (*deka.Registry, error)

	cfg     *config.Config
	logger  zerolog.Logger
	closers []func() error
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: zerolog.Nop(),
		newRegistry: func() (*deka.Registry, error) {
			reg := deka.NewRegistry()
			return reg, provider.Register(reg)
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "deka",
		Short: "Compare machine translation providers",
		Long: `deka sends the same text to several translation providers and reports
each result with its latency.

Classical APIs (google, deepl, ghananlp) and language models (openai,
anthropic, gemini, openrouter) are addressed by id or alias, optionally with a
model: "openai/gpt-4o", "claude", "deepl".

Credentials come from the environment (OPENAI_API_KEY, DEEPL_API_KEY, ...),
a .env file or a YAML file passed with --config.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	flags := root.PersistentFlags()
	flags.BoolVar(&a.jsonOut, "json", false, "Output results as JSON")
	flags.StringVar(&a.envFile, "env", ".env", "Path to a .env file")
	flags.StringVar(&a.configFile, "config", "", "Path to a YAML provider configuration file")
	flags.DurationVar(&a.timeout, "timeout", time.Minute, "Overall deadline for provider calls (0 disables)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (default: DEKA_LOG_LEVEL or warn)")

	root.AddCommand(
		translateCmd(a),
		compareCmd(a),
		providersCmd(a),
		languagesCmd(a),
		normalizeCmd(a),
		versionCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	// A missing default .env is fine; an explicit --env must load.
	if _, err := config.LoadEnvFile(a.envFile); err != nil && cmd.Flags().Changed("env") {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.configFile != "" {
		f, err := config.LoadFile(a.configFile)
		if err != nil {
			return err
		}
		cfg.Merge(f)
	}
	a.cfg = cfg

	level := a.logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	logger, err := logging.NewWithWriter(a.stderr, cfg.Environment, level)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// translator builds a configured Translator. The Redis cache is attached when
// DEKA_REDIS_URL is set.
func (a *app) translator(ctx context.Context) (*deka.Translator, error) {
	reg, err := a.newRegistry()
	if err != nil {
		return nil, err
	}
	if err := reg.Configure(a.cfg.ProviderSettings()); err != nil {
		return nil, err
	}

	opts := []deka.TranslatorOption{deka.WithLogger(a.logger)}
	if a.cfg.MaxConcurrency > 0 {
		opts = append(opts, deka.WithMaxConcurrency(a.cfg.MaxConcurrency))
	}
	if a.cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:       a.cfg.RedisURL,
			TTL:       a.cfg.CacheTTL,
			KeyPrefix: a.cfg.CachePrefix,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rc.Close)
		opts = append(opts, deka.WithCache(rc.WithLogger(a.logger)))
	}

	return deka.NewTranslator(reg, opts...), nil
}

// callContext applies --timeout to ctx.
func (a *app) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

// inputText joins args, or reads stdin when there are none.
func (a *app) inputText(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	text := strings.TrimRight(string(data), "\r\n")
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no text given (pass it as arguments or on stdin)")
	}
	return text, nil
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
