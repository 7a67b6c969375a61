// ABOUTME: CLI entrypoint that diagnoses one browser test failure message from flags, args, or stdin.
// ABOUTME: Wires config, .env loading, optional headless Chrome capture, and the analyzer handle.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/jancsp3/GHCPCLI-Shekhar/browser"
	"github.com/jancsp3/GHCPCLI-Shekhar/config"
	"github.com/jancsp3/GHCPCLI-Shekhar/diagnose"
	"github.com/jancsp3/GHCPCLI-Shekhar/llm"
)

var version = "dev"

const (
	defaultConfigFile = "faildiag.toml"
	browserTimeout    = 30 * time.Second
)

// Exit codes.
const (
	exitOK     = 0
	exitConfig = 1
	exitUsage  = 2
)

var errNoMessage = errors.New("no error message given (use -message, an argument, or stdin)")

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ", ") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// options holds all CLI configuration parsed from flags and positional arguments.
type options struct {
	message       string
	pageURL       string
	openURL       string
	chromePath    string
	stackFile     string
	contextFile   string
	configFile    string
	networkErrors stringList
	timeout       time.Duration
	model         string
	baseURL       string
	noEscalate    bool
	color         string
	verbose       bool
	showVersion   bool
	args          []string
}

// env is the process surface run depends on, replaceable in tests.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

func main() {
	loadDotEnvAuto()

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(exitOK)
		}
		os.Exit(exitUsage)
	}

	if opts.showVersion {
		fmt.Printf("faildiag %s\n", version)
		os.Exit(exitOK)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, opts, env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, getenv: os.Getenv})
	stop()
	os.Exit(code)
}

// parseFlags parses command-line flags and returns the populated options.
func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options

	fs := flag.NewFlagSet("faildiag", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.message, "message", "", "Failure message to diagnose")
	fs.StringVar(&o.pageURL, "url", "", "Page URL at the time of failure")
	fs.StringVar(&o.openURL, "open", "", "Open this URL in headless Chrome to capture page context")
	fs.StringVar(&o.chromePath, "chrome", "", "Chrome binary for -open")
	fs.StringVar(&o.stackFile, "stack-file", "", "File holding the stack trace")
	fs.StringVar(&o.contextFile, "context", "", "YAML context override file")
	fs.StringVar(&o.configFile, "config", "", "TOML settings file")
	fs.Var(&o.networkErrors, "network-error", "Failed request observed during the test (repeatable)")
	fs.DurationVar(&o.timeout, "timeout", 0, "Deadline for the AI analysis")
	fs.StringVar(&o.model, "model", "", "Model for the AI analysis")
	fs.StringVar(&o.baseURL, "base-url", "", "Custom OpenAI-compatible API base URL")
	fs.BoolVar(&o.noEscalate, "no-escalate", false, "Print the quick summary only")
	fs.StringVar(&o.color, "color", "", "Color mode: auto, always, never")
	fs.BoolVar(&o.verbose, "verbose", false, "Log pipeline decisions to stderr")
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		printHelp(stderr, version)
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.args = fs.Args()

	if o.color != "" && !config.ValidColor(o.color) {
		fmt.Fprintf(stderr, "error: invalid -color %q (want auto, always, never)\n", o.color)
		return o, fmt.Errorf("invalid color mode %q", o.color)
	}
	if o.timeout < 0 {
		fmt.Fprintf(stderr, "error: -timeout must be positive, got %s\n", o.timeout)
		return o, fmt.Errorf("negative timeout %s", o.timeout)
	}
	return o, nil
}

// run diagnoses one failure and returns the process exit code.
func run(ctx context.Context, o options, e env) int {
	logger := setupLogging(o.verbose, e.stderr)

	cfg, err := loadConfig(o, e.getenv)
	if err != nil {
		fmt.Fprintf(e.stderr, "error: %v\n", err)
		return exitConfig
	}

	message, err := resolveMessage(o, e.stdin)
	if err != nil {
		fmt.Fprintf(e.stderr, "error: %v\n", err)
		return exitUsage
	}

	ov, err := buildOverride(o)
	if err != nil {
		fmt.Fprintf(e.stderr, "error: %v\n", err)
		return exitConfig
	}

	var page diagnose.Page
	if o.openURL != "" {
		bctx, cancel := context.WithTimeout(ctx, browserTimeout)
		defer cancel()
		if p, content, err := capturePage(bctx, o, logger); err != nil {
			fmt.Fprintf(e.stderr, "warning: could not capture %s: %v\n", o.openURL, err)
		} else {
			page = p
			if ov.PageContent == "" {
				ov.PageContent = content
			}
		}
	}

	out := newOutputWriter(cfg.Output.Color, e.stdout)
	if sw, ok := out.(*styledWriter); ok {
		defer sw.Flush()
	}

	d := diagnose.New(diagnose.Options{
		Page:    page,
		Handle:  newHandle(ctx, cfg, e.getenv, logger),
		Out:     out,
		Logger:  logger,
		Timeout: cfg.Escalation.Timeout.Duration,
		Getenv:  e.getenv,
	})
	d.AnalyzeError(ctx, errors.New(message), ov)
	return exitOK
}

// setupLogging routes the standard logger to stderr under -verbose and
// silences it otherwise. Returns the logger for the diagnostic pipeline, nil
// when quiet.
func setupLogging(verbose bool, stderr io.Writer) *log.Logger {
	if !verbose {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return log.New(stderr, "", log.LstdFlags|log.Lmicroseconds)
}

// loadConfig layers defaults, the settings file, the environment, and flags.
func loadConfig(o options, getenv func(string) string) (*config.Config, error) {
	path := o.configFile
	if path == "" {
		path = defaultConfigFile
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(getenv)

	if o.timeout > 0 {
		cfg.Escalation.Timeout.Duration = o.timeout
	}
	if o.model != "" {
		cfg.Escalation.Model = o.model
	}
	if o.baseURL != "" {
		cfg.Escalation.BaseURL = o.baseURL
	}
	if o.noEscalate {
		cfg.Escalation.Enabled = false
	}
	if o.color != "" {
		cfg.Output.Color = o.color
	}
	return cfg, nil
}

// resolveMessage takes the message from -message, then positional args, then
// stdin when it is not a terminal.
func resolveMessage(o options, stdin io.Reader) (string, error) {
	if msg := strings.TrimSpace(o.message); msg != "" {
		return msg, nil
	}
	if msg := strings.TrimSpace(strings.Join(o.args, " ")); msg != "" {
		return msg, nil
	}
	if stdin == nil {
		return "", errNoMessage
	}
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", errNoMessage
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return "", errNoMessage
	}
	return msg, nil
}

// buildOverride merges the -context file with the individual context flags.
// Flags win over the file.
func buildOverride(o options) (*diagnose.Override, error) {
	ov := &diagnose.Override{}
	if o.contextFile != "" {
		loaded, err := diagnose.LoadOverride(o.contextFile)
		if err != nil {
			return nil, err
		}
		ov = loaded
	}
	if o.pageURL != "" {
		ov.PageURL = o.pageURL
	}
	if o.stackFile != "" {
		data, err := os.ReadFile(o.stackFile)
		if err != nil {
			return nil, fmt.Errorf("read stack file: %w", err)
		}
		ov.ErrorStack = strings.TrimRight(string(data), "\n")
	}
	if len(o.networkErrors) > 0 {
		ov.NetworkErrors = append(ov.NetworkErrors, o.networkErrors...)
	}
	return ov, nil
}

// capturePage opens o.openURL in headless Chrome and returns the tracked page
// with the document's HTML.
func capturePage(ctx context.Context, o options, logger *log.Logger) (diagnose.Page, string, error) {
	var sessionOpts []browser.SessionOption
	if o.chromePath != "" {
		sessionOpts = append(sessionOpts, browser.WithExecPath(o.chromePath))
	}
	if logger != nil {
		sessionOpts = append(sessionOpts, browser.WithLogger(logger))
	}

	s, err := browser.Open(ctx, o.openURL, sessionOpts...)
	if err != nil {
		return nil, "", err
	}
	defer s.Close()

	content, err := s.Content()
	if err != nil {
		// The URL is still useful without the DOM.
		log.Printf("component=faildiag action=capture status=no_content err=%v", err)
		return s.Page, "", nil
	}
	return s.Page, content, nil
}

// newHandle probes for an analyzer client once. Credentials come only from
// getenv, the same source the dispatcher's gate reads.
func newHandle(ctx context.Context, cfg *config.Config, getenv func(string) string, logger *log.Logger) *diagnose.Handle {
	h := diagnose.NewHandle(logger)
	if !cfg.Escalation.Enabled {
		h.Init(ctx)
		return h
	}

	var mw []llm.Middleware
	if logger != nil {
		mw = append(mw, llm.LoggingMiddleware(logger))
	}

	h.Init(ctx,
		func(context.Context) (any, error) {
			client, err := llm.FromEnv(llm.EnvOptions{
				Model:      cfg.Escalation.Model,
				BaseURL:    cfg.Escalation.BaseURL,
				Getenv:     getenv,
				Middleware: mw,
			})
			if err != nil {
				return nil, err
			}
			return diagnose.NewClientAnalyzer(client, ""), nil
		},
	)
	return h
}
