package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/tailored-agentic-units/webagent/kernel"
	"github.com/tailored-agentic-units/webagent/observability"
)

const defaultSession = "local_session"

// options holds the flags every subcommand accepts.
type options struct {
	configFile    string
	provider      string
	model         string
	sessionID     string
	systemPrompt  string
	maxRoundTrips int
	verbose       bool
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configFile, "config", "", "Path to JSON config file")
	fs.StringVar(&o.provider, "provider", "", "Reasoning provider (overrides config)")
	fs.StringVar(&o.model, "model", "", "Model name (overrides config)")
	fs.StringVar(&o.sessionID, "session", defaultSession, "Session id")
	fs.StringVar(&o.systemPrompt, "system-prompt", "", "System prompt (overrides config)")
	fs.IntVar(&o.maxRoundTrips, "max-round-trips", 0, "Round-trip cap per turn (overrides config)")
	fs.BoolVar(&o.verbose, "verbose", false, "Enable debug logging to stderr")
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// config loads the config file, if any, and applies flag overrides and
// notifier credentials from the environment.
func (o *options) config() (*kernel.Config, error) {
	cfg := kernel.DefaultConfig()
	if o.configFile != "" {
		loaded, err := kernel.LoadConfig(o.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	if o.provider != "" {
		cfg.Agent.Provider = o.provider
	}
	if o.model != "" {
		cfg.Agent.Model = o.model
	}
	if o.systemPrompt != "" {
		cfg.SystemPrompt = o.systemPrompt
	}
	if o.maxRoundTrips > 0 {
		cfg.MaxRoundTrips = o.maxRoundTrips
	}
	cfg.Notify = cfg.Notify.FromEnv()

	return &cfg, nil
}

// logger builds the stderr logger and binds the "slog" observer to it.
// Interactive commands stay quiet below warnings unless verbose.
func (o *options) logger(stderr io.Writer, level slog.Level) *slog.Logger {
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))
	return logger
}

func (o *options) kernel(stderr io.Writer, level slog.Level) (*kernel.Kernel, *slog.Logger, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, nil, err
	}
	logger := o.logger(stderr, level)

	k, err := kernel.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kernel: %w", err)
	}
	return k, logger, nil
}
