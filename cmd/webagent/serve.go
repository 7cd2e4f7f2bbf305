package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"

	"github.com/tailored-agentic-units/webagent/kernel"
	"github.com/tailored-agentic-units/webagent/server"
)

func serveCommand(ctx context.Context, args []string, stderr io.Writer) error {
	var opts options
	fs := newFlagSet("serve", stderr)
	opts.register(fs)
	addr := fs.String("addr", ":8080", "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	k, logger, err := opts.kernel(stderr, slog.LevelInfo)
	if err != nil {
		return err
	}

	if opts.configFile != "" && k.Notifier() != nil {
		reloads := watchConfig(ctx, logger, opts.configFile)
		go reloadNotifier(ctx, logger, &opts, k, reloads)
	}

	ancli.Okf("serving on %s (Connect %s, WebSocket %s)\n", *addr, server.ServiceName, server.ChatPath)
	return server.New(k, server.WithLogger(logger)).ListenAndServe(ctx, *addr)
}

// reloadNotifier re-reads the config file on every change and applies the
// notifier credentials. Other settings need a restart.
func reloadNotifier(ctx context.Context, logger *slog.Logger, opts *options, k *kernel.Kernel, reloads <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-reloads:
			if !ok {
				return
			}
			cfg, err := opts.config()
			if err != nil {
				logger.Warn("config reload failed", "file", opts.configFile, "error", err)
				continue
			}
			k.Notifier().Update(cfg.Notify)
			logger.Info("notifier configuration reloaded", "backend", cfg.Notify.Backend, "configured", cfg.Notify.Configured())
		}
	}
}

func remoteCommand(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("remote", stderr)
	url := fs.String("url", "http://localhost:8080", "Server base URL")
	sessionID := fs.String("session", defaultSession, "Session id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client := server.NewClient(http.DefaultClient, *url)
	return repl(ctx, stdin, stdout, nil, func(ctx context.Context, text string) (string, error) {
		reply, err := client.RunTurn(ctx, *sessionID, text)
		if err != nil {
			return "", err
		}
		return reply.Text, nil
	})
}
