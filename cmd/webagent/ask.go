package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const maxResultPreview = 200

func askCommand(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options
	fs := newFlagSet("ask", stderr)
	opts.register(fs)
	trace := fs.Bool("trace", false, "Print tool calls and round trips after the answer")
	if err := fs.Parse(args); err != nil {
		return err
	}

	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		return errors.New("ask requires text")
	}

	k, _, err := opts.kernel(stderr, slog.LevelWarn)
	if err != nil {
		return err
	}

	result, err := k.Run(ctx, opts.sessionID, text)
	if err != nil {
		return fmt.Errorf("turn failed: %w", err)
	}

	fmt.Fprintln(stdout, result.Response)

	if *trace {
		if len(result.ToolCalls) > 0 {
			fmt.Fprintln(stdout, "\nTool Calls:")
			for i, tc := range result.ToolCalls {
				fmt.Fprintf(stdout, "  [%d] %s(%s)\n", i+1, tc.Name, tc.Arguments)
				switch {
				case tc.IsError:
					fmt.Fprintf(stdout, "    error: %s\n", tc.Result)
				case len(tc.Result) > maxResultPreview:
					fmt.Fprintf(stdout, "    -> %s...\n", tc.Result[:maxResultPreview])
				default:
					fmt.Fprintf(stdout, "    -> %s\n", tc.Result)
				}
			}
		}
		fmt.Fprintf(stdout, "\nRound trips: %d\n", result.RoundTrips)
	}
	return nil
}
