package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

// turnFunc runs one turn and returns the agent's reply.
type turnFunc func(ctx context.Context, text string) (string, error)

func chatCommand(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	fs := newFlagSet("chat", stderr)
	opts.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	k, _, err := opts.kernel(stderr, slog.LevelWarn)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(k.Tools()))
	for _, t := range k.Tools() {
		names = append(names, t.Name)
	}

	return repl(ctx, stdin, stdout, names, func(ctx context.Context, text string) (string, error) {
		return k.RunTurn(ctx, opts.sessionID, text)
	})
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

// repl reads lines from in and runs a turn for each until a quit word, end
// of input or cancellation. Turn failures are printed and the loop goes on.
func repl(ctx context.Context, in io.Reader, out io.Writer, toolNames []string, turn turnFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(out, "Web Browsing Agent")
	fmt.Fprintln(out, strings.Repeat("=", 50))
	if len(toolNames) > 0 {
		fmt.Fprintln(out, "Available tools:")
		for _, name := range toolNames {
			fmt.Fprintf(out, "- %s\n", name)
		}
	}
	fmt.Fprintln(out, "\nType 'quit' to exit")
	fmt.Fprintln(out, strings.Repeat("-", 50))

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprintf(out, "\n%v: ", ancli.ColoredMessage(ancli.CYAN, "You"))

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\n\nGoodbye!")
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out, "\nGoodbye!")
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if isQuit(line) {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if line == "" {
			continue
		}

		fmt.Fprintln(out, "\nAgent is thinking...")
		reply, err := turn(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(out, "\n\nGoodbye!")
				return nil
			}
			fmt.Fprintf(out, "\nError: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "\nAgent: %s\n", reply)
	}
}
