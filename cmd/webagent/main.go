// Command webagent runs a tool-augmented browsing agent.
//
// Subcommands:
//
//	chat    interactive conversation on one session
//	ask     one-shot question
//	serve   Connect RPC and WebSocket server
//	remote  interactive conversation against a running server
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"

	_ "github.com/tailored-agentic-units/webagent/agent/providers/autoload"
)

const usage = `webagent - web browsing agent with tools

Usage: webagent <command> [flags] [text]

Commands:
  chat             Chat on one session. Type 'quit', 'exit' or 'q' to leave.
  ask <text>       Ask one question and print the answer.
  serve            Serve RunTurn/History over Connect and chat over /ws.
  remote           Chat with a running server.
  help             Show this message.

Common flags:
  -config string          Path to JSON config file.
  -provider string        Reasoning provider (openai, gemini, ollama, mock).
  -model string           Model name.
  -session string         Session id. (default "local_session")
  -max-round-trips int    Round-trip cap per turn.
  -system-prompt string   System prompt sent ahead of the history.
  -verbose                Debug logging to stderr.

Environment:
  OPENAI_API_KEY, GEMINI_API_KEY, OLLAMA_HOST
  PUSHOVER_TOKEN, PUSHOVER_USER, TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 1
	}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "chat", "c":
		err = chatCommand(ctx, rest, stdin, stdout, stderr)
	case "ask", "q":
		err = askCommand(ctx, rest, stdout, stderr)
	case "serve":
		err = serveCommand(ctx, rest, stderr)
	case "remote":
		err = remoteCommand(ctx, rest, stdin, stdout, stderr)
	case "help", "h", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\n%s", cmd, usage)
		return 1
	}

	if err != nil {
		ancli.PrintErr(fmt.Sprintf("%v\n", err))
		return 1
	}
	return 0
}
