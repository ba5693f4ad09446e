package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	Status(ctx context.Context) error
	Cached(ctx context.Context) error
	Live(ctx context.Context) error
	Sync(ctx context.Context) error
	Clear(ctx context.Context) error
	Watch(ctx context.Context, wait func()) error
}

const helpText = "Available commands: status, (c)ached, live, sync, clear, watch, exit"

// runREPL reads commands from scanner until EOF, "exit" or "quit". Handler
// errors are already reported to the user, so the loop ignores them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("uc (%s)> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "status":
			_ = a.Status(ctx)

		case "c", "cached":
			_ = a.Cached(ctx)

		case "live":
			_ = a.Live(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "clear":
			_ = a.Clear(ctx)

		case "watch":
			_ = a.Watch(ctx, func() { scanner.Scan() })

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
