package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing REPL output.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to. *App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context, args []string) error
	Refresh(ctx context.Context, args []string) error
	Accounts(ctx context.Context) error
	Use(ctx context.Context, args []string) error
	Token(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
}

const helpText = `Available commands:
  login                     add an account (handle or email, server, password)
  logout  [handle|id]       forget an account and its tokens
  refresh [handle|id]       refresh the session now
  token   [handle|id]       show token validity, refreshing when close to expiry
  accounts                  list stored accounts
  use     <handle|id>       select the current account
  stats                     show request and storage counters
  exit | quit               leave the program`

// runREPL reads commands line by line from reader and dispatches them to a.
// Errors returned by handlers are reported and the loop continues. It
// returns on EOF, on "exit"/"quit", or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("sk%s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help", "?":
			printlnFn(helpText)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx, args)
		case "refresh":
			cmdErr = a.Refresh(ctx, args)
		case "token":
			cmdErr = a.Token(ctx, args)
		case "accounts", "ls":
			cmdErr = a.Accounts(ctx)
		case "use":
			cmdErr = a.Use(ctx, args)
		case "stats":
			cmdErr = a.Stats(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
