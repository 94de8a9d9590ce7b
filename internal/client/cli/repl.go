package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	UploadLogo(ctx context.Context, path string) error
	Listen(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a.
//
//	Not logged in:  register, login, listen, help, exit | quit
//	Logged in:      me, logo <file>, listen, logout, help, exit | quit
//
// Errors returned by handlers are ignored here; handlers report their own.
// The loop exits on scanner EOF or on exit/quit.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("jobhub %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, logo <file>, listen, logout, exit")
			} else {
				printlnFn("Available commands: register, login, listen, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "listen":
			_ = a.Listen(ctx)

		case "me", "logo":
			if !a.isLoggedIn() {
				printlnFn("Please login first")
				continue
			}
			if cmd == "me" {
				_ = a.Me(ctx)
				continue
			}
			if len(args) == 0 {
				printlnFn("Usage: logo <file>")
				continue
			}
			_ = a.UploadLogo(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
