package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/farmclub/internal/client/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// readyTimeout bounds how long Root waits for the session to bootstrap
// before showing the prompt anyway.
var readyTimeout = 15 * time.Second

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Open(ctx context.Context, path string) error
	UploadURL(ctx context.Context, args []string) error
	UploadImage(ctx context.Context, args []string) error
}

// runREPL starts a simple read–eval–print loop for the farmclub CLI.
//
// Commands:
//
//	help                          show available commands
//	register                      create an account
//	login                         sign in
//	logout                        sign out
//	whoami                        show the current session
//	open <path>                   open a page, e.g. /dashboard
//	upload-url <name> <type>      get a profile image upload URL (remote)
//	upload-image <path>           upload a local profile image (remote)
//	exit | quit                   leave the program
//
// Errors returned by command handlers are ignored here; handlers report
// them to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("farmclub %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, open <path>, upload-url <name> <type>, upload-image <path>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, whoami, open <path>, exit")
			}

		case "register", "signup":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <path>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "upload-url":
			_ = a.UploadURL(ctx, args)

		case "upload-image":
			_ = a.UploadImage(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func (a *App) getStatus() string {
	s := a.session.Snapshot()
	switch {
	case s.Identity != nil:
		return fmt.Sprintf("(%s)", s.Identity.Email)
	case s.State == session.StateBootstrapping:
		return "(starting)"
	}
	return ""
}

// Root waits for the session to bootstrap and runs the REPL on the app's
// input.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to Farm Club CLI (type 'help' for commands)")

	unsubscribe := a.session.Subscribe(a.watchSession)
	defer unsubscribe()

	readyCtx, cancel := context.WithTimeout(ctx, readyTimeout)
	if err := a.session.WaitReady(readyCtx); err != nil {
		a.logger.Warn(ctx, "session not ready yet", "error", err)
	}
	cancel()

	a.mu.Lock()
	a.lastState = a.session.Snapshot().State
	a.mu.Unlock()

	_ = a.WhoAmI(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}
