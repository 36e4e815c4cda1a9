package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/textify/internal/client/client"
)

// execIface defines the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, id string) error
	New(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Profile(ctx context.Context) error
	Rename(ctx context.Context) error
	Settings(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, help, exit"
	helpLoggedIn  = "Available commands: me, (l)ist, show <id>, new, edit <id>, delete <id>, profile, rename, settings, deleteaccount, logout, help, exit"
)

// runREPL reads one command per line from reader and dispatches it to a
// until EOF or "exit"/"quit". Command errors are printed and the loop goes
// on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		printf(out, "textify %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printf(out, "%s\n", helpLoggedIn)
			} else {
				printf(out, "%s\n", helpLoggedOut)
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "me":
			cmdErr = a.Me(ctx)
		case "l", "list":
			cmdErr = a.List(ctx)
		case "new":
			cmdErr = a.New(ctx)
		case "show", "edit", "delete":
			if len(args) != 1 {
				printf(out, "Usage: %s <id>\n", cmd)
				continue
			}
			switch cmd {
			case "show":
				cmdErr = a.Show(ctx, args[0])
			case "edit":
				cmdErr = a.Edit(ctx, args[0])
			case "delete":
				cmdErr = a.Delete(ctx, args[0])
			}
		case "profile":
			cmdErr = a.Profile(ctx)
		case "rename":
			cmdErr = a.Rename(ctx)
		case "settings":
			cmdErr = a.Settings(ctx)
		case "deleteaccount":
			cmdErr = a.DeleteAccount(ctx)
		case "exit", "quit":
			printf(out, "Bye!\n")
			return
		default:
			printf(out, "Unknown command: %s\n", cmd)
		}

		if cmdErr != nil {
			printf(out, "Error: %s\n", describe(cmdErr))
		}

		if err != nil {
			return
		}
	}
}

// describe turns an error into the line shown to the user.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Detail
	case errors.Is(err, client.ErrNotLoggedIn):
		return "please log in first"
	case errors.Is(err, client.ErrUnavailable):
		return "server is unavailable"
	default:
		return err.Error()
	}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
