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
	isUnlocked() bool
	touch()
	InitVault(ctx context.Context, name string) error
	OpenVault(ctx context.Context, name string) error
	CloseVault(ctx context.Context) error
	SaveVault(ctx context.Context) error
	ListEntries(ctx context.Context) error
	AddEntry(ctx context.Context) error
	ShowEntry(ctx context.Context, name string) error
	RemoveEntry(ctx context.Context, name string) error
	RenameEntry(ctx context.Context, oldName, newName string) error
	ModifyEntry(ctx context.Context, name string) error
	CopyEntry(ctx context.Context, name string) error
	Generate(ctx context.Context, lengthArg string) error
	ChangeMaster(ctx context.Context) error
	ListVaults(ctx context.Context) error
	DeleteVault(ctx context.Context, name string) error
	ShowToken(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the passlock CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Locked:
//	  - help                 — show available commands
//	  - init <name>          — create a new vault
//	  - open <name>          — unlock a vault
//	  - vaults               — list vault files
//	  - delete-vault <name>  — delete a vault (password required)
//	  - generate [length]    — print a random password
//	  - exit | quit          — leave the program
//
//	Unlocked (additionally):
//	  - list                 — list entries
//	  - add                  — add an entry (interactive)
//	  - show <name>          — show an entry
//	  - remove <name>        — remove an entry
//	  - rename <old> <new>   — rename an entry
//	  - modify <name>        — edit an entry (interactive)
//	  - copy <name>          — copy a password to the clipboard
//	  - save                 — persist without locking
//	  - changemaster         — change the master password
//	  - token                — show the extension pairing token
//	  - close | lock         — persist and lock the vault
//
// Any errors returned by command handlers are reported here and otherwise
// ignored. This keeps the REPL loop resilient and focused on I/O. The
// activity clock is stamped after each successfully completed command, so
// an idle prompt still times out.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("passlock %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		handled := true

		switch cmd {
		case "help":
			if a.isUnlocked() {
				printlnFn("Available commands: list, add, show, remove, rename, modify, copy, generate, save, changemaster, token, close, lock, exit")
			} else {
				printlnFn("Available commands: init, open, vaults, delete-vault, generate, exit")
			}

		case "init":
			if len(args) != 1 {
				printlnFn("Usage: init <name>")
				continue
			}
			err = a.InitVault(ctx, args[0])

		case "open":
			if len(args) != 1 {
				printlnFn("Usage: open <name>")
				continue
			}
			err = a.OpenVault(ctx, args[0])

		case "close", "lock":
			err = a.CloseVault(ctx)

		case "save":
			err = a.SaveVault(ctx)

		case "l", "list":
			err = a.ListEntries(ctx)

		case "add":
			err = a.AddEntry(ctx)

		case "show":
			if len(args) != 1 {
				printlnFn("Usage: show <name>")
				continue
			}
			err = a.ShowEntry(ctx, args[0])

		case "remove":
			if len(args) != 1 {
				printlnFn("Usage: remove <name>")
				continue
			}
			err = a.RemoveEntry(ctx, args[0])

		case "rename":
			if len(args) != 2 {
				printlnFn("Usage: rename <old> <new>")
				continue
			}
			err = a.RenameEntry(ctx, args[0], args[1])

		case "modify":
			if len(args) != 1 {
				printlnFn("Usage: modify <name>")
				continue
			}
			err = a.ModifyEntry(ctx, args[0])

		case "copy":
			if len(args) != 1 {
				printlnFn("Usage: copy <name>")
				continue
			}
			err = a.CopyEntry(ctx, args[0])

		case "generate":
			lengthArg := ""
			if len(args) > 0 {
				lengthArg = args[0]
			}
			err = a.Generate(ctx, lengthArg)

		case "changemaster":
			err = a.ChangeMaster(ctx)

		case "vaults":
			err = a.ListVaults(ctx)

		case "delete-vault":
			if len(args) != 1 {
				printlnFn("Usage: delete-vault <name>")
				continue
			}
			err = a.DeleteVault(ctx, args[0])

		case "token":
			err = a.ShowToken(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			handled = false
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
		if handled && err == nil {
			a.touch()
		}
	}
}
