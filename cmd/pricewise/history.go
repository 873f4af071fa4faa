package main

import (
	"context"
	"fmt"
	"os"

	"github.com/peterbourgon/ff/v4"
)

func (a *app) historyCommand() *ff.Command {
	fs := ff.NewFlagSet("history").SetParent(a.rootFlags)
	cmd := &ff.Command{
		Name:      "history",
		Usage:     "pricewise history SUBCOMMAND",
		ShortHelp: "Manage the local result history (no account required)",
		Flags:     fs,
		Exec: func(_ context.Context, _ []string) error {
			return ff.ErrHelp
		},
	}
	cmd.Subcommands = []*ff.Command{
		a.historyListCommand(),
		a.historySaveCommand(),
		a.historyRemoveCommand(),
		a.historyClearCommand(),
	}
	return cmd
}

func (a *app) historyListCommand() *ff.Command {
	fs := ff.NewFlagSet("list").SetParent(a.rootFlags)
	return &ff.Command{
		Name:      "list",
		Usage:     "pricewise history list",
		ShortHelp: "List locally saved results in save order",
		Flags:     fs,
		Exec: func(_ context.Context, _ []string) error {
			a.setup()
			store, err := a.histories()
			if err != nil {
				return err
			}
			entries, err := store.List()
			if err != nil {
				return err
			}
			printHistoryEntries(os.Stdout, entries)
			return nil
		},
	}
}

func (a *app) historySaveCommand() *ff.Command {
	fs := ff.NewFlagSet("save").SetParent(a.rootFlags)
	return &ff.Command{
		Name:      "save",
		Usage:     "pricewise history save",
		ShortHelp: "Save a snapshot of the current session result locally",
		Flags:     fs,
		Exec: func(_ context.Context, _ []string) error {
			a.setup()
			sessions, err := a.sessions()
			if err != nil {
				return err
			}
			result, err := sessions.Load()
			if err != nil {
				return err
			}
			if result == nil {
				return fmt.Errorf("no current result to save")
			}
			store, err := a.histories()
			if err != nil {
				return err
			}
			entry, err := store.Append(result)
			if err != nil {
				return err
			}
			fmt.Printf("saved %s\n", entry.ID)
			return nil
		},
	}
}

func (a *app) historyRemoveCommand() *ff.Command {
	fs := ff.NewFlagSet("rm").SetParent(a.rootFlags)
	return &ff.Command{
		Name:      "rm",
		Usage:     "pricewise history rm ID",
		ShortHelp: "Delete one locally saved result",
		Flags:     fs,
		Exec: func(_ context.Context, args []string) error {
			a.setup()
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one id")
			}
			store, err := a.histories()
			if err != nil {
				return err
			}
			if err := store.Remove(args[0]); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", args[0])
			return nil
		},
	}
}

func (a *app) historyClearCommand() *ff.Command {
	fs := ff.NewFlagSet("clear").SetParent(a.rootFlags)
	return &ff.Command{
		Name:      "clear",
		Usage:     "pricewise history clear",
		ShortHelp: "Delete all locally saved results",
		Flags:     fs,
		Exec: func(_ context.Context, _ []string) error {
			a.setup()
			store, err := a.histories()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Println("local history cleared")
			return nil
		},
	}
}
