package main

import (
	"context"
	"fmt"
	"os"

	"github.com/peterbourgon/ff/v4"
)

func (a *app) receiptsCommand() *ff.Command {
	fs := ff.NewFlagSet("receipts").SetParent(a.rootFlags)
	cmd := &ff.Command{
		Name:      "receipts",
		Usage:     "pricewise receipts SUBCOMMAND",
		ShortHelp: "Manage account-owned receipts on the backend",
		Flags:     fs,
		Exec: func(_ context.Context, _ []string) error {
			return ff.ErrHelp
		},
	}
	cmd.Subcommands = []*ff.Command{
		a.receiptsListCommand(),
		a.receiptsSaveCommand(),
		a.receiptsRemoveCommand(),
		a.receiptsClearCommand(),
	}
	return cmd
}

func (a *app) receiptsListCommand() *ff.Command {
	fs := ff.NewFlagSet("list").SetParent(a.rootFlags)
	return &ff.Command{
		Name:      "list",
		Usage:     "pricewise receipts list",
		ShortHelp: "List receipts saved to your account",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			a.setup()
			list, err := a.remoteReceipts().Refresh(ctx)
			if err != nil {
				return err
			}
			printReceipts(os.Stdout, list)
			return nil
		},
	}
}

func (a *app) receiptsSaveCommand() *ff.Command {
	fs := ff.NewFlagSet("save").SetParent(a.rootFlags)
	storeName := fs.StringLong("store", "", "Store name to record on the receipt")
	return &ff.Command{
		Name:      "save",
		Usage:     "pricewise receipts save [--store NAME]",
		ShortHelp: "Save the current session result to your account",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
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

			var date, store *string
			if result.PurchaseDate != "" {
				date = &result.PurchaseDate
			}
			if *storeName != "" {
				store = storeName
			}
			receipt, err := a.remoteReceipts().Create(ctx, date, store, result)
			if err != nil {
				return err
			}
			fmt.Printf("saved receipt %s\n", receipt.ID)
			return nil
		},
	}
}

func (a *app) receiptsRemoveCommand() *ff.Command {
	fs := ff.NewFlagSet("rm").SetParent(a.rootFlags)
	return &ff.Command{
		Name:      "rm",
		Usage:     "pricewise receipts rm ID",
		ShortHelp: "Delete one receipt from your account",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			a.setup()
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one id")
			}
			if err := a.remoteReceipts().Remove(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", args[0])
			return nil
		},
	}
}

func (a *app) receiptsClearCommand() *ff.Command {
	fs := ff.NewFlagSet("clear").SetParent(a.rootFlags)
	return &ff.Command{
		Name:      "clear",
		Usage:     "pricewise receipts clear",
		ShortHelp: "Delete all receipts from your account",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			a.setup()
			if err := a.remoteReceipts().Clear(ctx); err != nil {
				return err
			}
			fmt.Println("receipts cleared")
			return nil
		},
	}
}
