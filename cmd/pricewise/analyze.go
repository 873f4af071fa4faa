package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/peterbourgon/ff/v4"
)

func (a *app) analyzeCommand() *ff.Command {
	fs := ff.NewFlagSet("analyze").SetParent(a.rootFlags)
	return &ff.Command{
		Name:      "analyze",
		Usage:     "pricewise analyze IMAGE",
		ShortHelp: "Upload a receipt image and keep the result as the current session",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			a.setup()
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one image file")
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}

			slog.Debug("Analyzing receipt", "file", args[0], "size", len(data))
			result, err := a.apiClient().AnalyzeReceipt(ctx, filepath.Base(args[0]), data)
			if err != nil {
				return err
			}

			sessions, err := a.sessions()
			if err != nil {
				return err
			}
			if err := sessions.Save(result); err != nil {
				return err
			}

			printResult(os.Stdout, result)
			return nil
		},
	}
}

func (a *app) showCommand() *ff.Command {
	fs := ff.NewFlagSet("show").SetParent(a.rootFlags)
	return &ff.Command{
		Name:      "show",
		Usage:     "pricewise show",
		ShortHelp: "Print the current session result",
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
				fmt.Println("no current result; run 'pricewise analyze' first")
				return nil
			}
			printResult(os.Stdout, result)
			return nil
		},
	}
}
