package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v4"
)

func (a *app) rankingCommand() *ff.Command {
	fs := ff.NewFlagSet("ranking").SetParent(a.rootFlags)
	limit := fs.IntLong("limit", 10, "Number of ranking rows to fetch")
	return &ff.Command{
		Name:      "ranking",
		Usage:     "pricewise ranking [--limit N]",
		ShortHelp: "Show the savings ranking",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			a.setup()
			view, err := a.rankings().Fetch(ctx, *limit)
			if err != nil {
				return err
			}
			printRanking(os.Stdout, view)
			return nil
		},
	}
}

func (a *app) profileCommand() *ff.Command {
	fs := ff.NewFlagSet("profile").SetParent(a.rootFlags)
	nickname := fs.StringLong("nickname", "", "Set a new nickname")
	clear := fs.BoolLong("clear-nickname", "Clear the nickname")
	return &ff.Command{
		Name:      "profile",
		Usage:     "pricewise profile [--nickname NAME | --clear-nickname]",
		ShortHelp: "Show or update your profile",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			a.setup()
			client := a.apiClient()

			if *nickname != "" || *clear {
				var update *string
				if !*clear {
					update = nickname
				}
				profile, err := client.UpdateProfile(ctx, update)
				if err != nil {
					return err
				}
				// The ranking carries nicknames; it is stale until re-fetched.
				a.rankings().Invalidate()
				fmt.Printf("profile updated: %s\n", profileLabel(profile.Nickname, profile.ID))
				return nil
			}

			profile, err := client.Profile(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("id: %s\nnickname: %s\n", profile.ID, profileLabel(profile.Nickname, "(none)"))
			return nil
		},
	}
}

func (a *app) healthCommand() *ff.Command {
	fs := ff.NewFlagSet("health").SetParent(a.rootFlags)
	return &ff.Command{
		Name:      "health",
		Usage:     "pricewise health",
		ShortHelp: "Check backend connectivity",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			a.setup()
			status, err := a.apiClient().Health(ctx)
			if err != nil {
				return err
			}
			state := "NG"
			if status.OK {
				state = "OK"
			}
			configured := "unset"
			if status.PriceIndexConfigured {
				configured = "set"
			}
			fmt.Printf("backend: %s / vision: %s / price index: %s\n",
				state, strings.Join(status.VisionModel, ", "), configured)
			return nil
		},
	}
}

func (a *app) searchCommand() *ff.Command {
	fs := ff.NewFlagSet("search").SetParent(a.rootFlags)
	return &ff.Command{
		Name:      "search",
		Usage:     "pricewise search KEYWORD",
		ShortHelp: "Look up price-index classifications by keyword",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			a.setup()
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one keyword")
			}
			hits, err := a.apiClient().MetaSearch(ctx, args[0])
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Println("no matches")
				return nil
			}
			for _, hit := range hits {
				fmt.Printf("%s\t%s\t%s\t%s\n", hit.ID, hit.ClassID, hit.Name, hit.Code)
			}
			return nil
		},
	}
}

func profileLabel(nickname, fallback string) string {
	if nickname == "" {
		return fallback
	}
	return nickname
}
