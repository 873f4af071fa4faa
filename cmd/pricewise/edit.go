package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/peterbourgon/ff/v4"

	"github.com/mtanaka/pricewise/internal/analysis"
	"github.com/mtanaka/pricewise/internal/edit"
)

const editUsage = `pricewise edit [--target TARGET] [--new] OP ...

Operations (IDX refers to the item's position when the edit starts):
  date=YYYY-MM-DD        set the purchase date
  name:IDX=TEXT          rename an item
  price:IDX=V            set the paid unit price (empty V clears it)
  qty:IDX=V              set the quantity
  rm:IDX                 delete an item
  move:IDX=NEWIDX        reposition an item
  add:NAME[,PRICE[,QTY]] append a new item

Targets: session (default), history:ID, receipt:ID`

func (a *app) editCommand() *ff.Command {
	fs := ff.NewFlagSet("edit").SetParent(a.rootFlags)
	target := fs.StringLong("target", "session", "Edit target: session, history:ID or receipt:ID")
	blank := fs.BoolLong("new", "Start from an empty result instead of the target's current one")
	return &ff.Command{
		Name:      "edit",
		Usage:     editUsage,
		ShortHelp: "Apply corrections to a result and write it back to its owning store",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			a.setup()
			if len(args) == 0 && !*blank {
				return ff.ErrHelp
			}

			sess, err := a.openEditSession(ctx, *target, *blank)
			if err != nil {
				return err
			}

			// Resolve positions to stable keys before applying anything, so
			// deletes and moves cannot shift which item a later op touches.
			keys := make([]string, 0)
			for _, line := range sess.Lines() {
				keys = append(keys, line.Key)
			}
			for _, op := range args {
				if err := applyEditOp(sess, keys, op); err != nil {
					return fmt.Errorf("op %q: %w", op, err)
				}
			}

			stores, err := a.editStores(sess.Origin())
			if err != nil {
				return err
			}
			result, err := sess.Commit(ctx, stores)
			if err != nil {
				return err
			}

			printResult(os.Stdout, result)
			return nil
		},
	}
}

func (a *app) openEditSession(ctx context.Context, target string, blank bool) (*edit.Session, error) {
	origin, err := parseTarget(target)
	if err != nil {
		return nil, err
	}
	if blank {
		if origin.Kind != edit.OriginSession {
			return nil, fmt.Errorf("--new only applies to the session target")
		}
		return edit.OpenBlank(origin), nil
	}

	switch origin.Kind {
	case edit.OriginSession:
		sessions, err := a.sessions()
		if err != nil {
			return nil, err
		}
		result, err := sessions.Load()
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, fmt.Errorf("no current result; use --new for manual entry")
		}
		return edit.Open(origin, result), nil
	case edit.OriginHistory:
		store, err := a.histories()
		if err != nil {
			return nil, err
		}
		entry, err := store.Get(origin.ID)
		if err != nil {
			return nil, err
		}
		return edit.Open(origin, entry.Result), nil
	case edit.OriginReceipt:
		list, err := a.remoteReceipts().Refresh(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range list {
			if r.ID == origin.ID {
				return edit.Open(origin, r.Result), nil
			}
		}
		return nil, fmt.Errorf("receipt %s not found", origin.ID)
	}
	return nil, fmt.Errorf("unsupported target %q", target)
}

func (a *app) editStores(origin edit.Origin) (edit.Stores, error) {
	sessions, err := a.sessions()
	if err != nil {
		return edit.Stores{}, err
	}
	stores := edit.Stores{Session: sessions}
	switch origin.Kind {
	case edit.OriginHistory:
		store, err := a.histories()
		if err != nil {
			return edit.Stores{}, err
		}
		stores.History = store
	case edit.OriginReceipt:
		stores.Receipts = a.remoteReceipts()
	}
	return stores, nil
}

func parseTarget(target string) (edit.Origin, error) {
	switch {
	case target == "session":
		return edit.Origin{Kind: edit.OriginSession}, nil
	case strings.HasPrefix(target, "history:"):
		return edit.Origin{Kind: edit.OriginHistory, ID: strings.TrimPrefix(target, "history:")}, nil
	case strings.HasPrefix(target, "receipt:"):
		return edit.Origin{Kind: edit.OriginReceipt, ID: strings.TrimPrefix(target, "receipt:")}, nil
	}
	return edit.Origin{}, fmt.Errorf("unknown target %q", target)
}

func applyEditOp(sess *edit.Session, keys []string, op string) error {
	if value, ok := strings.CutPrefix(op, "date="); ok {
		return sess.SetPurchaseDate(value)
	}
	if value, ok := strings.CutPrefix(op, "add:"); ok {
		return applyAdd(sess, value)
	}
	if spec, ok := strings.CutPrefix(op, "rm:"); ok {
		key, err := resolveKey(keys, spec)
		if err != nil {
			return err
		}
		return sess.RemoveLine(key)
	}

	for _, field := range []string{"name", "price", "qty", "move"} {
		spec, ok := strings.CutPrefix(op, field+":")
		if !ok {
			continue
		}
		idx, value, found := strings.Cut(spec, "=")
		if !found {
			return fmt.Errorf("expected %s:IDX=VALUE", field)
		}
		key, err := resolveKey(keys, idx)
		if err != nil {
			return err
		}
		return applyFieldOp(sess, field, key, value)
	}
	return fmt.Errorf("unknown operation")
}

func applyFieldOp(sess *edit.Session, field, key, value string) error {
	switch field {
	case "name":
		return sess.UpdateLine(key, edit.LinePatch{RawName: &value})
	case "price":
		if value == "" {
			return sess.UpdateLine(key, edit.LinePatch{ClearPaidUnitPrice: true})
		}
		price, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("bad price %q", value)
		}
		return sess.UpdateLine(key, edit.LinePatch{PaidUnitPrice: &price})
	case "qty":
		qty, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("bad quantity %q", value)
		}
		return sess.UpdateLine(key, edit.LinePatch{Quantity: &qty})
	case "move":
		index, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("bad index %q", value)
		}
		return sess.MoveLine(key, index)
	}
	return fmt.Errorf("unknown operation")
}

func applyAdd(sess *edit.Session, spec string) error {
	parts := strings.SplitN(spec, ",", 3)
	if parts[0] == "" {
		return fmt.Errorf("item name is required")
	}
	item := analysis.Item{RawName: parts[0]}
	if len(parts) > 1 && parts[1] != "" {
		price, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return fmt.Errorf("bad price %q", parts[1])
		}
		item.PaidUnitPrice = &price
	}
	if len(parts) > 2 && parts[2] != "" {
		qty, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return fmt.Errorf("bad quantity %q", parts[2])
		}
		item.Quantity = &qty
	}
	_, err := sess.AddLine(item)
	return err
}

func resolveKey(keys []string, idx string) (string, error) {
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 || i >= len(keys) {
		return "", fmt.Errorf("no item at index %q", idx)
	}
	return keys[i], nil
}
