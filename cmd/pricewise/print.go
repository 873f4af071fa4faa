package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mtanaka/pricewise/internal/analysis"
	"github.com/mtanaka/pricewise/internal/api"
	"github.com/mtanaka/pricewise/internal/history"
)

func printResult(w io.Writer, result *analysis.Result) {
	if result.PurchaseDate != "" {
		fmt.Fprintf(w, "purchase date: %s\n", result.PurchaseDate)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tITEM\tPAID\tQTY\tREF\tDIFF\tJUDGEMENT")
	for i := range result.Items {
		item := &result.Items[i]
		name := item.RawName
		if item.Canonical != "" {
			name = fmt.Sprintf("%s (%s)", item.RawName, item.Canonical)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%g\t%s\t%s\t%s\n",
			i,
			name,
			floatOrDash(item.PaidUnitPrice),
			item.EffectiveQuantity(),
			comparisonPrice(item.Comparison),
			comparisonDiff(item.Comparison),
			item.EffectiveJudgement(),
		)
	}
	tw.Flush()

	if s := result.Summary; s != nil {
		fmt.Fprintf(w, "deals: %d  overpaid: %d  unknown: %d  total diff: %.2f\n",
			s.DealCount, s.OverpayCount, s.UnknownCount, s.TotalDiff)
	}
}

func printHistoryEntries(w io.Writer, entries []*history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "local history is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSAVED AT\tDATE\tITEMS")
	for _, e := range entries {
		date := ""
		items := 0
		if e.Result != nil {
			date = e.Result.PurchaseDate
			items = len(e.Result.Items)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", e.ID, e.Timestamp.Format("2006-01-02 15:04"), date, items)
	}
	tw.Flush()
}

func printReceipts(w io.Writer, list []*api.Receipt) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no saved receipts")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSTORE\tITEMS\tUPDATED")
	for _, r := range list {
		items := 0
		if r.Result != nil {
			items = len(r.Result.Items)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.PurchaseDate, r.StoreName, items, r.UpdatedAt)
	}
	tw.Flush()
}

func printRanking(w io.Writer, view *api.RankingView) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNICKNAME\tSAVED\tOVERPAID")
	for _, e := range view.Rankings {
		nickname := e.Nickname
		if nickname == "" {
			nickname = e.UserID
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", e.Rank, nickname, e.TotalSaved, e.TotalOverpaid)
	}
	tw.Flush()

	if view.MyRank != nil {
		fmt.Fprintf(w, "you: rank %d, saved %d, overpaid %d\n", *view.MyRank, view.MyTotalSaved, view.MyTotalOverpaid)
	} else {
		fmt.Fprintln(w, "you are not ranked yet; save a receipt first")
	}
}

func floatOrDash(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func comparisonPrice(c *analysis.Comparison) string {
	if c == nil || c.StatPrice == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *c.StatPrice)
}

func comparisonDiff(c *analysis.Comparison) string {
	if c == nil || c.Diff == nil {
		return "-"
	}
	return fmt.Sprintf("%+.2f", *c.Diff)
}
