package analysis

// Judgement classifies a paid price relative to the reference price.
type Judgement string

const (
	JudgementDeal    Judgement = "DEAL"
	JudgementFair    Judgement = "FAIR"
	JudgementOverpay Judgement = "OVERPAY"
	JudgementUnknown Judgement = "UNKNOWN"
)

// Valid reports whether j is one of the four known judgement values.
func (j Judgement) Valid() bool {
	switch j {
	case JudgementDeal, JudgementFair, JudgementOverpay, JudgementUnknown:
		return true
	}
	return false
}

// Comparison is the reference-price lookup output embedded per item.
// The exact thresholds behind Judgement are owned by the price index and are
// treated as opaque here.
type Comparison struct {
	Found     bool      `json:"found"`
	StatPrice *float64  `json:"stat_price,omitempty"`
	StatUnit  string    `json:"stat_unit,omitempty"`
	Diff      *float64  `json:"diff,omitempty"`
	Rate      *float64  `json:"rate,omitempty"`
	Judgement Judgement `json:"judgement,omitempty"`
	Note      string    `json:"note,omitempty"`
}

// Item is one line of the receipt.
type Item struct {
	RawName       string      `json:"raw_name"`
	Canonical     string      `json:"canonical,omitempty"`
	PaidUnitPrice *float64    `json:"paid_unit_price,omitempty"`
	Quantity      *float64    `json:"quantity,omitempty"`
	Comparison    *Comparison `json:"comparison,omitempty"`
}

// EffectiveQuantity returns the purchase quantity, defaulting to 1 when the
// receipt did not carry one.
func (i *Item) EffectiveQuantity() float64 {
	if i.Quantity == nil {
		return 1
	}
	return *i.Quantity
}

// EffectiveJudgement returns the item's judgement. It is UNKNOWN exactly when
// the comparison is absent, the reference price was not found, or no stat
// price is attached.
func (i *Item) EffectiveJudgement() Judgement {
	c := i.Comparison
	if c == nil || !c.Found || c.StatPrice == nil {
		return JudgementUnknown
	}
	if c.Judgement == "" {
		return JudgementUnknown
	}
	return c.Judgement
}

// Summary is a pure aggregate over a result's items. It is a derived cache:
// recomputed on every item mutation, never independently mutated.
type Summary struct {
	DealCount    int     `json:"deal_count"`
	OverpayCount int     `json:"overpay_count"`
	UnknownCount int     `json:"unknown_count"`
	TotalDiff    float64 `json:"total_diff"`
}

// Result is the canonical in-memory representation of one receipt analysis.
// Item order is meaningful and must be preserved.
type Result struct {
	PurchaseDate string         `json:"purchase_date,omitempty"`
	Currency     string         `json:"currency,omitempty"`
	Items        []Item         `json:"items"`
	Summary      *Summary       `json:"summary,omitempty"`
	Debug        map[string]any `json:"debug,omitempty"`
}

// Summarize aggregates judgement counts and total diff over items. Items
// without a numeric diff contribute zero.
func Summarize(items []Item) Summary {
	var s Summary
	for i := range items {
		switch items[i].EffectiveJudgement() {
		case JudgementDeal:
			s.DealCount++
		case JudgementOverpay:
			s.OverpayCount++
		case JudgementUnknown:
			s.UnknownCount++
		}
		if c := items[i].Comparison; c != nil && c.Diff != nil {
			s.TotalDiff += *c.Diff
		}
	}
	return s
}

// RecomputeSummary replaces the result's summary with the aggregate of its
// current items.
func (r *Result) RecomputeSummary() {
	s := Summarize(r.Items)
	r.Summary = &s
}
