package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/mtanaka/pricewise/internal/apperr"
)

// ParseResult constructs a validated Result from raw analyzer or stored
// input. Malformed input is rejected with a ValidationError rather than
// silently coerced.
func ParseResult(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, apperr.Validation("decoding result: %v", err)
	}
	r.normalize()
	// The summary is derived state: recompute it rather than trusting the
	// incoming value.
	if r.Summary != nil {
		r.RecomputeSummary()
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// normalize enforces the UNKNOWN-iff rule on comparisons coming off the wire:
// the price index never emits UNKNOWN itself, it encodes it as found=false or
// a missing stat price.
func (r *Result) normalize() {
	for i := range r.Items {
		c := r.Items[i].Comparison
		if c == nil {
			continue
		}
		if !c.Found || c.StatPrice == nil {
			c.Judgement = JudgementUnknown
		}
	}
}

// Validate checks the item sequence and, when a summary is attached, that it
// matches the aggregate of the current items.
func (r *Result) Validate() error {
	for i := range r.Items {
		item := &r.Items[i]
		if item.RawName == "" {
			return apperr.Validation("item %d: raw_name is required", i)
		}
		if item.PaidUnitPrice != nil && *item.PaidUnitPrice < 0 {
			return apperr.Validation("item %d: negative paid_unit_price", i)
		}
		if item.Quantity != nil && *item.Quantity <= 0 {
			return apperr.Validation("item %d: quantity must be positive", i)
		}
		if c := item.Comparison; c != nil && !c.Judgement.Valid() {
			return apperr.Validation("item %d: unknown judgement %q", i, string(c.Judgement))
		}
	}
	if r.Summary != nil {
		if got := Summarize(r.Items); *r.Summary != got {
			return apperr.Validation("summary is stale relative to items")
		}
	}
	return nil
}

// Clone returns a deep copy of the result. Saved snapshots must not be
// affected by later mutation of the original.
func (r *Result) Clone() *Result {
	data, err := json.Marshal(r)
	if err != nil {
		// Result contains only JSON-representable values.
		panic(fmt.Sprintf("cloning result: %v", err))
	}
	var out Result
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("cloning result: %v", err))
	}
	return &out
}
