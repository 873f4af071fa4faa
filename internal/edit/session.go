package edit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mtanaka/pricewise/internal/analysis"
	"github.com/mtanaka/pricewise/internal/api"
	"github.com/mtanaka/pricewise/internal/apperr"
	"github.com/mtanaka/pricewise/internal/history"
)

// OriginKind identifies the store that owns the result being edited.
type OriginKind int

const (
	// OriginSession is a result living only in the session slot.
	OriginSession OriginKind = iota
	// OriginHistory is a local durable cache entry.
	OriginHistory
	// OriginReceipt is an account-owned remote receipt.
	OriginReceipt
)

// Origin names the owning store of an edit target, plus the entry id for
// id-addressed stores.
type Origin struct {
	Kind OriginKind
	ID   string
}

// Line is one editable receipt line. Key is a synthetic identity assigned
// when the edit session opens; edits address lines by key, never by position,
// so inserts and deletes cannot reassign another line's changes.
type Line struct {
	Key  string
	Item analysis.Item
}

// LinePatch carries field-level changes to one line. Nil fields are left
// untouched; ClearPaidUnitPrice removes the price outright.
type LinePatch struct {
	RawName            *string
	Canonical          *string
	PaidUnitPrice      *float64
	ClearPaidUnitPrice bool
	Quantity           *float64
}

// Session is one edit/reconciliation pass over a result. It works on a deep
// copy; nothing is visible to any store until Commit.
type Session struct {
	origin       Origin
	purchaseDate string
	currency     string
	debug        map[string]any
	lines        []Line
}

// Open starts an edit session over a snapshot of result.
func Open(origin Origin, result *analysis.Result) *Session {
	snapshot := result.Clone()
	lines := make([]Line, len(snapshot.Items))
	for i, item := range snapshot.Items {
		lines[i] = Line{Key: uuid.NewString(), Item: item}
	}
	return &Session{
		origin:       origin,
		purchaseDate: snapshot.PurchaseDate,
		currency:     snapshot.Currency,
		debug:        snapshot.Debug,
		lines:        lines,
	}
}

// OpenBlank starts an edit session from an empty template, for manual entry
// without an analyzer pass.
func OpenBlank(origin Origin) *Session {
	return &Session{origin: origin}
}

// Origin returns the owning store of the edit target.
func (s *Session) Origin() Origin {
	return s.origin
}

// Lines returns the current lines in display order.
func (s *Session) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// PurchaseDate returns the current purchase date.
func (s *Session) PurchaseDate() string {
	return s.purchaseDate
}

// SetPurchaseDate replaces the purchase date. Dates are YYYY-MM-DD; empty
// clears the field.
func (s *Session) SetPurchaseDate(date string) error {
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return apperr.Validation("purchase date %q is not YYYY-MM-DD", date)
		}
	}
	s.purchaseDate = date
	return nil
}

// AddLine appends a new line and returns its key.
func (s *Session) AddLine(item analysis.Item) (string, error) {
	if item.PaidUnitPrice != nil && *item.PaidUnitPrice < 0 {
		return "", apperr.Validation("negative paid_unit_price")
	}
	if item.Quantity != nil && *item.Quantity <= 0 {
		return "", apperr.Validation("quantity must be positive")
	}
	key := uuid.NewString()
	s.lines = append(s.lines, Line{Key: key, Item: item})
	return key, nil
}

// UpdateLine applies a patch to the line with the given key. Changing the
// paid price or quantity invalidates the line's comparison: the judgement
// attached to the old value must not survive the edit, so the comparison is
// cleared until the price index re-validates it.
func (s *Session) UpdateLine(key string, patch LinePatch) error {
	line := s.find(key)
	if line == nil {
		return fmt.Errorf("line %s: %w", key, apperr.ErrNotFound)
	}
	if patch.PaidUnitPrice != nil && *patch.PaidUnitPrice < 0 {
		return apperr.Validation("negative paid_unit_price")
	}
	if patch.Quantity != nil && *patch.Quantity <= 0 {
		return apperr.Validation("quantity must be positive")
	}

	if patch.RawName != nil {
		line.Item.RawName = *patch.RawName
	}
	if patch.Canonical != nil {
		line.Item.Canonical = *patch.Canonical
	}

	staleComparison := false
	if patch.ClearPaidUnitPrice {
		if line.Item.PaidUnitPrice != nil {
			staleComparison = true
		}
		line.Item.PaidUnitPrice = nil
	} else if patch.PaidUnitPrice != nil {
		v := *patch.PaidUnitPrice
		if line.Item.PaidUnitPrice == nil || *line.Item.PaidUnitPrice != v {
			staleComparison = true
		}
		line.Item.PaidUnitPrice = &v
	}
	if patch.Quantity != nil {
		v := *patch.Quantity
		if line.Item.Quantity == nil || *line.Item.Quantity != v {
			staleComparison = true
		}
		line.Item.Quantity = &v
	}

	if staleComparison {
		line.Item.Comparison = nil
	}
	return nil
}

// RemoveLine deletes the line with the given key.
func (s *Session) RemoveLine(key string) error {
	for i := range s.lines {
		if s.lines[i].Key == key {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("line %s: %w", key, apperr.ErrNotFound)
}

// MoveLine repositions the line with the given key to index. Position affects
// display order only; identity stays with the key.
func (s *Session) MoveLine(key string, index int) error {
	if index < 0 || index >= len(s.lines) {
		return apperr.Validation("index %d out of range", index)
	}
	from := -1
	for i := range s.lines {
		if s.lines[i].Key == key {
			from = i
			break
		}
	}
	if from == -1 {
		return fmt.Errorf("line %s: %w", key, apperr.ErrNotFound)
	}
	line := s.lines[from]
	s.lines = append(s.lines[:from], s.lines[from+1:]...)
	s.lines = append(s.lines[:index], append([]Line{line}, s.lines[index:]...)...)
	return nil
}

// Build produces the edited result with its summary recomputed. The lines
// must form a valid item sequence.
func (s *Session) Build() (*analysis.Result, error) {
	items := make([]analysis.Item, len(s.lines))
	for i := range s.lines {
		items[i] = s.lines[i].Item
	}
	result := &analysis.Result{
		PurchaseDate: s.purchaseDate,
		Currency:     s.currency,
		Items:        items,
		Debug:        s.debug,
	}
	result.RecomputeSummary()
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result.Clone(), nil
}

// SessionStore is the session-slot surface Commit writes to.
type SessionStore interface {
	Save(result *analysis.Result) error
}

// HistoryStore is the local durable cache surface Commit writes to.
type HistoryStore interface {
	Update(id string, result *analysis.Result) (*history.Entry, error)
}

// ReceiptStore is the remote receipt surface Commit writes to.
type ReceiptStore interface {
	Update(ctx context.Context, id string, result *analysis.Result) (*api.Receipt, error)
}

// Stores bundles the write-back targets for Commit.
type Stores struct {
	Session  SessionStore
	History  HistoryStore
	Receipts ReceiptStore
}

// Commit writes the edited result back to whichever store owns the target:
// the owning durable store first, so a rejected remote update leaves every
// store untouched, then the session slot. Commit never creates a new entry;
// promotion to another store is a separate, explicit action.
func (s *Session) Commit(ctx context.Context, stores Stores) (*analysis.Result, error) {
	result, err := s.Build()
	if err != nil {
		return nil, err
	}

	switch s.origin.Kind {
	case OriginReceipt:
		if stores.Receipts == nil {
			return nil, fmt.Errorf("no receipt store for target %s", s.origin.ID)
		}
		if _, err := stores.Receipts.Update(ctx, s.origin.ID, result); err != nil {
			return nil, err
		}
	case OriginHistory:
		if stores.History == nil {
			return nil, fmt.Errorf("no history store for target %s", s.origin.ID)
		}
		if _, err := stores.History.Update(s.origin.ID, result); err != nil {
			return nil, err
		}
	}

	if stores.Session != nil {
		if err := stores.Session.Save(result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Session) find(key string) *Line {
	for i := range s.lines {
		if s.lines[i].Key == key {
			return &s.lines[i]
		}
	}
	return nil
}
