package receipts

import (
	"context"
	"sync"

	"github.com/mtanaka/pricewise/internal/analysis"
	"github.com/mtanaka/pricewise/internal/api"
)

// API is the remote receipt surface the store depends on.
type API interface {
	ListReceipts(ctx context.Context) ([]*api.Receipt, error)
	CreateReceipt(ctx context.Context, create api.ReceiptCreate) (*api.Receipt, error)
	UpdateReceipt(ctx context.Context, id string, result *analysis.Result) (*api.Receipt, error)
	DeleteReceipt(ctx context.Context, id string) error
	ClearReceipts(ctx context.Context) error
}

// Store mirrors the caller's account-scoped receipts. The server is the sole
// source of truth: the mirror changes only after a remote call has resolved
// successfully, so a failed call leaves local state exactly as it was.
type Store struct {
	api API

	mu         sync.Mutex
	receipts   []*api.Receipt
	generation uint64
	onChange   func()
}

// NewStore creates a store over the given remote API.
func NewStore(remote API) *Store {
	return &Store{api: remote}
}

// OnChange registers a hook invoked after every confirmed mutation. Used to
// invalidate projections (the savings ranking) that the server rebuilds.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Receipts returns a copy of the mirrored list, in server order.
func (s *Store) Receipts() []*api.Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*api.Receipt, len(s.receipts))
	copy(out, s.receipts)
	return out
}

// Refresh replaces the mirror from the server. A response that raced with a
// confirmed mutation is discarded rather than applied late.
func (s *Store) Refresh(ctx context.Context) ([]*api.Receipt, error) {
	s.mu.Lock()
	start := s.generation
	s.mu.Unlock()

	listed, err := s.api.ListReceipts(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != start {
		// A mutation confirmed while this response was in flight; its view
		// is already stale.
		out := make([]*api.Receipt, len(s.receipts))
		copy(out, s.receipts)
		return out, nil
	}
	s.receipts = listed
	out := make([]*api.Receipt, len(listed))
	copy(out, listed)
	return out, nil
}

// Create persists a snapshot of result as a new receipt and, once the server
// confirms, prepends it to the mirror.
func (s *Store) Create(ctx context.Context, purchaseDate, storeName *string, result *analysis.Result) (*api.Receipt, error) {
	created, err := s.api.CreateReceipt(ctx, api.ReceiptCreate{
		PurchaseDate: purchaseDate,
		StoreName:    storeName,
		Result:       result.Clone(),
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.receipts = append([]*api.Receipt{created}, s.receipts...)
	fn := s.confirmLocked()
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return created, nil
}

// Update replaces the stored result for id. On confirmation only the matching
// mirror entry is swapped.
func (s *Store) Update(ctx context.Context, id string, result *analysis.Result) (*api.Receipt, error) {
	updated, err := s.api.UpdateReceipt(ctx, id, result.Clone())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i, r := range s.receipts {
		if r.ID == updated.ID {
			s.receipts[i] = updated
			break
		}
	}
	fn := s.confirmLocked()
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return updated, nil
}

// Remove deletes one receipt; the mirror entry goes away only after the
// server confirms.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := s.api.DeleteReceipt(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.receipts[:0]
	for _, r := range s.receipts {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.receipts = kept
	fn := s.confirmLocked()
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

// Clear removes all receipts owned by the caller.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.api.ClearReceipts(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.receipts = nil
	fn := s.confirmLocked()
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

// confirmLocked records a confirmed mutation and hands back the change hook
// so callers can fire it outside the lock. Callers hold s.mu.
func (s *Store) confirmLocked() func() {
	s.generation++
	return s.onChange
}
