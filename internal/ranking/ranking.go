package ranking

import (
	"context"
	"sync"

	"github.com/mtanaka/pricewise/internal/api"
)

// Fetcher retrieves the server-aggregated savings ranking.
type Fetcher interface {
	Ranking(ctx context.Context, limit int) (*api.RankingView, error)
}

// ViewModel is a read-only projection of the savings ranking. Totals and
// ordering are computed remotely; the view is never patched incrementally,
// only re-fetched. Any receipt mutation or nickname change marks it stale.
type ViewModel struct {
	fetcher Fetcher

	mu    sync.Mutex
	view  *api.RankingView
	stale bool
}

// NewViewModel creates a view model over the given fetcher.
func NewViewModel(fetcher Fetcher) *ViewModel {
	return &ViewModel{fetcher: fetcher, stale: true}
}

// Fetch replaces the cached view with a fresh one.
func (v *ViewModel) Fetch(ctx context.Context, limit int) (*api.RankingView, error) {
	view, err := v.fetcher.Ranking(ctx, limit)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.view = view
	v.stale = false
	v.mu.Unlock()
	return view, nil
}

// Invalidate marks the cached view as out of date.
func (v *ViewModel) Invalidate() {
	v.mu.Lock()
	v.stale = true
	v.mu.Unlock()
}

// Current returns the cached view and whether it is stale. The view is nil
// until the first successful Fetch.
func (v *ViewModel) Current() (*api.RankingView, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.view, v.stale
}
