package ranking

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mtanaka/pricewise/internal/api"
)

func TestRanking(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ranking Suite")
}

type mockFetcher struct {
	rankingFn func(ctx context.Context, limit int) (*api.RankingView, error)
}

func (m *mockFetcher) Ranking(ctx context.Context, limit int) (*api.RankingView, error) {
	return m.rankingFn(ctx, limit)
}

var _ = Describe("ViewModel", func() {
	var (
		fetcher *mockFetcher
		vm      *ViewModel
		ctx     context.Context
	)

	BeforeEach(func() {
		fetcher = &mockFetcher{}
		vm = NewViewModel(fetcher)
		ctx = context.Background()
	})

	It("should start stale with no view", func() {
		view, stale := vm.Current()
		Expect(view).To(BeNil())
		Expect(stale).To(BeTrue())
	})

	Describe("Fetch", func() {
		It("should cache the fetched view and clear staleness", func() {
			fetcher.rankingFn = func(_ context.Context, limit int) (*api.RankingView, error) {
				Expect(limit).To(Equal(10))
				return &api.RankingView{
					Rankings: []api.RankingEntry{{Rank: 1, Nickname: "takeshi"}},
				}, nil
			}

			fetched, err := vm.Fetch(ctx, 10)
			Expect(err).NotTo(HaveOccurred())

			view, stale := vm.Current()
			Expect(view).To(BeIdenticalTo(fetched))
			Expect(stale).To(BeFalse())
		})

		When("the fetch fails", func() {
			It("should keep the previous view and staleness", func() {
				fetcher.rankingFn = func(_ context.Context, _ int) (*api.RankingView, error) {
					return &api.RankingView{}, nil
				}
				_, err := vm.Fetch(ctx, 10)
				Expect(err).NotTo(HaveOccurred())

				fetcher.rankingFn = func(_ context.Context, _ int) (*api.RankingView, error) {
					return nil, errors.New("boom")
				}
				_, err = vm.Fetch(ctx, 10)
				Expect(err).To(MatchError("boom"))

				view, stale := vm.Current()
				Expect(view).NotTo(BeNil())
				Expect(stale).To(BeFalse())
			})
		})
	})

	Describe("Invalidate", func() {
		It("should mark the cached view stale until the next fetch", func() {
			fetcher.rankingFn = func(_ context.Context, _ int) (*api.RankingView, error) {
				return &api.RankingView{}, nil
			}
			_, err := vm.Fetch(ctx, 10)
			Expect(err).NotTo(HaveOccurred())

			vm.Invalidate()
			view, stale := vm.Current()
			Expect(view).NotTo(BeNil())
			Expect(stale).To(BeTrue())

			_, err = vm.Fetch(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			_, stale = vm.Current()
			Expect(stale).To(BeFalse())
		})
	})
})
