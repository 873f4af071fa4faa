package session

import (
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mtanaka/pricewise/internal/analysis"
)

func TestSession(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Suite")
}

func floatPtr(v float64) *float64 {
	return &v
}

var _ = Describe("Store", func() {
	var (
		store  *Store
		result *analysis.Result
	)

	BeforeEach(func() {
		var err error
		store, err = NewStore(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		result = &analysis.Result{
			PurchaseDate: "2025-06-01",
			Items: []analysis.Item{
				{RawName: "牛乳", PaidUnitPrice: floatPtr(228)},
			},
		}
		result.RecomputeSummary()
	})

	Describe("Load", func() {
		When("the slot is empty", func() {
			It("should return nil without error", func() {
				loaded, err := store.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(loaded).To(BeNil())
			})
		})

		When("a result was saved", func() {
			BeforeEach(func() {
				Expect(store.Save(result)).To(Succeed())
			})

			It("should restore it", func() {
				loaded, err := store.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(loaded.PurchaseDate).To(Equal("2025-06-01"))
				Expect(loaded.Items).To(HaveLen(1))
			})
		})
	})

	Describe("Save", func() {
		It("should keep a snapshot unaffected by later mutation", func() {
			Expect(store.Save(result)).To(Succeed())

			result.Items[0].RawName = "変更後"
			result.Items = append(result.Items, analysis.Item{RawName: "追加"})

			loaded, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Items).To(HaveLen(1))
			Expect(loaded.Items[0].RawName).To(Equal("牛乳"))
		})

		It("should overwrite the slot wholesale", func() {
			Expect(store.Save(result)).To(Succeed())

			replacement := &analysis.Result{Items: []analysis.Item{{RawName: "別のレシート"}}}
			Expect(store.Save(replacement)).To(Succeed())

			loaded, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Items).To(HaveLen(1))
			Expect(loaded.Items[0].RawName).To(Equal("別のレシート"))
		})
	})

	Describe("Clear", func() {
		It("should empty the slot", func() {
			Expect(store.Save(result)).To(Succeed())
			Expect(store.Clear()).To(Succeed())

			loaded, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeNil())
		})

		It("should tolerate an already-empty slot", func() {
			Expect(store.Clear()).To(Succeed())
		})
	})

	Describe("NewStore", func() {
		It("should create the base directory", func() {
			dir := filepath.Join(GinkgoT().TempDir(), "nested", "session")
			_, err := NewStore(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(dir).To(BeADirectory())
		})
	})
})
