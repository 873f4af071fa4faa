package analysis

import (
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mtanaka/pricewise/internal/apperr"
)

func beValidationError(err error) bool {
	var verr *apperr.ValidationError
	return errors.As(err, &verr)
}

func TestAnalysis(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Analysis Suite")
}

func floatPtr(v float64) *float64 {
	return &v
}

func foundComparison(statPrice, diff float64, judgement Judgement) *Comparison {
	return &Comparison{
		Found:     true,
		StatPrice: floatPtr(statPrice),
		Diff:      floatPtr(diff),
		Judgement: judgement,
	}
}

var _ = Describe("EffectiveJudgement", func() {
	var item Item

	BeforeEach(func() {
		item = Item{RawName: "卵", PaidUnitPrice: floatPtr(250)}
	})

	When("the comparison is absent", func() {
		It("should be UNKNOWN", func() {
			Expect(item.EffectiveJudgement()).To(Equal(JudgementUnknown))
		})
	})

	When("the reference price was not found", func() {
		BeforeEach(func() {
			item.Comparison = &Comparison{Found: false, Judgement: JudgementDeal}
		})

		It("should be UNKNOWN", func() {
			Expect(item.EffectiveJudgement()).To(Equal(JudgementUnknown))
		})
	})

	When("no stat price is attached", func() {
		BeforeEach(func() {
			item.Comparison = &Comparison{Found: true, Judgement: JudgementFair}
		})

		It("should be UNKNOWN", func() {
			Expect(item.EffectiveJudgement()).To(Equal(JudgementUnknown))
		})
	})

	When("the comparison is complete", func() {
		BeforeEach(func() {
			item.Comparison = foundComparison(230, -20, JudgementOverpay)
		})

		It("should return the index judgement", func() {
			Expect(item.EffectiveJudgement()).To(Equal(JudgementOverpay))
		})
	})
})

var _ = Describe("Summarize", func() {
	It("should count judgements and sum diffs, treating missing diffs as zero", func() {
		items := []Item{
			{RawName: "牛乳", Comparison: foundComparison(210, 10, JudgementDeal)},
			{RawName: "パン", Comparison: foundComparison(150, -30, JudgementOverpay)},
			{RawName: "豆腐", Comparison: &Comparison{Found: true, StatPrice: floatPtr(80), Judgement: JudgementFair}},
			{RawName: "惣菜"},
		}

		Expect(Summarize(items)).To(Equal(Summary{
			DealCount:    1,
			OverpayCount: 1,
			UnknownCount: 1,
			TotalDiff:    -20,
		}))
	})

	It("should be idempotent", func() {
		result := &Result{Items: []Item{
			{RawName: "牛乳", Comparison: foundComparison(210, 10, JudgementDeal)},
		}}

		result.RecomputeSummary()
		first := *result.Summary
		result.RecomputeSummary()
		Expect(*result.Summary).To(Equal(first))
	})

	When("an item without a comparison is appended", func() {
		It("should move the summary's unknown count only", func() {
			result := &Result{Summary: &Summary{}}
			result.Items = append(result.Items, Item{
				RawName:       "牛乳",
				PaidUnitPrice: floatPtr(200),
				Quantity:      floatPtr(1),
			})

			result.RecomputeSummary()
			Expect(*result.Summary).To(Equal(Summary{UnknownCount: 1}))
		})
	})
})

var _ = Describe("ParseResult", func() {
	var (
		payload []byte
		result  *Result
		err     error
	)

	JustBeforeEach(func() {
		result, err = ParseResult(payload)
	})

	When("the payload is well formed", func() {
		BeforeEach(func() {
			payload = []byte(`{
				"purchase_date": "2025-06-01",
				"currency": "JPY",
				"items": [
					{"raw_name": "牛乳", "paid_unit_price": 228, "quantity": 1,
					 "comparison": {"found": true, "stat_price": 240, "diff": 12, "rate": -0.05, "judgement": "DEAL"}},
					{"raw_name": "ねぎ", "paid_unit_price": 98}
				]
			}`)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should keep item order", func() {
			Expect(result.Items).To(HaveLen(2))
			Expect(result.Items[0].RawName).To(Equal("牛乳"))
			Expect(result.Items[1].RawName).To(Equal("ねぎ"))
		})

		It("should default quantity to one", func() {
			Expect(result.Items[1].EffectiveQuantity()).To(Equal(1.0))
		})
	})

	When("a price is present but not numeric", func() {
		BeforeEach(func() {
			payload = []byte(`{"items": [{"raw_name": "牛乳", "paid_unit_price": "228円"}]}`)
		})

		It("should report a validation error", func() {
			Expect(err).To(HaveOccurred())
			Expect(beValidationError(err)).To(BeTrue())
		})
	})

	When("an item has no name", func() {
		BeforeEach(func() {
			payload = []byte(`{"items": [{"raw_name": "", "paid_unit_price": 100}]}`)
		})

		It("should report a validation error", func() {
			Expect(err).To(HaveOccurred())
			Expect(beValidationError(err)).To(BeTrue())
		})
	})

	When("a judgement value is outside the taxonomy", func() {
		BeforeEach(func() {
			payload = []byte(`{"items": [{"raw_name": "牛乳",
				"comparison": {"found": true, "stat_price": 240, "judgement": "BARGAIN"}}]}`)
		})

		It("should report a validation error", func() {
			Expect(err).To(HaveOccurred())
			Expect(beValidationError(err)).To(BeTrue())
		})
	})

	When("the index could not resolve the item but still sent a judgement", func() {
		BeforeEach(func() {
			payload = []byte(`{"items": [{"raw_name": "牛乳",
				"comparison": {"found": false, "judgement": "DEAL", "note": "no match"}}]}`)
		})

		It("should normalize the judgement to UNKNOWN", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Items[0].Comparison.Judgement).To(Equal(JudgementUnknown))
			Expect(result.Items[0].EffectiveJudgement()).To(Equal(JudgementUnknown))
		})
	})

	When("the incoming summary disagrees with the items", func() {
		BeforeEach(func() {
			payload = []byte(`{
				"items": [{"raw_name": "牛乳"}],
				"summary": {"deal_count": 5, "overpay_count": 5, "unknown_count": 0, "total_diff": 99}
			}`)
		})

		It("should recompute the summary rather than trust it", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(*result.Summary).To(Equal(Summary{UnknownCount: 1}))
		})
	})
})

var _ = Describe("Clone", func() {
	It("should be unaffected by later mutation of the original", func() {
		original := &Result{
			PurchaseDate: "2025-06-01",
			Items: []Item{
				{RawName: "牛乳", PaidUnitPrice: floatPtr(228), Comparison: foundComparison(240, 12, JudgementDeal)},
			},
		}
		original.RecomputeSummary()

		snapshot := original.Clone()
		original.Items[0].RawName = "変更"
		*original.Items[0].PaidUnitPrice = 999
		original.Items[0].Comparison = nil
		original.Items = append(original.Items, Item{RawName: "追加"})

		Expect(snapshot.Items).To(HaveLen(1))
		Expect(snapshot.Items[0].RawName).To(Equal("牛乳"))
		Expect(*snapshot.Items[0].PaidUnitPrice).To(Equal(228.0))
		Expect(snapshot.Items[0].Comparison).NotTo(BeNil())
	})
})
