package reputation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/reputation-management/internal/reputation"
)

var _ = Describe("Metrics", func() {
	Describe("Aggregate", func() {
		It("should average and count ratings", func() {
			stats := reputation.Aggregate("acme", []int{5, 5, 4, 3, 5})

			Expect(stats.CompanyID).To(Equal("acme"))
			Expect(stats.AverageRating).To(Equal(4.4))
			Expect(stats.TotalFeedbacks).To(Equal(5))
			Expect(stats.Distribution).To(Equal(reputation.Distribution{Rating3: 1, Rating4: 1, Rating5: 3}))
		})

		It("should round to two decimals", func() {
			stats := reputation.Aggregate("acme", []int{5, 4, 4})

			Expect(stats.AverageRating).To(Equal(4.33))
		})

		It("should return nil when there is nothing to aggregate", func() {
			Expect(reputation.Aggregate("acme", nil)).To(BeNil())
			Expect(reputation.Aggregate("acme", []int{0, 6})).To(BeNil())
		})

		It("should ignore ratings outside one to five", func() {
			stats := reputation.Aggregate("acme", []int{0, 2, 4, 7})

			Expect(stats.TotalFeedbacks).To(Equal(2))
			Expect(stats.AverageRating).To(Equal(3.0))
		})

		It("should agree with counts from a GROUP BY", func() {
			fromCounts := reputation.StatsFromCounts("acme", map[int]int{5: 3, 4: 1, 3: 1})

			Expect(fromCounts).To(Equal(reputation.Aggregate("acme", []int{5, 5, 4, 3, 5})))
		})
	})

	Describe("Distribution", func() {
		It("should compute percentages per star", func() {
			d := reputation.Distribution{Rating1: 1, Rating5: 3}

			Expect(d.Total()).To(Equal(4))
			Expect(d.Percentage(1)).To(BeNumerically("~", 25, 0.001))
			Expect(d.Percentages().Rating5).To(BeNumerically("~", 75, 0.001))
			Expect(d.Count(9)).To(BeZero())
		})

		It("should report zero percentages when empty", func() {
			Expect(reputation.Distribution{}.Percentages()).To(Equal(reputation.Percentages{}))
		})
	})

	It("should overwrite aggregates on Apply", func() {
		m := reputation.NewMetrics(reputation.Aggregate("acme", []int{1}))
		m.ID = "metrics-1"

		m.Apply(reputation.Aggregate("acme", []int{5, 5}))

		Expect(m.ID).To(Equal("metrics-1"))
		Expect(m.AverageRating).To(Equal(5.0))
		Expect(m.Distribution).To(Equal(reputation.Distribution{Rating5: 2}))
	})

	DescribeTable("TrendBetween",
		func(current float64, previous *reputation.HistoryEntry, want reputation.Trend) {
			Expect(reputation.TrendBetween(current, previous)).To(Equal(want))
		},
		Entry("no snapshot", 4.0, nil, reputation.TrendStable),
		Entry("unchanged", 4.0, &reputation.HistoryEntry{AverageRating: 4.0}, reputation.TrendStable),
		Entry("up by exactly 0.10", 4.1, &reputation.HistoryEntry{AverageRating: 4.0}, reputation.TrendStable),
		Entry("down by exactly 0.10", 3.9, &reputation.HistoryEntry{AverageRating: 4.0}, reputation.TrendStable),
		Entry("up by 0.11", 4.11, &reputation.HistoryEntry{AverageRating: 4.0}, reputation.TrendUp),
		Entry("down by 0.11", 3.89, &reputation.HistoryEntry{AverageRating: 4.0}, reputation.TrendDown),
		Entry("large rise", 4.8, &reputation.HistoryEntry{AverageRating: 2.5}, reputation.TrendUp),
	)
})
