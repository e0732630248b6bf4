package pulse_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pulse.app/engine/internal/domain"
	"pulse.app/engine/internal/pulse"
)

func scorePtr(v int) *domain.Score {
	s := domain.Score(v)
	return &s
}

var _ = Describe("ClassifyTrend", func() {
	It("is stable without a previous score", func() {
		Expect(pulse.ClassifyTrend(80, nil)).To(Equal(domain.TrendStable))
	})

	DescribeTable("deadzone boundaries",
		func(current, previous int, expected domain.Trend) {
			Expect(pulse.ClassifyTrend(domain.Score(current), scorePtr(previous))).To(Equal(expected))
		},
		Entry("delta +4 is up", 54, 50, domain.TrendUp),
		Entry("delta +3 is stable", 53, 50, domain.TrendStable),
		Entry("delta 0 is stable", 50, 50, domain.TrendStable),
		Entry("delta -3 is stable", 47, 50, domain.TrendStable),
		Entry("delta -4 is down", 46, 50, domain.TrendDown),
		Entry("large swing up", 100, 0, domain.TrendUp),
		Entry("large swing down", 0, 100, domain.TrendDown),
	)
})
