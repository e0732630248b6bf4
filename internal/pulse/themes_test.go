package pulse_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pulse.app/engine/internal/pulse"
)

var _ = Describe("DetectThemes", func() {
	It("returns nil for an empty note", func() {
		Expect(pulse.DetectThemes("")).To(BeNil())
		Expect(pulse.DetectThemes("   ")).To(BeNil())
	})

	It("matches case-insensitively", func() {
		Expect(pulse.DetectThemes("SO STRESSED")).To(ContainElement(pulse.ThemeStress))
	})

	It("matches whole words only", func() {
		// "restaurant" must not fire the sleep theme via "rest".
		Expect(pulse.DetectThemes("ate at a restaurant")).NotTo(ContainElement(pulse.ThemeSleep))
	})

	Context("appetite", func() {
		It("detects low appetite", func() {
			Expect(pulse.DetectThemes("no appetite today")).To(ContainElement(pulse.ThemeNoAppetite))
		})

		It("detects hunger", func() {
			Expect(pulse.DetectThemes("so hungry all day")).To(ContainElement(pulse.ThemeHunger))
		})

		It("never conflates 'not hungry' with hunger", func() {
			themes := pulse.DetectThemes("not hungry at all today")
			Expect(themes).To(ContainElement(pulse.ThemeNoAppetite))
			Expect(themes).NotTo(ContainElement(pulse.ThemeHunger))
		})

		It("suppresses hunger when both phrasings appear", func() {
			themes := pulse.DetectThemes("lost my appetite, usually so hungry")
			Expect(themes).To(ContainElement(pulse.ThemeNoAppetite))
			Expect(themes).NotTo(ContainElement(pulse.ThemeHunger))
		})
	})

	Context("situational themes", func() {
		DescribeTable("detects",
			func(note string, theme pulse.Theme) {
				Expect(pulse.DetectThemes(note)).To(ContainElement(theme))
			},
			Entry("exercise", "hit the gym before work", pulse.ThemeExercise),
			Entry("party", "going out for drinks tonight", pulse.ThemePartyLate),
			Entry("travel", "long flight tomorrow", pulse.ThemeTravel),
			Entry("deadline", "big presentation on friday", pulse.ThemeDeadline),
			Entry("dizzy", "felt lightheaded after lunch", pulse.ThemeDizzy),
		)
	})

	Context("compound stress_sleep", func() {
		It("fires when stress and sleep both appear", func() {
			themes := pulse.DetectThemes("stressed and barely slept")
			Expect(themes).To(ContainElement(pulse.ThemeStressSleep))
		})

		It("does not fire for stress alone", func() {
			Expect(pulse.DetectThemes("stressed about work")).NotTo(ContainElement(pulse.ThemeStressSleep))
		})

		It("does not fire for sleep alone", func() {
			Expect(pulse.DetectThemes("slept really well")).NotTo(ContainElement(pulse.ThemeStressSleep))
		})
	})
})
