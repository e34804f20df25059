package sim

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/shipsim/internal/dynamo"
	"github.com/san-kum/shipsim/internal/metrics"
	"github.com/san-kum/shipsim/internal/models"
)

var _ = Describe("Closed-loop tracking", func() {
	var result *Result

	run := func(shape string, start models.VesselState) {
		s := newSim(GinkgoT(), shape, start, DefaultConfig())
		for _, m := range metrics.Default() {
			s.AddMetric(m)
		}
		var err error
		result, err = s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
	}

	Context("around a right-angle corner", func() {
		BeforeEach(func() {
			run("corner", models.VesselState{U: 4})
		})

		It("reaches the end of the path", func() {
			Expect(result.Completed).To(BeTrue())
		})

		It("classifies part of the run as turning", func() {
			Expect(result.Samples).To(ContainElement(HaveField("Turning", BeTrue())))
			Expect(result.Metrics["turning_fraction"]).To(BeNumerically(">", 0))
		})

		It("never exceeds the turning rudder limit", func() {
			for _, s := range result.Samples {
				Expect(math.Abs(s.Rudder)).To(BeNumerically("<=", math.Pi/6+1e-12))
			}
			Expect(result.Metrics["max_rudder"]).To(BeNumerically("<=", math.Pi/6+1e-12))
		})

		It("comes round to the new leg heading within 500 steps", func() {
			reached := -1
			for i, s := range result.Samples {
				if math.Abs(dynamo.AngleDiff(s.Heading, math.Pi/2)) < 0.2 {
					reached = i
					break
				}
			}
			Expect(reached).To(BeNumerically(">", 0))
			Expect(reached).To(BeNumerically("<", 500))
		})

		It("finishes near the end of the second leg", func() {
			last := result.Last()
			Expect(last.X).To(BeNumerically("~", 100, 10))
			Expect(last.Y).To(BeNumerically(">", 80))
		})
	})

	Context("starting 10 m off a straight line", func() {
		BeforeEach(func() {
			run("straight", models.VesselState{Y: 10, U: 4})
		})

		It("closes the cross-track error monotonically", func() {
			prev := math.Inf(1)
			for _, s := range result.Samples {
				Expect(math.Abs(s.Y)).To(BeNumerically("<=", prev+1e-9))
				prev = math.Abs(s.Y)
			}
		})

		It("settles on the line without crossing it", func() {
			last := result.Last()
			Expect(math.Abs(last.Y)).To(BeNumerically("<", 0.05))
			for _, s := range result.Samples {
				Expect(s.Y).To(BeNumerically(">=", 0))
			}
		})

		It("reaches the end of the path", func() {
			Expect(result.Completed).To(BeTrue())
			Expect(result.Metrics["on_track"]).To(BeNumerically(">", 0.9))
		})
	})
})
