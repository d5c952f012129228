package statespace_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	ss "github.com/san-kum/ltisim/statespace"
)

type siso = ss.Model[float64, ss.D1, ss.D1, ss.D1]

func firstOrderLag() *siso {
	sys := ss.New[float64, ss.D1, ss.D1, ss.D1]()
	sys.SetA(ss.NewMatrix[float64, ss.D1, ss.D1](-1)).
		SetB(ss.NewMatrix[float64, ss.D1, ss.D1](1)).
		SetC(ss.NewMatrix[float64, ss.D1, ss.D1](1)).
		SetD(ss.NewMatrix[float64, ss.D1, ss.D1](0)).
		SetDt(0.1)
	return sys
}

var _ = Describe("Model", func() {
	Describe("New", func() {
		It("starts with zero matrices and unit dt", func() {
			sys := ss.New[float64, ss.D2, ss.D3, ss.D1]()

			Expect(sys.A().RawRowMajor()).To(HaveEach(BeZero()))
			Expect(sys.B().RawRowMajor()).To(HaveLen(6))
			Expect(sys.B().RawRowMajor()).To(HaveEach(BeZero()))
			Expect(sys.C().RawRowMajor()).To(HaveEach(BeZero()))
			Expect(sys.D().RawRowMajor()).To(HaveEach(BeZero()))
			Expect(sys.Dt()).To(Equal(1.0))

			Expect(sys.U().Slice()).To(Equal([]float64{0, 0}))
			Expect(sys.X().Slice()).To(Equal([]float64{0, 0, 0}))
			Expect(sys.Y().Slice()).To(Equal([]float64{0}))
			Expect(sys.StateBounds().Upper().Slice()).To(HaveEach(Equal(9e99)))
		})
	})

	Describe("Advance", func() {
		It("integrates the first step with forward Euler", func() {
			sys := firstOrderLag().SetU(ss.BoundedFromScalar[float64, ss.D1](1))

			sys.Advance()

			Expect(sys.X().At(0)).To(BeNumerically("~", 0.1, 1e-15))
			Expect(sys.Y().At(0)).To(Equal(0.0))
		})

		It("reports the output of the pre-step state", func() {
			sys := firstOrderLag().SetU(ss.BoundedFromScalar[float64, ss.D1](1))

			sys.Advance().Advance()

			Expect(sys.X().At(0)).To(BeNumerically("~", 0.19, 1e-12))
			Expect(sys.Y().At(0)).To(BeNumerically("~", 0.1, 1e-12))
		})

		It("leaves the input unchanged", func() {
			sys := firstOrderLag().SetU(ss.BoundedFromScalar[float64, ss.D1](1))

			for i := 0; i < 5; i++ {
				sys.Advance()
			}

			Expect(sys.U().Slice()).To(Equal([]float64{1}))
		})

		It("approaches the DC gain of a stable lag", func() {
			sys := firstOrderLag().SetU(ss.BoundedFromScalar[float64, ss.D1](1))

			for i := 0; i < 500; i++ {
				sys.Advance()
			}

			Expect(sys.Y().At(0)).To(BeNumerically("~", 1.0, 1e-9))
		})

		It("clamps the input before reading it", func() {
			sys := firstOrderLag().SetU(ss.BoundedFromScalars[float64, ss.D1](1, -0.5, 0.5))

			sys.Advance()

			Expect(sys.U().At(0)).To(Equal(0.5))
			Expect(sys.X().At(0)).To(BeNumerically("~", 0.05, 1e-15))
		})

		It("clamps an out-of-bounds initial state before reading it", func() {
			sys := firstOrderLag().SetX(ss.BoundedFromScalars[float64, ss.D1](10, -1, 2))

			sys.Advance()

			// y uses the clamped x0 = 2; x1 = 2 + 0.1*(-2) = 1.8.
			Expect(sys.Y().At(0)).To(Equal(2.0))
			Expect(sys.X().At(0)).To(BeNumerically("~", 1.8, 1e-12))
		})

		It("clamps the new state to its bounds", func() {
			sys := firstOrderLag().
				SetX(ss.BoundedFromScalars[float64, ss.D1](0, 0, 0.15)).
				SetU(ss.BoundedFromScalar[float64, ss.D1](1))

			for i := 0; i < 10; i++ {
				sys.Advance()
			}

			Expect(sys.X().At(0)).To(Equal(0.15))
		})

		It("clamps the output to its bounds", func() {
			sys := firstOrderLag().
				SetX(ss.BoundedFromScalar[float64, ss.D1](5)).
				SetY(ss.BoundedFromScalars[float64, ss.D1](0, -1, 1))

			sys.Advance()

			Expect(sys.Y().At(0)).To(Equal(1.0))
		})

		It("handles multi-input multi-output systems with feedthrough", func() {
			sys := ss.New[float64, ss.D1, ss.D2, ss.D2]()
			sys.SetA(ss.NewMatrix[float64, ss.D2, ss.D2](0, 1, -2, -3)).
				SetB(ss.NewMatrix[float64, ss.D2, ss.D1](0, 1)).
				SetC(ss.Identity[float64, ss.D2, ss.D2]()).
				SetD(ss.NewMatrix[float64, ss.D2, ss.D1](0, 0.5)).
				SetDt(0.1).
				SetX(ss.BoundedFromScalar[float64, ss.D2](1)).
				SetU(ss.BoundedFromScalar[float64, ss.D1](2))

			sys.Advance()

			// xdot = [1, -2-3+2] = [1, -3]
			x := sys.X().Slice()
			Expect(x[0]).To(BeNumerically("~", 1.1, 1e-12))
			Expect(x[1]).To(BeNumerically("~", 0.7, 1e-12))
			Expect(sys.Y().Slice()).To(Equal([]float64{1, 2}))
		})

		It("runs autonomous systems without inputs", func() {
			sys := ss.New[float64, ss.D0, ss.D2, ss.D1]()
			sys.SetA(ss.NewMatrix[float64, ss.D2, ss.D2](0, 1, -1, 0)).
				SetC(ss.NewMatrix[float64, ss.D1, ss.D2](1, 0)).
				SetDt(0.01).
				SetX(ss.NewBoundedVector[float64, ss.D2]().
					SetValue(ss.NewVector[float64, ss.D2](1, 0)))

			for i := 0; i < 100; i++ {
				sys.Advance()
			}

			Expect(sys.Y().At(0)).To(BeNumerically("~", math.Cos(0.99), 0.02))
			Expect(sys.U().Len()).To(Equal(0))
		})

		It("runs in single precision", func() {
			sys := ss.New[float32, ss.D1, ss.D1, ss.D1]()
			sys.SetA(ss.NewMatrix[float32, ss.D1, ss.D1](-1)).
				SetB(ss.NewMatrix[float32, ss.D1, ss.D1](1)).
				SetC(ss.NewMatrix[float32, ss.D1, ss.D1](1)).
				SetDt(0.1).
				SetU(ss.BoundedFromScalar[float32, ss.D1](1))

			sys.Advance().Advance()

			Expect(sys.X().At(0)).To(BeNumerically("~", 0.19, 1e-6))
			Expect(sys.Y().At(0)).To(BeNumerically("~", 0.1, 1e-6))
		})

		It("is exactly reproducible across instances", func() {
			a := firstOrderLag()
			b := firstOrderLag()
			inputs := []float64{1, 0.5, -2, 3, 0, 0.25, 1}

			for step := 0; step < 70; step++ {
				u := ss.BoundedFromScalar[float64, ss.D1](inputs[step%len(inputs)])
				a.SetU(u).Advance()
				b.SetU(u).Advance()

				Expect(a.Y().Equal(b.Y())).To(BeTrue())
				Expect(a.X().Equal(b.X())).To(BeTrue())
			}
		})
	})

	Describe("aliasing", func() {
		It("copies matrices handed to setters", func() {
			a := ss.NewMatrix[float64, ss.D1, ss.D1](-1)
			sys := ss.New[float64, ss.D1, ss.D1, ss.D1]().SetA(a)

			raw := sys.A().RawRowMajor()
			raw[0] = 99

			Expect(sys.A().At(0, 0)).To(Equal(-1.0))
		})

		It("copies bounded vectors handed to setters", func() {
			u := ss.BoundedFromScalar[float64, ss.D1](1)
			sys := firstOrderLag().SetU(u)

			u.Update(ss.NewVector[float64, ss.D1](5))

			Expect(sys.U().At(0)).To(Equal(1.0))
		})

		It("clones into independent simulations", func() {
			orig := firstOrderLag().SetU(ss.BoundedFromScalar[float64, ss.D1](1))
			cp := orig.Clone()

			cp.Advance().Advance()

			Expect(orig.X().At(0)).To(Equal(0.0))
			Expect(cp.X().At(0)).To(BeNumerically("~", 0.19, 1e-12))
		})
	})
})
