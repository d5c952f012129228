package statespace_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	ss "github.com/san-kum/ltisim/statespace"
)

var _ = Describe("BoundedVector", func() {
	Describe("construction", func() {
		It("defaults to zeros inside the sentinel bounds", func() {
			bv := ss.NewBoundedVector[float64, ss.D3]()

			Expect(bv.Value().Slice()).To(Equal([]float64{0, 0, 0}))
			Expect(bv.Lower().Slice()).To(Equal([]float64{-9e99, -9e99, -9e99}))
			Expect(bv.Upper().Slice()).To(Equal([]float64{9e99, 9e99, 9e99}))
		})

		It("saturates the sentinels to infinities for float32", func() {
			bv := ss.NewBoundedVector[float32, ss.D2]()

			for _, lo := range bv.Lower().Slice() {
				Expect(math.IsInf(float64(lo), -1)).To(BeTrue())
			}
			for _, hi := range bv.Upper().Slice() {
				Expect(math.IsInf(float64(hi), 1)).To(BeTrue())
			}
		})

		It("broadcasts a scalar value with default bounds", func() {
			bv := ss.BoundedFromScalar[float32, ss.D3](10.17)

			Expect(bv.Value().Slice()).To(Equal([]float32{10.17, 10.17, 10.17}))
			Expect(bv.Lower().Slice()).To(HaveEach(BeNumerically("<", 0)))
		})

		It("broadcasts value and bounds independently", func() {
			bv := ss.BoundedFromScalars[float64, ss.D3](10.17, -3.14, 6.28)

			Expect(bv.Value().Slice()).To(Equal([]float64{10.17, 10.17, 10.17}))
			Expect(bv.Lower().Slice()).To(Equal([]float64{-3.14, -3.14, -3.14}))
			Expect(bv.Upper().Slice()).To(Equal([]float64{6.28, 6.28, 6.28}))
		})

		It("does not clamp on construction", func() {
			bv := ss.BoundedFromScalars[float64, ss.D1](10.17, -3.14, 6.28)
			Expect(bv.Value().At(0)).To(Equal(10.17))
		})
	})

	Describe("setters", func() {
		It("replace whole arrays without clamping", func() {
			bv := ss.NewBoundedVector[float64, ss.D2]().
				SetValue(ss.NewVector[float64, ss.D2](100, -100)).
				SetLower(ss.NewVector[float64, ss.D2](-1, -1)).
				SetUpper(ss.NewVector[float64, ss.D2](1, 1))

			Expect(bv.Value().Slice()).To(Equal([]float64{100, -100}))
		})

		It("copy their argument", func() {
			v := ss.NewVector[float64, ss.D2](1, 2)
			bv := ss.NewBoundedVector[float64, ss.D2]().SetValue(v)

			got := bv.Value().Slice()
			got[0] = 42

			Expect(bv.Value().Slice()).To(Equal([]float64{1, 2}))
			Expect(v.Slice()).To(Equal([]float64{1, 2}))
		})
	})

	Describe("Clamp", func() {
		It("limits each component to its own bounds", func() {
			bv := ss.NewBoundedVector[float64, ss.D3]().
				SetValue(ss.NewVector[float64, ss.D3](1, -314.1, 628.3)).
				SetLower(ss.NewVector[float64, ss.D3](-5, -5, -5)).
				SetUpper(ss.NewVector[float64, ss.D3](9, 9, 9))

			bv.Clamp()

			Expect(bv.Value().Slice()).To(Equal([]float64{1, -5, 9}))
		})

		It("keeps every component inside valid bounds", func() {
			rng := rand.New(rand.NewSource(7))
			for trial := 0; trial < 200; trial++ {
				val := make([]float64, 4)
				lo := make([]float64, 4)
				hi := make([]float64, 4)
				for i := range val {
					val[i] = rng.NormFloat64() * 100
					a, b := rng.NormFloat64()*50, rng.NormFloat64()*50
					lo[i], hi[i] = math.Min(a, b), math.Max(a, b)
				}

				bv := ss.NewBoundedVector[float64, ss.D4]().
					SetValue(ss.NewVector[float64, ss.D4](val...)).
					SetLower(ss.NewVector[float64, ss.D4](lo...)).
					SetUpper(ss.NewVector[float64, ss.D4](hi...)).
					Clamp()

				got := bv.Value().Slice()
				for i := range got {
					Expect(got[i]).To(BeNumerically(">=", lo[i]))
					Expect(got[i]).To(BeNumerically("<=", hi[i]))
				}
			}
		})

		It("is idempotent", func() {
			bv := ss.BoundedFromScalars[float64, ss.D2](7, -1, 2).Clamp()
			once := bv.Value()

			bv.Clamp()

			Expect(bv.Value().Equal(once)).To(BeTrue())
		})

		It("settles inverted bounds on the upper limit", func() {
			bv := ss.NewBoundedVector[float64, ss.D3]().
				SetValue(ss.NewVector[float64, ss.D3](-10, 0, 10)).
				SetLower(ss.NewVector[float64, ss.D3](5, 5, 5)).
				SetUpper(ss.NewVector[float64, ss.D3](-5, -5, -5)).
				Clamp()

			Expect(bv.Value().Slice()).To(Equal([]float64{-5, -5, -5}))
		})

		It("leaves NaN components as NaN", func() {
			bv := ss.BoundedFromScalars[float64, ss.D2](math.NaN(), -1, 1).Clamp()

			for _, v := range bv.Value().Slice() {
				Expect(math.IsNaN(v)).To(BeTrue())
			}
		})
	})

	Describe("Update", func() {
		It("assigns and clamps in one call", func() {
			bv := ss.BoundedFromScalars[float64, ss.D2](0, -1, 1)

			bv.Update(ss.NewVector[float64, ss.D2](0.5, 3))

			Expect(bv.Value().Slice()).To(Equal([]float64{0.5, 1}))
		})
	})

	Describe("Clone", func() {
		It("is independent of the original", func() {
			orig := ss.BoundedFromScalars[float64, ss.D1](0, -1, 1)
			cp := orig.Clone()

			cp.Update(ss.NewVector[float64, ss.D1](0.75))

			Expect(orig.Value().At(0)).To(Equal(0.0))
			Expect(cp.Value().At(0)).To(Equal(0.75))
		})
	})
})
