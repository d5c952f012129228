package statespace_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	ss "github.com/san-kum/ltisim/statespace"
)

var _ = Describe("Matrix", func() {
	It("stores elements row-major", func() {
		m := ss.NewMatrix[float64, ss.D2, ss.D3](1, 2, 3, 4, 5, 6)

		Expect(m.Rows()).To(Equal(2))
		Expect(m.Cols()).To(Equal(3))
		Expect(m.At(0, 2)).To(Equal(3.0))
		Expect(m.At(1, 0)).To(Equal(4.0))
	})

	It("builds rectangular identities", func() {
		m := ss.Identity[float64, ss.D2, ss.D3]()
		Expect(m.RawRowMajor()).To(Equal([]float64{1, 0, 0, 0, 1, 0}))

		tall := ss.Identity[float32, ss.D3, ss.D1]()
		Expect(tall.RawRowMajor()).To(Equal([]float32{1, 0, 0}))
	})

	It("scales without touching the receiver", func() {
		m := ss.Identity[float64, ss.D2, ss.D2]()
		s := m.Scale(-1)

		Expect(s.RawRowMajor()).To(Equal([]float64{-1, 0, 0, -1}))
		Expect(m.RawRowMajor()).To(Equal([]float64{1, 0, 0, 1}))
	})

	It("converts to a gonum Dense", func() {
		m := ss.NewMatrix[float32, ss.D2, ss.D2](1, 2, 3, 4)
		d := m.Dense()

		r, c := d.Dims()
		Expect(r).To(Equal(2))
		Expect(c).To(Equal(2))
		Expect(d.At(1, 0)).To(Equal(3.0))

		Expect(ss.ZeroMatrix[float64, ss.D2, ss.D0]().Dense()).To(BeNil())
	})

	It("panics on the wrong element count", func() {
		Expect(func() {
			ss.NewMatrix[float64, ss.D2, ss.D2](1, 2, 3)
		}).To(PanicWith(MatchError(ss.ErrShape)))

		Expect(func() {
			ss.NewVector[float64, ss.D3](1, 2)
		}).To(PanicWith(MatchError(ss.ErrShape)))
	})

	It("panics on out-of-range indices", func() {
		m := ss.ZeroMatrix[float64, ss.D2, ss.D2]()
		Expect(func() { m.At(2, 0) }).To(Panic())
	})
})
