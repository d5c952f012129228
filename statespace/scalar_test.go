package statespace_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	ss "github.com/san-kum/ltisim/statespace"
)

var _ = Describe("Convert", func() {
	It("passes ordinary values through", func() {
		v, err := ss.Convert[float64](-3.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(-3.5))

		f, err := ss.Convert[float32](0.25)
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(float32(0.25)))
	})

	It("rejects finite literals that overflow float32", func() {
		_, err := ss.Convert[float32](9e99)
		Expect(err).To(MatchError(ss.ErrNotRepresentable))

		_, err = ss.Convert[float32](-1e39)
		Expect(err).To(MatchError(ss.ErrNotRepresentable))
	})

	It("accepts the same literals for float64", func() {
		v, err := ss.Convert[float64](9e99)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(9e99))
	})

	It("keeps infinities", func() {
		f, err := ss.Convert[float32](math.Inf(-1))
		Expect(err).NotTo(HaveOccurred())
		Expect(math.IsInf(float64(f), -1)).To(BeTrue())
	})
})
