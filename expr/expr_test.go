package expr

import (
	"math"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Evaluate", func() {
	DescribeTable("arithmetic",
		func(src string, want float64) {
			got, err := Evaluate(src, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNumerically("~", want, 1e-12))
		},
		Entry("precedence", "1 + 2 * 3", 7.0),
		Entry("parentheses", "(1 + 2) * 3", 9.0),
		Entry("left-associative minus", "10 - 4 - 3", 3.0),
		Entry("left-associative divide", "24 / 4 / 3", 2.0),
		Entry("modulo", "10 % 4", 2.0),
		Entry("right-associative power", "2 ^ 3 ^ 2", 512.0),
		Entry("double star power", "2 ** 10", 1024.0),
		Entry("unary minus binds looser than power", "-2 ^ 2", -4.0),
		Entry("negative exponent", "2 ^ -1", 0.5),
		Entry("unary plus", "+3", 3.0),
		Entry("double negation", "--3", 3.0),
		Entry("scientific notation", "1.5e3 + .5", 1500.5),
		Entry("constants", "pi - e", math.Pi-math.E),
		Entry("variadic max", "max(1, 7, 3)", 7.0),
		Entry("variadic min", "min(4, -2)", -2.0),
		Entry("two-argument function", "hypot(3, 4)", 5.0),
		Entry("nested calls", "sqrt(abs(-16)) + round(2.6)", 7.0),
		Entry("trigonometry", "atan2(1, 1) * 4", math.Pi),
	)

	Context("with variables", func() {
		It("should compute spindle speed from cutting speed", func() {
			e, err := Parse("1000 * V / (pi * D)")
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Variables()).To(Equal([]string{"D", "V"}))

			rpm, err := e.Eval(map[string]float64{"V": 200, "D": 12})
			Expect(err).NotTo(HaveOccurred())
			Expect(rpm).To(BeNumerically("~", 5305.16, 0.01))
		})

		It("should reuse a compiled expression", func() {
			e, err := Parse("fz * z * n")
			Expect(err).NotTo(HaveOccurred())
			for _, n := range []float64{1000, 2000, 3000} {
				vf, err := e.Eval(map[string]float64{"fz": 0.1, "z": 4, "n": n})
				Expect(err).NotTo(HaveOccurred())
				Expect(vf).To(BeNumerically("~", 0.4*n, 1e-9))
			}
		})

		It("should not let variables shadow constants", func() {
			got, err := Evaluate("pi", map[string]float64{"pi": 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(math.Pi))
		})

		It("should reject an unbound variable", func() {
			_, err := Evaluate("a + b", map[string]float64{"a": 1})
			Expect(err).To(MatchError(ErrUnknownIdentifier))
			Expect(err.Error()).To(ContainSubstring(`"b"`))
		})

		It("should reject a non-finite variable", func() {
			_, err := Evaluate("a * 2", map[string]float64{"a": math.Inf(1)})
			Expect(err).To(MatchError(ErrNonFinite))
		})
	})

	Context("with non-finite results", func() {
		It("should reject division by zero", func() {
			_, err := Evaluate("1 / 0", nil)
			Expect(err).To(MatchError(ErrNonFinite))
		})

		It("should reject a domain error", func() {
			_, err := Evaluate("sqrt(-1)", nil)
			Expect(err).To(MatchError(ErrNonFinite))
		})

		It("should reject overflow", func() {
			_, err := Evaluate("10 ^ 400", nil)
			Expect(err).To(MatchError(ErrNonFinite))
		})
	})
})

var _ = Describe("Parse", func() {
	It("should reject functions outside the allow-list", func() {
		_, err := Parse("system(1)")
		Expect(err).To(MatchError(ErrUnknownFunction))
	})

	It("should check arity", func() {
		_, err := Parse("atan2(1)")
		Expect(err).To(MatchError(ErrArity))
		Expect(err.Error()).To(ContainSubstring("2 arguments"))

		_, err = Parse("sqrt(1, 2)")
		Expect(err).To(MatchError(ErrArity))

		_, err = Parse("max()")
		Expect(err).To(MatchError(ErrArity))
	})

	It("should reject source over the length limit", func() {
		_, err := Parse(strings.Repeat("1+", MaxSourceLength) + "1")
		Expect(err).To(MatchError(ErrTooLong))
	})

	It("should reject nesting over the depth limit", func() {
		src := strings.Repeat("(", MaxDepth+1) + "1" + strings.Repeat(")", MaxDepth+1)
		_, err := Parse(src)
		Expect(err).To(MatchError(ErrTooDeep))
	})

	It("should accept nesting just inside the depth limit", func() {
		src := strings.Repeat("(", MaxDepth-2) + "1" + strings.Repeat(")", MaxDepth-2)
		got, err := Evaluate(src, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(1.0))
	})

	DescribeTable("syntax errors",
		func(src string) {
			_, err := Parse(src)
			var se *SyntaxError
			Expect(err).To(BeAssignableToTypeOf(se))
		},
		Entry("empty", ""),
		Entry("dangling operator", "1 +"),
		Entry("unbalanced open", "(1 + 2"),
		Entry("unbalanced close", "1 + 2)"),
		Entry("adjacent numbers", "1 2"),
		Entry("bad character", "1 $ 2"),
		Entry("assignment", "a = 1"),
		Entry("bad exponent", "1e+"),
		Entry("string literal", `"rm -rf"`),
		Entry("trailing comma", "max(1,)"),
	)

	It("should report the offset of a syntax error", func() {
		_, err := Parse("1 + * 2")
		var se *SyntaxError
		Expect(err).To(BeAssignableToTypeOf(se))
		Expect(err.(*SyntaxError).Offset).To(Equal(4))
	})

	It("should list the allowed functions", func() {
		Expect(Functions()).To(ContainElements("sin", "sqrt", "hypot", "log10"))
		Expect(Functions()).To(HaveLen(20))
	})
})
