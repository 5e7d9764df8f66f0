package company_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/company"
)

var _ = Describe("CNPJ", func() {
	DescribeTable("NewCNPJ",
		func(raw, want string, valid bool) {
			cnpj, err := company.NewCNPJ(raw)
			if !valid {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(cnpj.String()).To(Equal(want))
		},
		Entry("digits only", "11222333000181", "11222333000181", true),
		Entry("formatted", "11.222.333/0001-81", "11222333000181", true),
		Entry("another valid number", "45997418000153", "45997418000153", true),
		Entry("third valid number", "11444777000161", "11444777000161", true),
		Entry("wrong check digit", "12345678000190", "", false),
		Entry("repeated digits", "11111111111111", "", false),
		Entry("too short", "1122233300018", "", false),
		Entry("too long", "112223330001810", "", false),
		Entry("empty", "", "", false),
	)

	It("should reject every repeated-digit number", func() {
		for d := '0'; d <= '9'; d++ {
			raw := strings.Repeat(string(d), 14)

			_, err := company.NewCNPJ(raw)

			Expect(err).To(HaveOccurred(), raw)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			details, ok := appErr.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidCNPJ)), raw)
		}
	})

	It("should reject any change to either check digit", func() {
		for _, valid := range []string{"11222333000181", "45997418000153", "11444777000161", "12345678000195"} {
			for _, pos := range []int{12, 13} {
				for d := byte('0'); d <= '9'; d++ {
					if valid[pos] == d {
						continue
					}
					raw := []byte(valid)
					raw[pos] = d

					_, err := company.NewCNPJ(string(raw))

					Expect(err).To(HaveOccurred(), string(raw))
				}
			}
		}
	})

	It("should format as 00.000.000/0000-00", func() {
		cnpj, err := company.NewCNPJ("11222333000181")
		Expect(err).NotTo(HaveOccurred())

		Expect(cnpj.Formatted()).To(Equal("11.222.333/0001-81"))
	})

	It("should know every category", func() {
		Expect(company.IsValidCategory("FOOD_AND_BEVERAGE")).To(BeTrue())
		Expect(company.IsValidCategory("food_and_beverage")).To(BeFalse())
		Expect(company.CategoryNames()).To(ContainElement("OTHER"))
	})
})
