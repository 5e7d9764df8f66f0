package middleware

import (
	"net/http"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("sensitive field filtering", func() {
	ginkgo.It("should mask secrets at any depth of a JSON body", func() {
		// Given
		body := []byte(`{"email":"a@b.com","password":"hunter2","company":{"cnpj":"11222333000181","name":"Acme"}}`)

		// When
		filtered := filterSensitiveBody(body)

		// Then
		gomega.Expect(filtered).To(gomega.MatchJSON(`{"email":"a@b.com","password":"[FILTERED]","company":{"cnpj":"[FILTERED]","name":"Acme"}}`))
	})

	ginkgo.It("should mask non-JSON bodies that mention secrets", func() {
		gomega.Expect(filterSensitiveBody([]byte("token=abc"))).To(gomega.Equal("[FILTERED - Contains sensitive data]"))
		gomega.Expect(filterSensitiveBody([]byte("hello"))).To(gomega.Equal("hello"))
		gomega.Expect(filterSensitiveBody(nil)).To(gomega.BeEmpty())
	})

	ginkgo.It("should mask credential headers", func() {
		// Given
		headers := http.Header{}
		headers.Set("Authorization", "Bearer abc")
		headers.Set("Cookie", "access_token=abc")
		headers.Set("Accept", "application/json")

		// When
		filtered := filterSensitiveHeaders(headers)

		// Then
		gomega.Expect(filtered).To(gomega.HaveKeyWithValue("Authorization", "[FILTERED]"))
		gomega.Expect(filtered).To(gomega.HaveKeyWithValue("Cookie", "[FILTERED]"))
		gomega.Expect(filtered).To(gomega.HaveKeyWithValue("Accept", "application/json"))
	})
})
