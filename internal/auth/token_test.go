package auth

import (
	"errors"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/reputation-management/internal"
)

var _ = ginkgo.Describe("TokenService", func() {
	var (
		tokens  *TokenService
		payload TokenPayload
	)

	ginkgo.BeforeEach(func() {
		tokens = newTestTokenService(nil)
		payload = TokenPayload{Subject: "user-1", Email: "a@b.co", Roles: []string{RoleConsumer}}
	})

	ginkgo.It("should round-trip an access token", func() {
		raw, err := tokens.GenerateAccessToken(payload)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		claims, err := tokens.VerifyAccessToken(raw)

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(claims.Subject).To(gomega.Equal("user-1"))
		gomega.Expect(claims.Email).To(gomega.Equal("a@b.co"))
		gomega.Expect(claims.Roles).To(gomega.Equal([]string{RoleConsumer}))
		gomega.Expect(claims.Type).To(gomega.Equal(TokenTypeAccess))
		gomega.Expect(claims.Issuer).To(gomega.Equal("test"))
		gomega.Expect(claims.ID).NotTo(gomega.BeEmpty())
	})

	ginkgo.It("should issue distinct tokens for the same payload", func() {
		first, err := tokens.GenerateRefreshToken(payload)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		second, err := tokens.GenerateRefreshToken(payload)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(first).NotTo(gomega.Equal(second))
	})

	ginkgo.It("should not accept a refresh token as an access token", func() {
		raw, err := tokens.GenerateRefreshToken(payload)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = tokens.VerifyAccessToken(raw)

		gomega.Expect(errors.Is(err, internal.ErrTokenInvalid)).To(gomega.BeTrue())
	})

	ginkgo.It("should reject a token of the wrong type signed with the right secret", func() {
		shared := NewTokenService(TokenConfig{
			AccessSecret:  "same",
			RefreshSecret: "same",
			AccessTTL:     time.Minute,
			RefreshTTL:    time.Hour,
		})
		raw, err := shared.GenerateRefreshToken(payload)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = shared.VerifyAccessToken(raw)

		gomega.Expect(errors.Is(err, internal.ErrInvalidTokenType)).To(gomega.BeTrue())
	})

	ginkgo.It("should report expiry distinctly", func() {
		past := newTestTokenService(func() time.Time { return time.Now().Add(-time.Hour) })
		raw, err := past.GenerateAccessToken(payload)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = tokens.VerifyAccessToken(raw)

		gomega.Expect(errors.Is(err, internal.ErrTokenExpired)).To(gomega.BeTrue())
	})

	ginkgo.It("should reject a token without a subject", func() {
		raw, err := tokens.GenerateAccessToken(TokenPayload{Email: "a@b.co"})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = tokens.VerifyAccessToken(raw)

		gomega.Expect(errors.Is(err, internal.ErrTokenInvalid)).To(gomega.BeTrue())
	})

	ginkgo.It("should resolve a principal from an access token", func() {
		raw, err := tokens.GenerateAccessToken(payload)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		principal, err := tokens.ResolvePrincipal(raw)

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(principal).To(gomega.Equal(internal.Principal{
			UserID: "user-1",
			Email:  "a@b.co",
			Roles:  []string{RoleConsumer},
		}))
	})

	ginkgo.It("should hash refresh tokens deterministically to hex sha-256", func() {
		gomega.Expect(HashRefreshToken("abc")).To(gomega.Equal(HashRefreshToken("abc")))
		gomega.Expect(HashRefreshToken("abc")).To(gomega.HaveLen(64))
		gomega.Expect(HashRefreshToken("abc")).NotTo(gomega.Equal(HashRefreshToken("abd")))
	})
})
