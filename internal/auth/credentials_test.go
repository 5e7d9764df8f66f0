package auth

import (
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/reputation-management/internal"
)

var _ = ginkgo.Describe("Credentials", func() {
	ginkgo.DescribeTable("NewEmail",
		func(raw, want string, code internal.ErrorCode) {
			email, err := NewEmail(raw)
			if code == "" {
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(email.String()).To(gomega.Equal(want))
				return
			}
			appErr := expectAppError(err, internal.ErrorTypeValidation)
			gomega.Expect(detailCode(appErr)).To(gomega.Equal(string(code)))
		},
		ginkgo.Entry("normalizes case and whitespace", "  John@Example.COM ", "john@example.com", internal.ErrorCode("")),
		ginkgo.Entry("empty", "   ", "", internal.ErrCodeEmailRequired),
		ginkgo.Entry("missing domain", "john@", "", internal.ErrCodeInvalidEmail),
		ginkgo.Entry("missing tld", "john@example", "", internal.ErrCodeInvalidEmail),
		ginkgo.Entry("inner whitespace", "jo hn@example.com", "", internal.ErrCodeInvalidEmail),
	)

	ginkgo.DescribeTable("NewPassword",
		func(raw string, code internal.ErrorCode) {
			_, err := NewPassword(raw)
			if code == "" {
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				return
			}
			appErr := expectAppError(err, internal.ErrorTypeValidation)
			gomega.Expect(detailCode(appErr)).To(gomega.Equal(string(code)))
		},
		ginkgo.Entry("exactly eight characters", "12345678", internal.ErrorCode("")),
		ginkgo.Entry("multibyte runes count once", "ççççççç1", internal.ErrorCode("")),
		ginkgo.Entry("blank", "  ", internal.ErrCodePasswordRequired),
		ginkgo.Entry("seven characters", "1234567", internal.ErrCodeInvalidPassword),
		ginkgo.Entry("over 72 bytes", strings.Repeat("a", 73), internal.ErrCodeInvalidPassword),
	)

	ginkgo.Describe("PasswordHasher", func() {
		var (
			bcryptHasher PasswordHasher
			argonHasher  PasswordHasher
		)

		ginkgo.BeforeEach(func() {
			bcryptHasher = &BcryptHasher{Cost: bcrypt.MinCost}
			argonHasher = &Argon2Hasher{Params: &argon2id.Params{
				Memory:      1024,
				Iterations:  1,
				Parallelism: 1,
				SaltLength:  16,
				KeyLength:   32,
			}}
		})

		ginkgo.It("should verify bcrypt hashes", func() {
			hash, err := bcryptHasher.Hash("password1")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(bcryptHasher.Compare("password1", hash)).To(gomega.BeTrue())
			gomega.Expect(bcryptHasher.Compare("password2", hash)).To(gomega.BeFalse())
		})

		ginkgo.It("should verify argon2id hashes", func() {
			hash, err := argonHasher.Hash("password1")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(hash).To(gomega.HavePrefix("$argon2id$"))
			gomega.Expect(argonHasher.Compare("password1", hash)).To(gomega.BeTrue())
			gomega.Expect(argonHasher.Compare("password2", hash)).To(gomega.BeFalse())
		})

		ginkgo.It("should accept hashes from the other algorithm", func() {
			bHash, err := bcryptHasher.Hash("password1")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			aHash, err := argonHasher.Hash("password1")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(argonHasher.Compare("password1", bHash)).To(gomega.BeTrue())
			gomega.Expect(bcryptHasher.Compare("password1", aHash)).To(gomega.BeTrue())
		})

		ginkgo.It("should pick the hasher by name", func() {
			gomega.Expect(NewPasswordHasher(HasherArgon2id, 0)).To(gomega.BeAssignableToTypeOf(&Argon2Hasher{}))

			hasher := NewPasswordHasher(HasherBcrypt, 1)
			gomega.Expect(hasher).To(gomega.BeAssignableToTypeOf(&BcryptHasher{}))
			gomega.Expect(hasher.(*BcryptHasher).Cost).To(gomega.Equal(bcrypt.DefaultCost))
		})
	})
})
