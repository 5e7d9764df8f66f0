package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/transport"
)

type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var _ = ginkgo.Describe("AuthHandler", func() {
	var (
		handler  *Handler
		mockRepo *mockUserRepository
		tokens   *TokenService
	)

	ginkgo.BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		mockRepo = newMockUserRepository()
		tokens = newTestTokenService(nil)
		service := NewService(mockRepo, tokens, &BcryptHasher{Cost: bcrypt.MinCost}, &recordingSink{}, logger)
		cookies, err := NewCookieManager(internal.CookieConfig{Secure: true, SameSite: "strict"}, tokens.AccessTTL(), tokens.RefreshTTL())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		handler = NewHandler(transport.NewBaseHandler(logger), service, tokens, cookies)
	})

	post := func(h http.HandlerFunc, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	register := func() *httptest.ResponseRecorder {
		rec := post(handler.Register, "/api/v1/auth/register",
			`{"email":"jane@example.com","password":"password1","name":"Jane","userType":"consumer"}`)
		gomega.ExpectWithOffset(1, rec.Code).To(gomega.Equal(http.StatusCreated))
		return rec
	}

	ginkgo.Describe("Register", func() {
		ginkgo.It("should create the account, return the pair and set httpOnly cookies", func() {
			rec := register()

			var resp AuthResponse
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(gomega.Succeed())
			gomega.Expect(resp.Message).To(gomega.Equal("User registered successfully"))
			gomega.Expect(resp.User.Email).To(gomega.Equal("jane@example.com"))
			gomega.Expect(resp.Tokens.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(rec.Body.String()).NotTo(gomega.ContainSubstring("passwordHash"))

			access := findCookie(rec, AccessTokenCookie)
			gomega.Expect(access).NotTo(gomega.BeNil())
			gomega.Expect(access.HttpOnly).To(gomega.BeTrue())
			gomega.Expect(access.Secure).To(gomega.BeTrue())
			gomega.Expect(access.Path).To(gomega.Equal("/"))
			gomega.Expect(access.MaxAge).To(gomega.Equal(900))
			gomega.Expect(findCookie(rec, RefreshTokenCookie).Value).To(gomega.Equal(resp.Tokens.RefreshToken))
		})

		ginkgo.It("should reject an unknown user type with 400", func() {
			rec := post(handler.Register, "/api/v1/auth/register",
				`{"email":"jane@example.com","password":"password1","userType":"admin"}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should answer a duplicate email with 409", func() {
			register()

			rec := post(handler.Register, "/api/v1/auth/register",
				`{"email":"JANE@example.com","password":"password1","userType":"consumer"}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusConflict))
			var env errorEnvelope
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &env)).To(gomega.Succeed())
			gomega.Expect(env.Error.Code).To(gomega.Equal(string(internal.ErrCodeEmailAlreadyRegistered)))
		})
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("should log in with valid credentials", func() {
			register()

			rec := post(handler.Login, "/api/v1/auth/login", `{"email":"jane@example.com","password":"password1"}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			var resp AuthResponse
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(gomega.Succeed())
			gomega.Expect(resp.Message).To(gomega.Equal("Login successful"))
			gomega.Expect(findCookie(rec, AccessTokenCookie)).NotTo(gomega.BeNil())
		})

		ginkgo.It("should answer a malformed body like bad credentials", func() {
			rec := post(handler.Login, "/api/v1/auth/login", `{not json`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			var env errorEnvelope
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &env)).To(gomega.Succeed())
			gomega.Expect(env.Error.Code).To(gomega.Equal(string(internal.ErrCodeInvalidCredentials)))
		})

		ginkgo.It("should return 401 for a wrong password", func() {
			register()

			rec := post(handler.Login, "/api/v1/auth/login", `{"email":"jane@example.com","password":"nope-nope"}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("Refresh", func() {
		ginkgo.It("should rotate using the refresh cookie", func() {
			reg := register()

			rec := post(handler.Refresh, "/api/v1/auth/refresh", "", findCookie(reg, RefreshTokenCookie))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			var resp AuthResponse
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(gomega.Succeed())
			gomega.Expect(resp.Message).To(gomega.Equal("Tokens refreshed successfully"))
			gomega.Expect(resp.User).To(gomega.BeNil())
			gomega.Expect(findCookie(rec, RefreshTokenCookie).Value).NotTo(gomega.Equal(findCookie(reg, RefreshTokenCookie).Value))
		})

		ginkgo.It("should fall back to the body", func() {
			reg := register()
			var resp AuthResponse
			gomega.Expect(json.Unmarshal(reg.Body.Bytes(), &resp)).To(gomega.Succeed())

			rec := post(handler.Refresh, "/api/v1/auth/refresh", `{"refresh_token":"`+resp.Tokens.RefreshToken+`"}`)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should return 401 without any token", func() {
			rec := post(handler.Refresh, "/api/v1/auth/refresh", "")

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("Logout", func() {
		ginkgo.It("should revoke the refresh token and clear cookies", func() {
			reg := register()
			refresh := findCookie(reg, RefreshTokenCookie)

			rec := post(handler.Logout, "/api/v1/auth/logout", "", refresh)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"ok":true`))
			gomega.Expect(findCookie(rec, AccessTokenCookie).MaxAge).To(gomega.BeNumerically("<", 0))
			gomega.Expect(findCookie(rec, RefreshTokenCookie).MaxAge).To(gomega.BeNumerically("<", 0))

			again := post(handler.Refresh, "/api/v1/auth/refresh", "", refresh)
			gomega.Expect(again.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should identify the caller by bearer token", func() {
			reg := register()
			var resp AuthResponse
			gomega.Expect(json.Unmarshal(reg.Body.Bytes(), &resp)).To(gomega.Succeed())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
			req.Header.Set("Authorization", "Bearer "+resp.Tokens.AccessToken)
			rec := httptest.NewRecorder()
			handler.Logout(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should clear cookies and return 401 when the caller is unknown", func() {
			rec := post(handler.Logout, "/api/v1/auth/logout", "")

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(findCookie(rec, AccessTokenCookie)).NotTo(gomega.BeNil())
		})
	})
})
