package internal_test

import (
	"net/http"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/reputation-management/internal"
)

var _ = Describe("Config", func() {
	setenv := func(key, value string) {
		previous, had := os.LookupEnv(key)
		Expect(os.Setenv(key, value)).To(Succeed())
		DeferCleanup(func() {
			if had {
				os.Setenv(key, previous)
				return
			}
			os.Unsetenv(key)
		})
	}

	validConfig := func() *internal.Config {
		cfg := internal.LoadConfigFromEnv()
		cfg.Security.AccessTokenSecret = "access"
		cfg.Security.RefreshTokenSecret = "refresh"
		return cfg
	}

	It("should load defaults from the environment", func() {
		setenv("HTTP_PORT", "9090")
		setenv("JWT_ACCESS_TTL", "10m")
		setenv("RATE_LIMIT_REQUESTS", "not-a-number")

		cfg := internal.LoadConfigFromEnv()

		Expect(cfg.Server.Port).To(Equal(9090))
		Expect(cfg.Security.AccessTokenDuration).To(Equal(10 * time.Minute))
		Expect(cfg.RateLimit.Requests).To(Equal(10))
		Expect(cfg.ReputationWorker.Interval).To(Equal(time.Hour))
		Expect(cfg.Security.Cookie.Secure).To(BeTrue())
	})

	It("should accept a complete configuration", func() {
		Expect(validConfig().Validate()).To(Succeed())
	})

	It("should require distinct token secrets", func() {
		cfg := validConfig()
		cfg.Security.RefreshTokenSecret = cfg.Security.AccessTokenSecret

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("must differ")))
	})

	It("should collect every failing section", func() {
		cfg := validConfig()
		cfg.Security.AccessTokenSecret = ""
		cfg.Database.MaxIdleConns = cfg.Database.MaxOpenConns + 1
		cfg.Observability.Logging.Level = "verbose"

		err := cfg.Validate()

		Expect(err).To(MatchError(ContainSubstring("security config")))
		Expect(err).To(MatchError(ContainSubstring("database config")))
		Expect(err).To(MatchError(ContainSubstring("logging config")))
	})

	It("should validate the rate limit only when enabled", func() {
		cfg := validConfig()
		cfg.RateLimit.Requests = 0

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("rate limit config")))

		cfg.RateLimit.Enabled = false
		Expect(cfg.Validate()).To(Succeed())
	})

	DescribeTable("SameSiteMode",
		func(value string, want http.SameSite, valid bool) {
			mode, err := internal.CookieConfig{SameSite: value}.SameSiteMode()
			if !valid {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(mode).To(Equal(want))
		},
		Entry("empty defaults to strict", "", http.SameSiteStrictMode, true),
		Entry("lax", "Lax", http.SameSiteLaxMode, true),
		Entry("none", "none", http.SameSiteNoneMode, true),
		Entry("unknown", "sometimes", http.SameSiteDefaultMode, false),
	)
})
