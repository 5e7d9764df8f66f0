package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/audit"
	"github.com/frahmantamala/reputation-management/internal/auth"
	authPostgres "github.com/frahmantamala/reputation-management/internal/auth/postgres"
	"github.com/frahmantamala/reputation-management/internal/company"
	companyPostgres "github.com/frahmantamala/reputation-management/internal/company/postgres"
	"github.com/frahmantamala/reputation-management/internal/core/events"
	"github.com/frahmantamala/reputation-management/internal/feedback"
	feedbackPostgres "github.com/frahmantamala/reputation-management/internal/feedback/postgres"
	"github.com/frahmantamala/reputation-management/internal/iam"
	iamPostgres "github.com/frahmantamala/reputation-management/internal/iam/postgres"
	"github.com/frahmantamala/reputation-management/internal/ratelimit"
	"github.com/frahmantamala/reputation-management/internal/reputation"
	reputationPostgres "github.com/frahmantamala/reputation-management/internal/reputation/postgres"
	"github.com/frahmantamala/reputation-management/internal/transport"
	"github.com/frahmantamala/reputation-management/internal/transport/middleware"
	"github.com/frahmantamala/reputation-management/internal/transport/rest"
	"github.com/frahmantamala/reputation-management/internal/user"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Redis  *redis.Client
	Router *chi.Mux
	Logger *slog.Logger

	EventBus       *events.EventBus
	ReputationPool *reputation.Pool
	AuditBroker    *audit.AMQPPublisher
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	deps.ReputationPool.Start()

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.close()
			os.Exit(1)
		}
	}

	deps.close()
	deps.Logger.Info("Server stopped")
}

// close drains background work before releasing connections.
func (d *Dependencies) close() {
	d.ReputationPool.Shutdown()
	d.EventBus.Wait()

	if d.AuditBroker != nil {
		if err := d.AuditBroker.Close(); err != nil {
			d.Logger.Error("amqp close error", "error", err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
	if err := closeGorm(d.Gorm); err != nil {
		d.Logger.Error("gorm close error", "error", err)
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, lg, err := setup()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	redisClient, err := initRedis(config.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	deps := &Dependencies{
		Config:   config,
		DB:       db,
		Gorm:     gormDB,
		Redis:    redisClient,
		Router:   chi.NewRouter(),
		Logger:   lg,
		EventBus: events.NewEventBus(lg),
	}

	// audit fan-out
	audit.Subscribe(deps.EventBus, audit.LogHandler(lg))
	if config.Broker.URL != "" {
		broker, err := audit.NewAMQPPublisher(config.Broker.URL, config.Broker.AuditQueue, lg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect audit broker: %w", err)
		}
		deps.AuditBroker = broker
		audit.Subscribe(deps.EventBus, broker.Handle)
	} else {
		audit.Subscribe(deps.EventBus, audit.NewStore(gormDB).Handle)
	}
	auditSink := audit.NewBusSink(deps.EventBus, lg)

	// repositories
	userRepo := authPostgres.NewUserRepository(gormDB)
	companyRepo := companyPostgres.NewCompanyRepository(gormDB)
	feedbackRepo := feedbackPostgres.NewFeedbackRepository(gormDB)
	consumerRepo := feedbackPostgres.NewConsumerRepository(gormDB)
	iamRepo := iamPostgres.NewIAMRepository(gormDB)
	reputationRepo := reputationPostgres.NewReputationRepository(gormDB)
	statsRepo := reputationPostgres.NewFeedbackStatsRepository(db)

	// services
	tokens := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  config.Security.AccessTokenSecret,
		RefreshSecret: config.Security.RefreshTokenSecret,
		AccessTTL:     config.Security.AccessTokenDuration,
		RefreshTTL:    config.Security.RefreshTokenDuration,
		Issuer:        "reputation-management",
	})
	cookies, err := auth.NewCookieManager(config.Security.Cookie, tokens.AccessTTL(), tokens.RefreshTTL())
	if err != nil {
		return nil, err
	}
	hasher := auth.NewPasswordHasher(config.Security.PasswordHasher, config.Security.BCryptCost)
	authService := auth.NewService(userRepo, tokens, hasher, auditSink, lg)

	checker := iam.NewChecker(iamRepo, lg)
	iamService := iam.NewService(iamRepo, checker, lg)
	companyService := company.NewService(companyRepo, companyRepo, lg)
	feedbackService := feedback.NewService(feedbackRepo, consumerRepo, companyRepo, companyRepo, deps.EventBus, lg)
	reputationService := reputation.NewService(reputationRepo, statsRepo, companyRepo, lg)
	userService := user.NewService(userRepo, checker, lg)

	// feedback changes trigger background recalculation
	deps.ReputationPool = reputation.NewPool(reputationService, reputation.PoolConfig{
		Workers:   config.ReputationWorker.Workers,
		QueueSize: config.ReputationWorker.QueueSize,
	}, lg)
	reputation.NewEventHandler(deps.ReputationPool, lg).RegisterEventHandlers(deps.EventBus)

	var limiter middleware.Limiter
	if config.RateLimit.Enabled {
		rlConfig := ratelimit.Config{
			Requests: config.RateLimit.Requests,
			Window:   config.RateLimit.Window,
		}
		if redisClient != nil {
			limiter = ratelimit.NewRedisLimiter(redisClient, rlConfig)
		} else {
			limiter = ratelimit.NewLocalLimiter(rlConfig)
		}
	}

	var cache redis.UniversalClient
	if redisClient != nil {
		cache = redisClient
	}

	baseHandler := transport.NewBaseHandler(lg)
	rest.RegisterAllRoutes(deps.Router, rest.Dependencies{
		Auth:       auth.NewHandler(baseHandler, authService, tokens, cookies),
		IAM:        iam.NewHandler(baseHandler, iamService),
		Company:    company.NewHandler(baseHandler, companyService),
		Feedback:   feedback.NewHandler(baseHandler, feedbackService),
		Reputation: reputation.NewHandler(baseHandler, reputationService),
		User:       user.NewHandler(baseHandler, userService),
		Health:     rest.NewHealthHandler(db, cache),

		Resolver: tokens,
		Checker:  checker,
		Limiter:  limiter,

		RateWindow:     config.RateLimit.Window,
		AllowedOrigins: config.Server.AllowedOrigins,
	}, lg)

	return deps, nil
}
