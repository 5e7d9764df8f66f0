package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/reputation-management/internal/audit"
	companyPostgres "github.com/frahmantamala/reputation-management/internal/company/postgres"
	"github.com/frahmantamala/reputation-management/internal/reputation"
	reputationPostgres "github.com/frahmantamala/reputation-management/internal/reputation/postgres"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers: periodic reputation recalculation and the audit queue consumer.`,
}

var reputationWorkerCmd = &cobra.Command{
	Use:   "reputation",
	Short: "Start the reputation recalculation worker pool",
	Long:  `Periodically recalculate reputation metrics for every company with active feedback`,
	Run: func(cmd *cobra.Command, args []string) {
		startReputationWorker()
	},
}

var auditWorkerCmd = &cobra.Command{
	Use:   "audit",
	Short: "Consume audit events from the broker",
	Long:  `Persist audit events published to the broker queue into audit_logs`,
	Run: func(cmd *cobra.Command, args []string) {
		startAuditWorker()
	},
}

var (
	maxWorkers    int
	jobQueueSize  int
	sweepInterval time.Duration
)

func startReputationWorker() {
	config, logger, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := initGorm(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize gorm: %v\n", err)
		os.Exit(1)
	}
	defer closeGorm(gormDB)

	stats := reputationPostgres.NewFeedbackStatsRepository(db)
	service := reputation.NewService(
		reputationPostgres.NewReputationRepository(gormDB),
		stats,
		companyPostgres.NewCompanyRepository(gormDB),
		logger,
	)

	// Use command line flags if provided, otherwise use config values
	poolConfig := reputation.PoolConfig{
		Workers:   getIntFlag(maxWorkers, config.ReputationWorker.Workers),
		QueueSize: getIntFlag(jobQueueSize, config.ReputationWorker.QueueSize),
	}
	interval := config.ReputationWorker.Interval
	if sweepInterval > 0 {
		interval = sweepInterval
	}

	logger.Info("starting reputation worker",
		"max_workers", poolConfig.Workers,
		"job_queue_size", poolConfig.QueueSize,
		"interval", interval)

	pool := reputation.NewPool(service, poolConfig, logger)
	pool.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = reputation.NewScheduler(pool, stats, interval, logger).Run(ctx)
	}()

	logger.Info("reputation worker is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	logger.Info("received signal, shutting down reputation worker")
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		logger.Info("reputation worker pool shutdown complete")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout reached, forcing exit")
	}
}

func startAuditWorker() {
	config, logger, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if config.Broker.URL == "" {
		fmt.Fprintln(os.Stderr, "broker.url is not configured")
		os.Exit(1)
	}

	gormDB, err := initGorm(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize gorm: %v\n", err)
		os.Exit(1)
	}
	defer closeGorm(gormDB)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := audit.NewStore(gormDB)
	consumer := audit.NewAMQPConsumer(config.Broker.URL, config.Broker.AuditQueue, logger)
	if err := consumer.Run(ctx, store.Save); err != nil {
		logger.Error("audit consumer stopped", "error", err)
		return
	}
	logger.Info("audit consumer shutdown complete")
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	reputationWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	reputationWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	reputationWorkerCmd.Flags().DurationVar(&sweepInterval, "interval", 0, "Sweep interval (overrides config)")

	workerCmd.AddCommand(reputationWorkerCmd)
	workerCmd.AddCommand(auditWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
