package reputation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/reputation-management/internal"
)

var ErrQueueFull = errors.New("reputation recalculation queue full")

type RecalculationJob struct {
	CompanyID   string
	SaveHistory bool
}

type Worker struct {
	ID         int
	WorkerPool chan chan RecalculationJob
	JobChannel chan RecalculationJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan RecalculationJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan RecalculationJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(context.Context, RecalculationJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing job", "worker_id", w.ID, "company_id", job.CompanyID)
				processFunc(ctx, job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type PoolConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

type Calculator interface {
	CalculateReputation(ctx context.Context, in CalculateInput) (*Metrics, error)
}

// Pool recalculates company reputation in the background.
type Pool struct {
	calculator Calculator
	logger     *slog.Logger

	jobQueue   chan RecalculationJob
	workerPool chan chan RecalculationJob
	maxWorkers int
	jobTimeout time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewPool(calculator Calculator, config PoolConfig, logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.Workers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	jobTimeout := config.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Second
	}

	return &Pool{
		calculator: calculator,
		logger:     logger,
		maxWorkers: maxWorkers,
		jobTimeout: jobTimeout,
		jobQueue:   make(chan RecalculationJob, queueSize),
		workerPool: make(chan chan RecalculationJob, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (p *Pool) Start() {
	p.once.Do(func() {
		for i := 0; i < p.maxWorkers; i++ {
			worker := NewWorker(i, p.workerPool, p.logger)
			worker.Start(p.ctx, &p.wg, p.process)
		}

		p.wg.Add(1)
		go p.dispatch()

		p.logger.Info("reputation worker pool started",
			"max_workers", p.maxWorkers,
			"queue_size", cap(p.jobQueue))
	})
}

func (p *Pool) dispatch() {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			select {
			case jobChannel := <-p.workerPool:
				select {
				case jobChannel <- job:
				case <-p.ctx.Done():
					p.logger.Info("dispatcher shutting down")
					return
				}
			case <-p.ctx.Done():
				p.logger.Info("dispatcher shutting down")
				return
			}
		case <-p.ctx.Done():
			p.logger.Info("dispatcher shutting down")
			return
		}
	}
}

// Enqueue never blocks; a full queue is reported as ErrQueueFull.
func (p *Pool) Enqueue(job RecalculationJob) error {
	select {
	case <-p.ctx.Done():
		return fmt.Errorf("reputation pool stopped: %w", p.ctx.Err())
	default:
	}

	select {
	case p.jobQueue <- job:
		p.logger.Debug("recalculation job queued",
			"company_id", job.CompanyID,
			"queue_length", len(p.jobQueue))
		return nil
	default:
		p.logger.Warn("recalculation queue full, dropping job",
			"company_id", job.CompanyID,
			"queue_capacity", cap(p.jobQueue))
		return ErrQueueFull
	}
}

func (p *Pool) Shutdown() {
	p.logger.Info("shutting down reputation worker pool")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("reputation worker pool shutdown complete")
}

func (p *Pool) process(ctx context.Context, job RecalculationJob) {
	ctx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()

	metrics, err := p.calculator.CalculateReputation(ctx, CalculateInput{
		CompanyID:   job.CompanyID,
		SaveHistory: job.SaveHistory,
	})
	if err != nil {
		if errors.Is(err, internal.ErrNoFeedback) {
			p.logger.Debug("no active feedback, skipping recalculation", "company_id", job.CompanyID)
			return
		}
		p.logger.Error("reputation recalculation failed", "company_id", job.CompanyID, "error", err)
		return
	}

	p.logger.Debug("reputation recalculation finished",
		"company_id", job.CompanyID,
		"average_rating", metrics.AverageRating)
}

// Scheduler periodically enqueues every company that has active feedback.
type Scheduler struct {
	pool     *Pool
	source   FeedbackStatsSource
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(pool *Pool, source FeedbackStatsSource, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		pool:     pool,
		source:   source,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("reputation sweep failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Sweep enqueues one job per company and reports how many were queued.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	companyIDs, err := s.source.CompanyIDsWithFeedback(ctx)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, id := range companyIDs {
		if err := s.pool.Enqueue(RecalculationJob{CompanyID: id, SaveHistory: true}); err != nil {
			s.logger.Warn("failed to enqueue recalculation", "company_id", id, "error", err)
			continue
		}
		queued++
	}

	s.logger.Info("reputation sweep queued jobs", "companies", len(companyIDs), "queued", queued)
	return queued, nil
}
