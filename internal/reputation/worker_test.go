package reputation_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/company"
	"github.com/frahmantamala/reputation-management/internal/core/events"
	"github.com/frahmantamala/reputation-management/internal/reputation"
)

type recordingCalculator struct {
	mu    sync.Mutex
	calls []reputation.CalculateInput
	block chan struct{}
	err   error
}

func (c *recordingCalculator) CalculateReputation(ctx context.Context, in reputation.CalculateInput) (*reputation.Metrics, error) {
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c.mu.Lock()
	c.calls = append(c.calls, in)
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return &reputation.Metrics{CompanyID: in.CompanyID, AverageRating: 4}, nil
}

func (c *recordingCalculator) companies() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.calls))
	for _, call := range c.calls {
		out = append(out, call.CompanyID)
	}
	return out
}

// notifyingCalculator reports every finished calculation on done.
type notifyingCalculator struct {
	reputation.Calculator
	done chan error
}

func (c *notifyingCalculator) CalculateReputation(ctx context.Context, in reputation.CalculateInput) (*reputation.Metrics, error) {
	metrics, err := c.Calculator.CalculateReputation(ctx, in)
	c.done <- err
	return metrics, err
}

var _ = Describe("Pool", func() {
	var calculator *recordingCalculator

	BeforeEach(func() {
		calculator = &recordingCalculator{}
	})

	It("should process queued jobs", func() {
		pool := reputation.NewPool(calculator, reputation.PoolConfig{Workers: 2, QueueSize: 10}, testLogger())
		pool.Start()
		defer pool.Shutdown()

		Expect(pool.Enqueue(reputation.RecalculationJob{CompanyID: "acme", SaveHistory: true})).To(Succeed())
		Expect(pool.Enqueue(reputation.RecalculationJob{CompanyID: "garage", SaveHistory: true})).To(Succeed())

		Eventually(calculator.companies).Should(ConsistOf("acme", "garage"))
		Expect(calculator.calls[0].SaveHistory).To(BeTrue())
	})

	It("should keep running when a job fails", func() {
		calculator.err = internal.ErrNoFeedback
		pool := reputation.NewPool(calculator, reputation.PoolConfig{Workers: 1, QueueSize: 10}, testLogger())
		pool.Start()
		defer pool.Shutdown()

		Expect(pool.Enqueue(reputation.RecalculationJob{CompanyID: "quiet"})).To(Succeed())
		Expect(pool.Enqueue(reputation.RecalculationJob{CompanyID: "acme"})).To(Succeed())

		Eventually(calculator.companies).Should(HaveLen(2))
	})

	It("should drop jobs when the queue is full", func() {
		pool := reputation.NewPool(calculator, reputation.PoolConfig{Workers: 1, QueueSize: 1}, testLogger())

		Expect(pool.Enqueue(reputation.RecalculationJob{CompanyID: "acme"})).To(Succeed())
		err := pool.Enqueue(reputation.RecalculationJob{CompanyID: "garage"})

		Expect(errors.Is(err, reputation.ErrQueueFull)).To(BeTrue())
		pool.Shutdown()
	})

	It("should refuse jobs after shutdown", func() {
		calculator.block = make(chan struct{})
		pool := reputation.NewPool(calculator, reputation.PoolConfig{Workers: 1, QueueSize: 1, JobTimeout: time.Second}, testLogger())
		pool.Start()

		Expect(pool.Enqueue(reputation.RecalculationJob{CompanyID: "acme"})).To(Succeed())
		pool.Shutdown()

		Expect(pool.Enqueue(reputation.RecalculationJob{CompanyID: "acme"})).NotTo(Succeed())
	})
})

var _ = Describe("Scheduler", func() {
	It("should queue one job per company with feedback", func() {
		calculator := &recordingCalculator{}
		pool := reputation.NewPool(calculator, reputation.PoolConfig{Workers: 1, QueueSize: 10}, testLogger())
		pool.Start()
		defer pool.Shutdown()
		source := &mockStatsSource{stats: map[string]*reputation.Stats{
			"acme":   reputation.Aggregate("acme", []int{5}),
			"garage": reputation.Aggregate("garage", []int{3}),
		}}
		scheduler := reputation.NewScheduler(pool, source, time.Hour, testLogger())

		queued, err := scheduler.Sweep(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(queued).To(Equal(2))
		Eventually(calculator.companies).Should(ConsistOf("acme", "garage"))
	})

	It("should report source failures", func() {
		pool := reputation.NewPool(&recordingCalculator{}, reputation.PoolConfig{}, testLogger())
		defer pool.Shutdown()
		scheduler := reputation.NewScheduler(pool, &mockStatsSource{err: errors.New("db down")}, 0, testLogger())

		_, err := scheduler.Sweep(context.Background())

		Expect(err).To(HaveOccurred())
	})

	It("should sweep on start and stop with its context", func() {
		calculator := &recordingCalculator{}
		pool := reputation.NewPool(calculator, reputation.PoolConfig{Workers: 1, QueueSize: 10}, testLogger())
		pool.Start()
		defer pool.Shutdown()
		source := &mockStatsSource{stats: map[string]*reputation.Stats{"acme": reputation.Aggregate("acme", []int{4})}}
		scheduler := reputation.NewScheduler(pool, source, time.Hour, testLogger())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- scheduler.Run(ctx) }()

		Eventually(calculator.companies).Should(ContainElement("acme"))
		cancel()
		Eventually(done).Should(Receive(BeNil()))
	})
})

var _ = Describe("Scheduled recalculation", func() {
	It("should keep the trend when a sweep finds nothing new", func() {
		ctx := context.Background()
		repo := newMockReputationRepository()
		source := &mockStatsSource{stats: map[string]*reputation.Stats{
			"acme": reputation.Aggregate("acme", []int{4, 4}),
		}}
		companies := mockCompanyLookup{"acme": {ID: "acme", Name: "Acme", Status: company.StatusActive}}
		service := reputation.NewService(repo, source, companies, testLogger())

		_, err := service.CalculateReputation(ctx, reputation.CalculateInput{CompanyID: "acme"})
		Expect(err).NotTo(HaveOccurred())
		source.set("acme", reputation.Aggregate("acme", []int{4, 4, 5, 5, 5}))
		_, err = service.CalculateReputation(ctx, reputation.CalculateInput{CompanyID: "acme", SaveHistory: true})
		Expect(err).NotTo(HaveOccurred())

		calculator := &notifyingCalculator{Calculator: service, done: make(chan error, 1)}
		pool := reputation.NewPool(calculator, reputation.PoolConfig{Workers: 2, QueueSize: 10}, testLogger())
		pool.Start()
		defer pool.Shutdown()
		queued, err := reputation.NewScheduler(pool, source, time.Hour, testLogger()).Sweep(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(queued).To(Equal(1))
		Eventually(calculator.done).Should(Receive(BeNil()))

		view, err := service.GetReputationHistory(ctx, reputation.HistoryInput{CompanyID: "acme"})

		Expect(err).NotTo(HaveOccurred())
		Expect(view.Trend).To(Equal(reputation.TrendUp))
		Expect(view.History).To(HaveLen(1))
		Expect(view.History[0].AverageRating).To(Equal(4.0))
	})
})

var _ = Describe("EventHandler", func() {
	It("should enqueue a recalculation for feedback events", func() {
		calculator := &recordingCalculator{}
		pool := reputation.NewPool(calculator, reputation.PoolConfig{Workers: 1, QueueSize: 10}, testLogger())
		pool.Start()
		defer pool.Shutdown()

		bus := events.NewEventBus(testLogger())
		reputation.NewEventHandler(pool, testLogger()).RegisterEventHandlers(bus)

		Expect(bus.PublishSync(context.Background(), events.NewFeedbackSubmittedEvent("fb-1", "acme", 5))).To(Succeed())
		Expect(bus.PublishSync(context.Background(), events.NewFeedbackChangedEvent("fb-1", "acme", 2))).To(Succeed())

		Eventually(calculator.companies).Should(Equal([]string{"acme", "acme"}))
	})

	It("should reject events of the wrong shape", func() {
		handler := reputation.NewEventHandler(reputation.NewPool(&recordingCalculator{}, reputation.PoolConfig{}, testLogger()), testLogger())
		event := events.NewAuditEvent("user.login", "u1", "", "", true, "", nil)

		Expect(handler.HandleFeedbackEvent(context.Background(), event)).NotTo(Succeed())
	})

	It("should report a full queue", func() {
		pool := reputation.NewPool(&recordingCalculator{}, reputation.PoolConfig{Workers: 1, QueueSize: 1}, testLogger())
		defer pool.Shutdown()
		handler := reputation.NewEventHandler(pool, testLogger())
		event := events.NewFeedbackSubmittedEvent("fb-1", "acme", 5)

		Expect(handler.HandleFeedbackEvent(context.Background(), event)).To(Succeed())
		err := handler.HandleFeedbackEvent(context.Background(), event)

		Expect(errors.Is(err, reputation.ErrQueueFull)).To(BeTrue())
	})
})
