// Package scrape drives the periodic fetch and append cycle.
package scrape

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"lumitemp/pkg/logger"
	"lumitemp/pkg/metrics"
	"lumitemp/pkg/model"
	"lumitemp/pkg/sth"
	"lumitemp/pkg/storage"
)

const DefaultInterval = 10 * time.Second

type Config struct {
	Interval time.Duration
	Entities map[model.Kind]model.Entity
}

// Scraper fetches the three kinds on every tick and appends the results.
// Ticks never overlap: a tick that fires while the previous one is still
// running is skipped.
type Scraper struct {
	fetcher  sth.Fetcher
	acc      storage.Accumulator
	entities map[model.Kind]model.Entity
	interval time.Duration
	log      *logrus.Entry

	listeners []Listener
	ticks     atomic.Uint64

	mu       sync.Mutex
	running  bool
	cron     *cron.Cron
	appender *Appender
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewScraper(cfg Config, fetcher sth.Fetcher, acc storage.Accumulator, log *logrus.Entry) *Scraper {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logger.NewDefault("scraper")
	}
	return &Scraper{
		fetcher:  fetcher,
		acc:      acc,
		entities: cfg.Entities,
		interval: interval,
		log:      log,
	}
}

// OnAppend registers a listener run after every append. Listeners must be
// registered before Start.
func (s *Scraper) OnAppend(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Scraper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if s.fetcher == nil || s.acc == nil {
		return errors.New("scraper needs a fetcher and an accumulator")
	}

	runCtx, cancel := context.WithCancel(ctx)
	appender := NewAppender(context.Background(), s.acc, s.log)
	for _, l := range s.listeners {
		appender.addListener(l)
	}
	appender.start()

	c := cron.New(cron.WithLogger(cron.PrintfLogger(s.log)))
	job := cron.NewChain(cron.SkipIfStillRunning(cron.PrintfLogger(s.log))).
		Then(cron.FuncJob(func() { s.tick(runCtx, appender) }))
	c.Schedule(cron.Every(s.interval), job)
	c.Start()

	s.cron = c
	s.appender = appender
	s.cancel = cancel
	s.running = true

	// First tick right away instead of one interval after start.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		job.Run()
	}()

	s.log.WithField("interval", s.interval.String()).Info("scraper started")
	return nil
}

// Stop cancels in-flight fetches, waits for the running tick and drains the
// appender. If ctx expires first Stop returns its error; the shutdown keeps
// going in the background and the appender is still drained once the tick
// returns.
func (s *Scraper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	c, appender, cancel := s.cron, s.appender, s.cancel
	s.running = false
	s.cron, s.appender, s.cancel = nil, nil, nil
	s.mu.Unlock()

	cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-c.Stop().Done()
		s.wg.Wait()
		appender.stop()
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.WithError(ctx.Err()).Warn("scraper stop timed out, finishing in background")
		return ctx.Err()
	}

	s.log.Info("scraper stopped")
	return nil
}

func (s *Scraper) tick(ctx context.Context, appender *Appender) {
	if ctx.Err() != nil {
		return
	}
	body := s.ScrapeOnce(ctx)
	if err := appender.produce(body); err != nil {
		s.log.WithError(err).WithField("tick", body.Tick()).Warn("dropping scrape result")
	}
}

// ScrapeOnce fetches every configured kind concurrently and returns the
// batches. A failed fetch contributes an empty batch.
func (s *Scraper) ScrapeOnce(ctx context.Context) *Body {
	start := time.Now()
	n := s.ticks.Add(1)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		batches storage.Batches
	)
	for _, k := range model.Kinds() {
		entity, ok := s.entities[k]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(k model.Kind, entity model.Entity) {
			defer wg.Done()
			samples := s.fetch(ctx, k, entity)
			mu.Lock()
			batches.Set(k, samples)
			mu.Unlock()
		}(k, entity)
	}
	wg.Wait()

	metrics.ObserveTick(time.Since(start))
	return NewBody(n, start, batches)
}

func (s *Scraper) fetch(ctx context.Context, kind model.Kind, entity model.Entity) model.Samples {
	samples, err := s.fetcher.Fetch(ctx, entity)
	if err != nil {
		metrics.RecordFetch(kind, outcome(err))
		s.log.WithError(err).
			WithField("kind", kind.String()).
			WithField("entity", entity.String()).
			Warn("sth fetch failed")
		return nil
	}
	if len(samples) == 0 {
		metrics.RecordFetch(kind, metrics.OutcomeEmpty)
		return nil
	}
	metrics.RecordFetch(kind, metrics.OutcomeOK)
	return samples
}

func outcome(err error) string {
	switch {
	case errors.Is(err, sth.ErrStatus):
		return metrics.OutcomeStatus
	case errors.Is(err, sth.ErrMissingKey):
		return metrics.OutcomeMissingKey
	case errors.Is(err, sth.ErrMalformed):
		return metrics.OutcomeMalformed
	case errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeError
}
