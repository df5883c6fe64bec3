package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"lumitemp/pkg/metrics"
	"lumitemp/pkg/model"
	"lumitemp/pkg/storage"
)

// Listener is called after each body has been appended.
type Listener func(body *Body)

// Appender is the only writer of the accumulator. Scrape ticks hand their
// bodies to produce; a single consume goroutine appends them in order.
type Appender struct {
	acc       storage.Accumulator
	counter   lengthCounter
	listeners []Listener
	log       *logrus.Entry

	ch     chan *Body
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type lengthCounter interface {
	Len(kind model.Kind) int
}

func NewAppender(ctx context.Context, acc storage.Accumulator, log *logrus.Entry) *Appender {
	ctx, cancel := context.WithCancel(ctx)
	a := &Appender{
		acc:    acc,
		log:    log,
		ch:     make(chan *Body, 16),
		ctx:    ctx,
		cancel: cancel,
	}
	if c, ok := acc.(lengthCounter); ok {
		a.counter = c
	}
	return a
}

// addListener must be called before start.
func (a *Appender) addListener(l Listener) {
	if l != nil {
		a.listeners = append(a.listeners, l)
	}
}

func (a *Appender) start() {
	a.wg.Add(1)
	go a.consume()
}

func (a *Appender) produce(body *Body) error {
	if body == nil {
		return nil
	}
	select {
	case a.ch <- body:
		return nil
	case <-a.ctx.Done():
		return a.ctx.Err()
	}
}

func (a *Appender) consume() {
	defer a.wg.Done()
	for body := range a.ch {
		a.append(body)
	}
}

// stop drains pending bodies and waits for the consumer. No produce call may
// run concurrently with or after stop.
func (a *Appender) stop() {
	a.cancel()
	close(a.ch)
	a.wg.Wait()
}

func (a *Appender) append(body *Body) {
	batches := body.Batches()
	a.acc.Append(batches)

	fields := logrus.Fields{
		"tick":       body.Tick(),
		"scraped_at": body.ScrapedAt().Format(time.RFC3339Nano),
	}
	for _, k := range model.Kinds() {
		n := len(batches.Get(k))
		fields[k.String()] = n
		if a.counter != nil {
			metrics.RecordAppend(k, n, a.counter.Len(k))
		}
	}
	a.log.WithFields(fields).Debug("batches appended")

	for _, l := range a.listeners {
		l(body)
	}
}
