package scrape

import (
	"time"

	"lumitemp/pkg/storage"
)

// Body is the outcome of one scrape tick: the batch fetched for every kind.
type Body struct {
	tick      uint64
	scrapedAt time.Time
	batches   storage.Batches
}

func NewBody(tick uint64, scrapedAt time.Time, batches storage.Batches) *Body {
	return &Body{
		tick:      tick,
		scrapedAt: scrapedAt,
		batches:   batches,
	}
}

func (b *Body) Tick() uint64 {
	return b.tick
}

func (b *Body) ScrapedAt() time.Time {
	return b.scrapedAt
}

func (b *Body) Batches() storage.Batches {
	return b.batches
}
