package storage

import (
	"sync"
	"time"

	"lumitemp/pkg/model"
)

// MemoryAccumulator keeps the full history of the three series for the
// lifetime of the process.
//
// Besides the per-series samples it keeps one timestamp list shared by all
// series, extended in append order. Its length always equals the sum of the
// series lengths.
type MemoryAccumulator struct {
	series     map[model.Kind]*model.Series
	timestamps []time.Time
	mutex      sync.RWMutex
}

func NewMemoryAccumulator() *MemoryAccumulator {
	series := make(map[model.Kind]*model.Series, len(model.Kinds()))
	for _, k := range model.Kinds() {
		series[k] = &model.Series{Kind: k}
	}
	return &MemoryAccumulator{series: series}
}

// Append extends each series with its batch, luminosity first, then humidity,
// then temperature. Samples are never deduplicated.
func (ma *MemoryAccumulator) Append(b Batches) {
	if b.Empty() {
		return
	}
	ma.mutex.Lock()
	defer ma.mutex.Unlock()
	for _, k := range model.Kinds() {
		batch := b.Get(k)
		if len(batch) == 0 {
			continue
		}
		series := ma.series[k]
		series.Samples = series.Samples.Append(batch...)
		ma.timestamps = append(ma.timestamps, batch.Times()...)
	}
}

// Snapshot returns a copy of the current state, or ErrNoData when nothing has
// been appended to any series.
func (ma *MemoryAccumulator) Snapshot() (Snapshot, error) {
	ma.mutex.RLock()
	defer ma.mutex.RUnlock()
	if len(ma.timestamps) == 0 {
		return Snapshot{}, ErrNoData
	}
	snap := Snapshot{
		Timestamps: make([]time.Time, len(ma.timestamps)),
		series:     make(map[model.Kind]SeriesView, len(ma.series)),
	}
	copy(snap.Timestamps, ma.timestamps)
	for k, s := range ma.series {
		samples := make(model.Samples, len(s.Samples))
		copy(samples, s.Samples)
		snap.series[k] = SeriesView{
			Kind:    k,
			Samples: samples,
			Mean:    samples.Mean(),
		}
	}
	return snap, nil
}

func (ma *MemoryAccumulator) Len(kind model.Kind) int {
	ma.mutex.RLock()
	defer ma.mutex.RUnlock()
	if s, ok := ma.series[kind]; ok {
		return s.Len()
	}
	return 0
}

// Total is the length of the shared timestamp list.
func (ma *MemoryAccumulator) Total() int {
	ma.mutex.RLock()
	defer ma.mutex.RUnlock()
	return len(ma.timestamps)
}
