package storage

import (
	"encoding/json"
	"time"

	"lumitemp/pkg/model"
)

// SeriesView is the read-only state of one series inside a Snapshot.
type SeriesView struct {
	Kind    model.Kind
	Samples model.Samples
	Mean    float64
}

func (v SeriesView) Len() int {
	return len(v.Samples)
}

func (v SeriesView) Empty() bool {
	return len(v.Samples) == 0
}

// Snapshot is a point-in-time copy of the accumulator. Callers must treat it
// as read-only; it shares nothing with the accumulator.
type Snapshot struct {
	// Timestamps is the shared list across all series, in append order.
	Timestamps []time.Time
	series     map[model.Kind]SeriesView
}

func (s Snapshot) Series(kind model.Kind) SeriesView {
	if v, ok := s.series[kind]; ok {
		return v
	}
	return SeriesView{Kind: kind}
}

func (s Snapshot) Mean(kind model.Kind) float64 {
	return s.Series(kind).Mean
}

func (s Snapshot) Empty(kind model.Kind) bool {
	return s.Series(kind).Empty()
}

type seriesJSON struct {
	Count  int         `json:"count"`
	Mean   float64     `json:"mean"`
	Times  []time.Time `json:"times"`
	Values []float64   `json:"values"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := struct {
		Timestamps []time.Time               `json:"timestamps"`
		Series     map[model.Kind]seriesJSON `json:"series"`
	}{
		Timestamps: s.Timestamps,
		Series:     make(map[model.Kind]seriesJSON, len(model.Kinds())),
	}
	for _, k := range model.Kinds() {
		v := s.Series(k)
		out.Series[k] = seriesJSON{
			Count:  v.Len(),
			Mean:   v.Mean,
			Times:  v.Samples.Times(),
			Values: v.Samples.Values(),
		}
	}
	return json.Marshal(out)
}
