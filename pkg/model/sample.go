package model

import "time"

// Sample is a single observation of one attribute.
type Sample struct {
	Time  time.Time
	Value float64
}

type Samples []Sample

func (s Samples) Append(samples ...Sample) Samples {
	return append(s, samples...)
}

func (s Samples) Values() []float64 {
	values := make([]float64, len(s))
	for i, sample := range s {
		values[i] = sample.Value
	}
	return values
}

func (s Samples) Times() []time.Time {
	times := make([]time.Time, len(s))
	for i, sample := range s {
		times[i] = sample.Time
	}
	return times
}

// Mean returns the arithmetic mean of the values, 0 for an empty slice.
func (s Samples) Mean() float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, sample := range s {
		sum += sample.Value
	}
	return sum / float64(len(s))
}

// In returns a copy with every timestamp converted to loc.
func (s Samples) In(loc *time.Location) Samples {
	if loc == nil {
		return s
	}
	converted := make(Samples, len(s))
	for i, sample := range s {
		converted[i] = Sample{Time: sample.Time.In(loc), Value: sample.Value}
	}
	return converted
}
