package storage

import "lumitemp/pkg/model"

// Batches carries one fetch result per kind. A nil batch means nothing
// arrived for that kind this tick.
type Batches struct {
	Luminosity  model.Samples
	Humidity    model.Samples
	Temperature model.Samples
}

func (b Batches) Get(kind model.Kind) model.Samples {
	switch kind {
	case model.Luminosity:
		return b.Luminosity
	case model.Humidity:
		return b.Humidity
	case model.Temperature:
		return b.Temperature
	}
	return nil
}

func (b *Batches) Set(kind model.Kind, samples model.Samples) {
	switch kind {
	case model.Luminosity:
		b.Luminosity = samples
	case model.Humidity:
		b.Humidity = samples
	case model.Temperature:
		b.Temperature = samples
	}
}

func (b Batches) Empty() bool {
	return len(b.Luminosity) == 0 && len(b.Humidity) == 0 && len(b.Temperature) == 0
}

type Accumulator interface {
	Append(b Batches)

	Snapshot() (Snapshot, error)
}
