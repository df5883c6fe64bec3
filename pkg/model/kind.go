package model

import "fmt"

// Kind names one of the three sensor attributes the dashboard tracks.
type Kind string

const (
	Luminosity  Kind = "luminosity"
	Humidity    Kind = "humidity"
	Temperature Kind = "temperature"
)

// Kinds returns every kind in append order.
func Kinds() []Kind {
	return []Kind{Luminosity, Humidity, Temperature}
}

func (k Kind) String() string {
	return string(k)
}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

// Series is the append-only history of one kind, in arrival order.
type Series struct {
	Kind    Kind
	Samples Samples
}

func (s *Series) Len() int {
	return len(s.Samples)
}
