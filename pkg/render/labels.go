package render

import (
	"fmt"

	"lumitemp/pkg/model"
)

// Labels holds the user-visible strings of a figure in one language.
type Labels struct {
	Names      map[model.Kind]string
	MeanPrefix string
	Title      string
	XAxis      string
	YAxis      string
}

var locales = map[string]Labels{
	"en": {
		Names: map[model.Kind]string{
			model.Luminosity:  "Luminosity",
			model.Humidity:    "Humidity",
			model.Temperature: "Temperature",
		},
		MeanPrefix: "Mean",
		Title:      "Luminosity, Humidity and Temperature Over Time",
		XAxis:      "Timestamp",
		YAxis:      "Values",
	},
	"pt": {
		Names: map[model.Kind]string{
			model.Luminosity:  "Luminosidade",
			model.Humidity:    "Umidade",
			model.Temperature: "Temperatura",
		},
		MeanPrefix: "Média",
		Title:      "Luminosidade, Umidade e Temperatura ao Longo do Tempo",
		XAxis:      "Timestamp",
		YAxis:      "Valores",
	},
}

// LabelsFor returns the labels of a locale, falling back to English.
func LabelsFor(locale string) Labels {
	if l, ok := locales[locale]; ok {
		return l
	}
	return locales["en"]
}

func (l Labels) Name(kind model.Kind) string {
	if n, ok := l.Names[kind]; ok {
		return n
	}
	return kind.String()
}

func (l Labels) MeanName(kind model.Kind) string {
	return fmt.Sprintf("%s %s", l.MeanPrefix, l.Name(kind))
}
