// Package render turns accumulator snapshots into Plotly figures.
package render

import (
	"lumitemp/pkg/model"
	"lumitemp/pkg/storage"
)

// TimeLayout formats x values as wall-clock time in the samples' own
// location. Plotly ignores zone offsets on date axes.
const TimeLayout = "2006-01-02 15:04:05.000"

const (
	ModeLinesMarkers = "lines+markers"
	ModeLines        = "lines"
	DashDash         = "dash"
	HoverClosest     = "closest"
)

var colors = map[model.Kind]string{
	model.Luminosity:  "orange",
	model.Humidity:    "blue",
	model.Temperature: "red",
}

type Line struct {
	Color string `json:"color"`
	Dash  string `json:"dash,omitempty"`
}

type Trace struct {
	Type string    `json:"type"`
	X    []string  `json:"x"`
	Y    []float64 `json:"y"`
	Mode string    `json:"mode"`
	Name string    `json:"name"`
	Line Line      `json:"line"`
}

type Title struct {
	Text string `json:"text"`
}

type Axis struct {
	Title Title `json:"title"`
}

type Layout struct {
	Title     Title  `json:"title"`
	XAxis     Axis   `json:"xaxis"`
	YAxis     Axis   `json:"yaxis"`
	HoverMode string `json:"hovermode"`
}

// Figure is a Plotly figure. The zero value marshals to {} and is what the
// page shows before any data has arrived.
type Figure struct {
	Data   []Trace `json:"data,omitempty"`
	Layout *Layout `json:"layout,omitempty"`
}

func Placeholder() Figure {
	return Figure{}
}

// Build returns two traces for every non-empty series: the samples against
// their own timestamps, and a dashed line at the series mean spanning the
// first to the last sample. Empty series contribute nothing.
func Build(snap storage.Snapshot, labels Labels) Figure {
	fig := Figure{
		Data: make([]Trace, 0, 2*len(model.Kinds())),
		Layout: &Layout{
			Title:     Title{Text: labels.Title},
			XAxis:     Axis{Title: Title{Text: labels.XAxis}},
			YAxis:     Axis{Title: Title{Text: labels.YAxis}},
			HoverMode: HoverClosest,
		},
	}
	for _, k := range model.Kinds() {
		series := snap.Series(k)
		if series.Empty() {
			continue
		}
		fig.Data = append(fig.Data, seriesTrace(series, labels), meanTrace(series, labels))
	}
	return fig
}

func (f Figure) Empty() bool {
	return len(f.Data) == 0
}

func seriesTrace(v storage.SeriesView, labels Labels) Trace {
	return Trace{
		Type: "scatter",
		X:    formatTimes(v.Samples),
		Y:    v.Samples.Values(),
		Mode: ModeLinesMarkers,
		Name: labels.Name(v.Kind),
		Line: Line{Color: colors[v.Kind]},
	}
}

func meanTrace(v storage.SeriesView, labels Labels) Trace {
	first, last := v.Samples[0].Time, v.Samples[len(v.Samples)-1].Time
	return Trace{
		Type: "scatter",
		X:    []string{first.Format(TimeLayout), last.Format(TimeLayout)},
		Y:    []float64{v.Mean, v.Mean},
		Mode: ModeLines,
		Name: labels.MeanName(v.Kind),
		Line: Line{Color: colors[v.Kind], Dash: DashDash},
	}
}

func formatTimes(samples model.Samples) []string {
	out := make([]string, len(samples))
	for i, s := range samples {
		out[i] = s.Time.Format(TimeLayout)
	}
	return out
}
