package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

const (
	DefaultPlotWidth  = 70
	DefaultPlotHeight = 15
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Green, asciigraph.Yellow, asciigraph.Blue,
	asciigraph.Red, asciigraph.Magenta, asciigraph.Cyan,
}

// PlotSeries draws one series. An empty series yields an empty string.
func PlotSeries(series []float64, caption string, width, height int) string {
	if len(series) == 0 {
		return ""
	}
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotOutputs draws every channel of a run on one chart. rows[i] holds the
// channels at sample i.
func PlotOutputs(rows [][]float64, caption string, width, height int) string {
	channels := Columns(rows)
	if len(channels) == 0 || len(channels[0]) == 0 {
		return ""
	}
	if len(channels) == 1 {
		return PlotSeries(channels[0], caption, width, height)
	}
	colors := make([]asciigraph.AnsiColor, len(channels))
	for i := range colors {
		colors[i] = seriesColors[i%len(seriesColors)]
	}
	return asciigraph.PlotMany(channels,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s (%d channels)", caption, len(channels))),
		asciigraph.SeriesColors(colors...),
	)
}

// Columns transposes sample rows into per-channel series.
func Columns(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return nil
	}
	n := len(rows[0])
	cols := make([][]float64, n)
	for j := range cols {
		cols[j] = make([]float64, 0, len(rows))
	}
	for _, row := range rows {
		for j := 0; j < n && j < len(row); j++ {
			cols[j] = append(cols[j], row[j])
		}
	}
	return cols
}
