// Package export renders recorded runs as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"
)

var palette = []string{"#00ff88", "#ffcc00", "#00ccff", "#ff4444", "#ff88ff", "#00ffff"}

// SeriesToSVG draws each series against xs as a polyline, all sharing one
// scale. Non-finite samples break the line.
func SeriesToSVG(xs []float64, series [][]float64, width, height int) string {
	minX, maxX, minY, maxY, ok := bounds(xs, series)
	if !ok {
		return ""
	}
	minY, maxY = pad(minY, maxY)
	rangeX := maxX - minX
	if rangeX == 0 {
		rangeX = 1
	}
	rangeY := maxY - minY

	var sb strings.Builder
	writeHeader(&sb, width, height)

	for i, ys := range series {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, palette[i%len(palette)])
		pen := false
		for j := range min(len(xs), len(ys)) {
			if !finite(xs[j]) || !finite(ys[j]) {
				pen = false
				continue
			}
			x := (xs[j] - minX) / rangeX * float64(width)
			y := float64(height) - (ys[j]-minY)/rangeY*float64(height)
			cmd := "L"
			if !pen {
				cmd = "M"
				pen = true
			}
			fmt.Fprintf(&sb, "%s%.1f,%.1f ", cmd, x, y)
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// PortraitToSVG draws ys against xs, e.g. two state components.
func PortraitToSVG(xs, ys []float64, width, height int) string {
	return SeriesToSVG(xs, [][]float64{ys}, width, height)
}

func writeHeader(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

func bounds(xs []float64, series [][]float64) (minX, maxX, minY, maxY float64, ok bool) {
	minX, maxX = math.Inf(1), math.Inf(-1)
	minY, maxY = math.Inf(1), math.Inf(-1)
	for _, ys := range series {
		for j := range min(len(xs), len(ys)) {
			if !finite(xs[j]) || !finite(ys[j]) {
				continue
			}
			minX, maxX = min(minX, xs[j]), max(maxX, xs[j])
			minY, maxY = min(minY, ys[j]), max(maxY, ys[j])
			ok = true
		}
	}
	return minX, maxX, minY, maxY, ok
}

// pad widens [lo, hi] by 10% on each side, or to a unit range when flat.
func pad(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 || !finite(span) {
		span = 1
	}
	return lo - span*0.1, hi + span*0.1
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
