package viz

import (
	"math"
	"slices"
	"strings"
)

// Braille cells hold 2x4 dots; bit values by (row, col):
//
//	0x01 0x08
//	0x02 0x10
//	0x04 0x20
//	0x40 0x80
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is Width x Height cells, i.e. 2·Width x 4·Height pixels.
type Canvas struct {
	Width, Height int
	grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, grid: make([][]rune, h)}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights pixel (x, y); y grows downwards. Out-of-range pixels are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = brailleBlank
		}
	}
}

// Line draws from (x0, y0) to (x1, y1) with Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), abs(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Trace scales the points to fill the canvas and joins consecutive ones.
// Non-finite points are skipped.
func (c *Canvas) Trace(xs, ys []float64) {
	var px, py []float64
	for i := range min(len(xs), len(ys)) {
		if isFinite(xs[i]) && isFinite(ys[i]) {
			px = append(px, xs[i])
			py = append(py, ys[i])
		}
	}
	if len(px) == 0 {
		return
	}

	minX, maxX := slices.Min(px), slices.Max(px)
	minY, maxY := slices.Min(py), slices.Max(py)
	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 || !isFinite(spanX) {
		spanX = 1
	}
	if spanY == 0 || !isFinite(spanY) {
		spanY = 1
	}

	pw, ph := c.Width*2-1, c.Height*4-1
	toPixel := func(i int) (int, int) {
		x := int((px[i] - minX) / spanX * float64(pw))
		y := ph - int((py[i]-minY)/spanY*float64(ph))
		return min(max(x, 0), pw), min(max(y, 0), ph)
	}

	x0, y0 := toPixel(0)
	c.Set(x0, y0)
	for i := 1; i < len(px); i++ {
		x1, y1 := toPixel(i)
		c.Line(x0, y0, x1, y1)
		x0, y0 = x1, y1
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
