package series

import (
	"math"
	"strings"
)

var blocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline rasterizes a point line into cols block glyphs. The points must
// come from RenderPoints with the same height and margin and a width of
// cols-1, so that each column lands on an integer x.
func Sparkline(pts []Point, cols int, height, margin float64) string {
	if len(pts) < 2 || cols < 1 {
		return ""
	}
	span := height - margin
	if span <= 0 {
		return ""
	}
	var b strings.Builder
	seg := 0
	for c := 0; c < cols; c++ {
		x := float64(c)
		for seg < len(pts)-2 && pts[seg+1].X < x {
			seg++
		}
		a, z := pts[seg], pts[seg+1]
		y := a.Y
		if dx := z.X - a.X; dx > 0 {
			t := (x - a.X) / dx
			if t > 1 {
				t = 1
			}
			y = a.Y + t*(z.Y-a.Y)
		}
		level := (height - y) / span
		idx := int(math.Round(level * float64(len(blocks)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		b.WriteRune(blocks[idx])
	}
	return b.String()
}
