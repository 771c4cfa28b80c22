// Package roadparts assigns display colors: a tile grid's one-shot
// colour-triple hint and a consistent per-category interest colour,
// both derived from the OSM tag values seen on the source data, by the
// same weighted-average and palette-lookup approach a mesh colour mixer
// uses for parts converging at a junction.
package roadparts

// Color is an RGB display hint. Container blocks store it as 3 raw
// bytes; there is no alpha channel to carry.
type Color struct {
	R, G, B byte
}

// MixColors returns the weighted average of the provided colors.
// Weighting is achieved by passing the same color multiple times.
func MixColors(colors ...Color) Color {
	if len(colors) == 0 {
		return Color{}
	}

	var sr, sg, sb int
	for _, c := range colors {
		sr += int(c.R)
		sg += int(c.G)
		sb += int(c.B)
	}

	n := len(colors)
	return Color{
		R: byte(clamp255((sr + n/2) / n)),
		G: byte(clamp255((sg + n/2) / n)),
		B: byte(clamp255((sb + n/2) / n)),
	}
}

// DarkenColor shifts a color to a darker shade by multiplying RGB by
// factor. factor should be in range (0, 1].
func DarkenColor(c Color, factor float64) Color {
	if factor <= 0 {
		return Color{}
	}
	if factor > 1 {
		factor = 1
	}

	r := int(float64(c.R) * factor)
	g := int(float64(c.G) * factor)
	b := int(float64(c.B) * factor)

	return Color{R: byte(clamp255(r)), G: byte(clamp255(g)), B: byte(clamp255(b))}
}

func clamp255(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
