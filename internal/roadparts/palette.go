package roadparts

import (
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash"
)

// Palette returns the display color pair for a single OSM tag value: a
// rule-table hit when one of paletteRules matches, or a deterministic
// hash-derived color otherwise so every tag value still gets a stable,
// visually distinct hint.
func Palette(tagValue string) (normal, key Color) {
	tagValue = strings.ToLower(tagValue)

	for _, rule := range paletteRules {
		if rule.matches(tagValue) {
			return rule.Normal, rule.Key
		}
	}

	normal = hashColor(tagValue)
	key = darkenAndSaturate(normal, 0.7, 1.25)
	return normal, key
}

func (r paletteRule) matches(tagValue string) bool {
	for _, k := range r.Keys {
		if strings.Contains(tagValue, k) {
			return true
		}
	}
	return false
}

// hashColor hashes a tag value to a color, so any OSM value not covered
// by the rule table still gets a consistent, saturated hint.
func hashColor(s string) Color {
	h64 := xxhash.Sum64String(s)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], h64)
	lo := binary.LittleEndian.Uint32(buf[:4])
	hi := binary.LittleEndian.Uint32(buf[4:])
	h := lo ^ hi
	r := byte(60 + (h&0xff)%160)
	g := byte(60 + ((h>>8)&0xff)%160)
	b := byte(60 + ((h>>16)&0xff)%160)
	avg := (int(r) + int(g) + int(b)) / 3
	r = clampByte(avg + int(float64(int(r)-avg)*1.2))
	g = clampByte(avg + int(float64(int(g)-avg)*1.2))
	b = clampByte(avg + int(float64(int(b)-avg)*1.2))

	return Color{R: r, G: g, B: b}
}

// darkenAndSaturate darkens and saturates a color.
func darkenAndSaturate(c Color, darken, sat float64) Color {
	avg := (int(c.R) + int(c.G) + int(c.B)) / 3
	r := clampByte(int(float64(int(c.R)-avg)*sat) + avg)
	g := clampByte(int(float64(int(c.G)-avg)*sat) + avg)
	b := clampByte(int(float64(int(c.B)-avg)*sat) + avg)
	r = clampByte(int(float64(r) * darken))
	g = clampByte(int(float64(g) * darken))
	b = clampByte(int(float64(b) * darken))

	return Color{R: r, G: g, B: b}
}

func clampByte(v int) byte {
	if v < 40 {
		return 40
	}
	if v > 220 {
		return 220
	}
	return byte(v)
}
