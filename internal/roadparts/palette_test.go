package roadparts

import "testing"

func TestPaletteBasic(t *testing.T) {
	t.Parallel()

	tests := []string{
		"motorway",
		"residential",
		"weird_highway_value_123",
		"track",
	}

	for _, tag := range tests {
		tag := tag
		t.Run(tag, func(t *testing.T) {
			t.Parallel()

			normal, key := Palette(tag)
			if normal == key {
				t.Fatalf("expected key to differ from normal")
			}
		})
	}
}

func TestPaletteUnknownValueIsStable(t *testing.T) {
	t.Parallel()

	a, _ := Palette("some_unmapped_surface")
	b, _ := Palette("some_unmapped_surface")
	if a != b {
		t.Fatalf("Palette not stable for the same unmapped value: %+v != %+v", a, b)
	}
}
