package roadparts

// paletteRule maps an OSM highway/surface tag value to a display color
// pair: a normal tile tint and a darker "key" variant for markers.
type paletteRule struct {
	Keys   []string // tag values to match (substring)
	Normal Color
	Key    Color
}

var paletteRules = []paletteRule{
	{
		Keys:   []string{"motorway"},
		Normal: Color{R: 60, G: 120, B: 220},
		Key:    Color{R: 20, G: 60, B: 160},
	},
	{
		Keys:   []string{"trunk"},
		Normal: Color{R: 90, G: 140, B: 210},
		Key:    Color{R: 40, G: 80, B: 150},
	},
	{
		Keys:   []string{"primary"},
		Normal: Color{R: 230, G: 170, B: 70},
		Key:    Color{R: 170, G: 110, B: 25},
	},
	{
		Keys:   []string{"secondary"},
		Normal: Color{R: 220, G: 200, B: 90},
		Key:    Color{R: 160, G: 140, B: 40},
	},
	{
		Keys:   []string{"tertiary"},
		Normal: Color{R: 210, G: 210, B: 130},
		Key:    Color{R: 150, G: 150, B: 80},
	},
	{
		Keys:   []string{"residential", "living_street"},
		Normal: Color{R: 220, G: 220, B: 220},
		Key:    Color{R: 150, G: 150, B: 150},
	},
	{
		Keys:   []string{"unclassified"},
		Normal: Color{R: 190, G: 190, B: 190},
		Key:    Color{R: 120, G: 120, B: 120},
	},
	{
		Keys:   []string{"service"},
		Normal: Color{R: 170, G: 170, B: 170},
		Key:    Color{R: 100, G: 100, B: 100},
	},
	{
		Keys:   []string{"track"},
		Normal: Color{R: 170, G: 80, B: 200},
		Key:    Color{R: 90, G: 40, B: 120},
	},
	{
		Keys:   []string{"path", "footway", "pedestrian"},
		Normal: Color{R: 90, G: 180, B: 90},
		Key:    Color{R: 40, G: 110, B: 40},
	},
	{
		Keys:   []string{"cycleway"},
		Normal: Color{R: 80, G: 200, B: 120},
		Key:    Color{R: 30, G: 120, B: 70},
	},
	{
		Keys:   []string{"asphalt", "paved"},
		Normal: Color{R: 95, G: 115, B: 140},
		Key:    Color{R: 50, G: 70, B: 100},
	},
	{
		Keys:   []string{"concrete"},
		Normal: Color{R: 170, G: 170, B: 170},
		Key:    Color{R: 100, G: 100, B: 100},
	},
	{
		Keys:   []string{"gravel", "compacted"},
		Normal: Color{R: 190, G: 145, B: 90},
		Key:    Color{R: 120, G: 80, B: 40},
	},
	{
		Keys:   []string{"dirt", "ground", "mud", "earth"},
		Normal: Color{R: 140, G: 90, B: 55},
		Key:    Color{R: 90, G: 50, B: 25},
	},
	{
		Keys:   []string{"sand"},
		Normal: Color{R: 210, G: 180, B: 120},
		Key:    Color{R: 150, G: 120, B: 60},
	},
}
