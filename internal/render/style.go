package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Style holds the visual settings of a chart. Colours accept CSS colour
// names ("royalblue") or hex ("#4169e1", "#46e"). Sizes are in points
// unless noted.
type Style struct {
	Title       string  `yaml:"title" json:"title"`
	TitleColor  string  `yaml:"title_color" json:"title_color"`
	TitleSize   float64 `yaml:"title_size" json:"title_size"`
	FontVariant string  `yaml:"font_variant" json:"font_variant"` // Serif, Sans or Mono
	Background  string  `yaml:"background" json:"background"`

	SpineColor string  `yaml:"spine_color" json:"spine_color"`
	SpineWidth float64 `yaml:"spine_width" json:"spine_width"`

	MarkerColor  string  `yaml:"marker_color" json:"marker_color"`
	MarkerRadius float64 `yaml:"marker_radius" json:"marker_radius"`
	DotColor     string  `yaml:"dot_color" json:"dot_color"`
	DotRadius    float64 `yaml:"dot_radius" json:"dot_radius"`

	LabelColor string  `yaml:"label_color" json:"label_color"`
	LabelSize  float64 `yaml:"label_size" json:"label_size"`
	StemColor  string  `yaml:"stem_color" json:"stem_color"`
	StemWidth  float64 `yaml:"stem_width" json:"stem_width"`

	Width      float64 `yaml:"width" json:"width"`   // inches
	Height     float64 `yaml:"height" json:"height"` // inches; 0 sizes to the event count
	DPI        int     `yaml:"dpi" json:"dpi"`
	HideBounds bool    `yaml:"hide_bounds" json:"hide_bounds"`
}

// DefaultStyle returns the classic look: a deep pink spine, two-tone
// magenta markers and bold blue serif labels.
func DefaultStyle() Style {
	return Style{
		Title:        "Timeline of Events",
		TitleColor:   "darkgreen",
		TitleSize:    10,
		FontVariant:  "Serif",
		Background:   "white",
		SpineColor:   "deeppink",
		SpineWidth:   1.5,
		MarkerColor:  "palevioletred",
		MarkerRadius: 6.2,
		DotColor:     "darkmagenta",
		DotRadius:    3.1,
		LabelColor:   "royalblue",
		LabelSize:    12,
		StemColor:    "darkmagenta",
		StemWidth:    1,
		Width:        12,
		DPI:          96,
	}
}

// Merge returns s with every zero field replaced by the value from def.
func (s Style) Merge(def Style) Style {
	str := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	num := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	str(&s.Title, def.Title)
	str(&s.TitleColor, def.TitleColor)
	num(&s.TitleSize, def.TitleSize)
	str(&s.FontVariant, def.FontVariant)
	str(&s.Background, def.Background)
	str(&s.SpineColor, def.SpineColor)
	num(&s.SpineWidth, def.SpineWidth)
	str(&s.MarkerColor, def.MarkerColor)
	num(&s.MarkerRadius, def.MarkerRadius)
	str(&s.DotColor, def.DotColor)
	num(&s.DotRadius, def.DotRadius)
	str(&s.LabelColor, def.LabelColor)
	num(&s.LabelSize, def.LabelSize)
	str(&s.StemColor, def.StemColor)
	num(&s.StemWidth, def.StemWidth)
	num(&s.Width, def.Width)
	num(&s.Height, def.Height)
	if s.DPI == 0 {
		s.DPI = def.DPI
	}
	s.HideBounds = s.HideBounds || def.HideBounds
	return s
}

// ParseColor resolves a CSS colour name or a #rgb / #rrggbb hex string.
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	if s == "transparent" {
		return color.Transparent, nil
	}
	c, ok := colornames.Map[s]
	if !ok {
		return nil, fmt.Errorf("unknown colour %q", s)
	}
	return c, nil
}

func parseHex(h string) (color.Color, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return nil, fmt.Errorf("bad hex colour %q", "#"+h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("bad hex colour %q: %w", "#"+h, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
