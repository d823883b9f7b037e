package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/crimson-sun/timeline/internal/layout"
)

// Supported output formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpg"
	FormatTIFF = "tif"
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
	FormatEPS  = "eps"
)

const (
	autoHeightPerEvent = 0.6 // inches
	autoHeightPadding  = 1.5 // inches
)

// Chart is a drawable timeline sized for output.
type Chart struct {
	Layout layout.Layout
	Width  vg.Length
	Height vg.Length
	DPI    int

	plot *plot.Plot
}

// New builds a chart from a computed layout. Zero style fields fall back
// to DefaultStyle.
func New(l layout.Layout, s Style) (*Chart, error) {
	if l.Len() == 0 {
		return nil, fmt.Errorf("render: %w", layout.ErrNoEvents)
	}
	s = s.Merge(DefaultStyle())
	pal, err := resolvePalette(s)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	p := plot.New()
	p.BackgroundColor = pal.background
	p.Title.Text = s.Title
	p.Title.TextStyle.Font = boldFont(s.FontVariant, s.TitleSize)
	p.Title.TextStyle.Color = pal.title
	p.HideAxes()

	spine, err := segmentLine(l.Spine, pal.spine, vg.Points(s.SpineWidth))
	if err != nil {
		return nil, fmt.Errorf("render: spine: %w", err)
	}
	p.Add(spine)

	for i, st := range l.Stems {
		stem, err := segmentLine(st, pal.stem, vg.Points(s.StemWidth))
		if err != nil {
			return nil, fmt.Errorf("render: stem %d: %w", i, err)
		}
		p.Add(stem)
	}

	pts := make(plotter.XYs, l.Len())
	for i, pt := range l.Points {
		pts[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	for _, g := range []struct {
		c color.Color
		r float64
	}{{pal.marker, s.MarkerRadius}, {pal.dot, s.DotRadius}} {
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("render: markers: %w", err)
		}
		sc.GlyphStyle = draw.GlyphStyle{Color: g.c, Radius: vg.Points(g.r), Shape: draw.CircleGlyph{}}
		p.Add(sc)
	}

	labels, err := eventLabels(l, s, pal.label)
	if err != nil {
		return nil, fmt.Errorf("render: labels: %w", err)
	}
	p.Add(labels)

	if !s.HideBounds {
		frame, err := boundLabels(l, s, pal.spine)
		if err != nil {
			return nil, fmt.Errorf("render: bounds: %w", err)
		}
		p.Add(frame)
	}

	// Add widens the axes to fit the data; pin them to the layout.
	p.X.Min, p.X.Max = l.X.Min, l.X.Max
	p.Y.Min, p.Y.Max = l.Y.Min, l.Y.Max

	height := s.Height
	if height <= 0 {
		height = autoHeightPerEvent*float64(l.Len()) + autoHeightPadding
	}
	return &Chart{
		Layout: l,
		Width:  vg.Length(s.Width) * vg.Inch,
		Height: vg.Length(height) * vg.Inch,
		DPI:    s.DPI,
		plot:   p,
	}, nil
}

// Encode writes the chart to w in the given format.
func (c *Chart) Encode(w io.Writer, format string) error {
	var wt io.WriterTo
	switch format {
	case FormatPNG:
		wt = vgimg.PngCanvas{Canvas: c.raster()}
	case FormatJPEG:
		wt = vgimg.JpegCanvas{Canvas: c.raster()}
	case FormatTIFF:
		wt = vgimg.TiffCanvas{Canvas: c.raster()}
	case FormatSVG, FormatPDF, FormatEPS:
		var err error
		wt, err = c.plot.WriterTo(c.Width, c.Height, format)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
	default:
		return fmt.Errorf("render: unsupported format %q", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("render: write %s: %w", format, err)
	}
	return nil
}

// Image rasterises the chart at its DPI.
func (c *Chart) Image() image.Image {
	return c.raster().Image()
}

func (c *Chart) raster() *vgimg.Canvas {
	cv := vgimg.NewWith(vgimg.UseWH(c.Width, c.Height), vgimg.UseDPI(c.DPI))
	c.plot.Draw(draw.New(cv))
	return cv
}

var contentTypes = map[string]string{
	FormatPNG:  "image/png",
	FormatJPEG: "image/jpeg",
	FormatTIFF: "image/tiff",
	FormatSVG:  "image/svg+xml",
	FormatPDF:  "application/pdf",
	FormatEPS:  "application/postscript",
}

// ContentType returns the MIME type for format, or
// "application/octet-stream" when the format is unknown.
func ContentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// FormatFromPath infers the output format from a file extension.
func FormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "png", "svg", "pdf", "eps":
		return ext, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	case "":
		return "", fmt.Errorf("render: %s: no file extension", path)
	default:
		return "", fmt.Errorf("render: %s: unsupported format %q", path, ext)
	}
}

type palette struct {
	background, title, spine, marker, dot, label, stem color.Color
}

func resolvePalette(s Style) (palette, error) {
	var p palette
	for _, f := range []struct {
		name string
		val  string
		dst  *color.Color
	}{
		{"background", s.Background, &p.background},
		{"title_color", s.TitleColor, &p.title},
		{"spine_color", s.SpineColor, &p.spine},
		{"marker_color", s.MarkerColor, &p.marker},
		{"dot_color", s.DotColor, &p.dot},
		{"label_color", s.LabelColor, &p.label},
		{"stem_color", s.StemColor, &p.stem},
	} {
		c, err := ParseColor(f.val)
		if err != nil {
			return palette{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = c
	}
	return p, nil
}

func boldFont(variant string, size float64) font.Font {
	return font.Font{
		Typeface: "Liberation",
		Variant:  font.Variant(variant),
		Weight:   xfont.WeightBold,
		Size:     vg.Points(size),
	}
}

func segmentLine(s layout.Segment, c color.Color, width vg.Length) (*plotter.Line, error) {
	ln, err := plotter.NewLine(plotter.XYs{{X: s.From.X, Y: s.From.Y}, {X: s.To.X, Y: s.To.Y}})
	if err != nil {
		return nil, err
	}
	ln.LineStyle.Color = c
	ln.LineStyle.Width = width
	return ln, nil
}

func eventLabels(l layout.Layout, s Style, c color.Color) (*plotter.Labels, error) {
	xyl := plotter.XYLabels{
		XYs:    make(plotter.XYs, l.Len()),
		Labels: make([]string, l.Len()),
	}
	for i, lb := range l.Labels {
		xyl.XYs[i] = plotter.XY{X: lb.X, Y: lb.Y}
		xyl.Labels[i] = lb.Text
	}
	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		st := &labels.TextStyle[i]
		st.Font = boldFont(s.FontVariant, s.LabelSize)
		st.Color = c
		st.YAlign = text.YCenter
		st.XAlign = text.XLeft
		if l.Labels[i].Align == layout.AlignRight {
			st.XAlign = text.XRight
		}
	}
	return labels, nil
}

// boundLabels frames the spine with the padded date range: the start
// above the top end and the end below the bottom.
func boundLabels(l layout.Layout, s Style, c color.Color) (*plotter.Labels, error) {
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs: plotter.XYs{
			{X: l.Spine.To.X, Y: l.Spine.To.Y},
			{X: l.Spine.From.X, Y: l.Spine.From.Y},
		},
		Labels: []string{
			l.Bounds.Start.Format("2006"),
			l.Bounds.End.Format("2006"),
		},
	})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		st := &labels.TextStyle[i]
		st.Font = boldFont(s.FontVariant, s.LabelSize*0.8)
		st.Color = c
		st.XAlign = text.XCenter
	}
	labels.TextStyle[0].YAlign = text.YBottom
	labels.TextStyle[1].YAlign = text.YTop
	return labels, nil
}
