package timeline

import (
	"github.com/crimson-sun/timeline/internal/layout"
	"github.com/crimson-sun/timeline/internal/render"
	"github.com/crimson-sun/timeline/internal/source"
)

// Style holds colours, fonts and figure size. See DefaultStyle.
type Style = render.Style

// DefaultStyle returns the classic look.
func DefaultStyle() Style {
	return render.DefaultStyle()
}

type options struct {
	source source.Config
	layout layout.Options
	style  Style
}

// Option configures a Timeline.
type Option func(*options)

// WithInterval sets the vertical spacing between events. Default: 5.
func WithInterval(interval float64) Option {
	return func(o *options) {
		o.layout.Interval = interval
	}
}

// WithEncoding sets the input character encoding by IANA name.
// Default: "latin1".
func WithEncoding(name string) Option {
	return func(o *options) {
		o.source.Encoding = name
	}
}

// WithColumns sets the header names of the date and text columns.
// Default: "timeline" and "event".
func WithColumns(date, text string) Option {
	return func(o *options) {
		o.source.DateColumn = date
		o.source.TextColumn = text
	}
}

// WithDateFormat sets the Go time layout used in labels.
// Default: "02 Jan 2006".
func WithDateFormat(layout string) Option {
	return func(o *options) {
		o.layout.DateFormat = layout
	}
}

// WithWrap wraps event text at width characters. Default: no wrapping.
func WithWrap(width int) Option {
	return func(o *options) {
		o.layout.WrapWidth = width
	}
}

// WithStyle replaces the style. Zero fields keep their defaults.
func WithStyle(s Style) Option {
	return func(o *options) {
		o.style = s.Merge(render.DefaultStyle())
	}
}

// WithTitle sets the chart title.
func WithTitle(title string) Option {
	return func(o *options) {
		o.style.Title = title
	}
}

// WithSize sets the figure size in inches. A height of 0 sizes the chart
// to the number of events.
func WithSize(width, height float64) Option {
	return func(o *options) {
		o.style.Width = width
		o.style.Height = height
	}
}

func defaultOptions() options {
	return options{
		source: source.DefaultConfig(),
		layout: layout.DefaultOptions(),
		style:  render.DefaultStyle(),
	}
}
