package layout

import (
	"errors"
	"fmt"
	"time"

	"github.com/crimson-sun/timeline/internal/model"
)

// Align is the horizontal anchor of a label relative to its X coordinate.
type Align string

const (
	AlignLeft  Align = "left"  // text extends to the right of X
	AlignRight Align = "right" // text extends to the left of X
)

// Options controls the chart geometry. Units are data coordinates.
type Options struct {
	Interval    float64 `yaml:"interval"`     // vertical distance between consecutive events
	LabelOffset float64 `yaml:"label_offset"` // horizontal distance from the spine to each label
	XMin        float64 `yaml:"x_min"`
	XMax        float64 `yaml:"x_max"`
	DateFormat  string  `yaml:"date_format"` // Go time layout for the label prefix
	WrapWidth   int     `yaml:"wrap_width"`  // wrap event text at this many runes; 0 disables
}

// DefaultOptions returns the classic geometry: 5 units between events,
// labels 6 units off a spine drawn on an x-range of [-26, 20].
func DefaultOptions() Options {
	return Options{
		Interval:    5,
		LabelOffset: 6,
		XMin:        -26,
		XMax:        20,
		DateFormat:  "02 Jan 2006",
	}
}

// Point is an event marker on the spine.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Label is the caption for one event.
type Label struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Align Align   `json:"align"`
}

// Segment is a straight line between two points.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Bounds is the date range framing the chart.
type Bounds struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Range is a closed interval on one axis.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Layout holds every coordinate needed to draw a timeline. Points, Labels
// and Stems are index-aligned with the input events.
type Layout struct {
	Points []Point       `json:"points"`
	Labels []Label       `json:"labels"`
	Stems  []Segment     `json:"stems"`
	Spine  Segment       `json:"spine"`
	Bounds Bounds        `json:"bounds"`
	X      Range         `json:"x"`
	Y      Range         `json:"y"`
	Events []model.Event `json:"events"`
}

// Len returns the number of events laid out.
func (l Layout) Len() int { return len(l.Points) }

var (
	ErrNoEvents    = errors.New("layout: no events")
	ErrBadInterval = errors.New("layout: interval must be positive")
	ErrBadXRange   = errors.New("layout: x min must be below x max")
)

// Compute places events top to bottom in input order. Vertical position
// depends only on the row index: event i sits at (N-i)*Interval. Labels
// alternate sides starting on the right of the spine.
func Compute(events []model.Event, opts Options) (Layout, error) {
	if len(events) == 0 {
		return Layout{}, ErrNoEvents
	}
	if opts.Interval <= 0 {
		return Layout{}, ErrBadInterval
	}
	if opts.XMin >= opts.XMax {
		return Layout{}, ErrBadXRange
	}
	if opts.DateFormat == "" {
		opts.DateFormat = DefaultOptions().DateFormat
	}

	n := len(events)
	l := Layout{
		Points: make([]Point, n),
		Labels: make([]Label, n),
		Stems:  make([]Segment, n),
		Events: events,
	}
	for i, ev := range events {
		y := float64(n-i) * opts.Interval
		x, align := opts.LabelOffset, AlignLeft
		if i%2 == 1 {
			x, align = -opts.LabelOffset, AlignRight
		}
		l.Points[i] = Point{X: 0, Y: y}
		l.Labels[i] = Label{X: x, Y: y, Text: FormatLabel(ev, opts), Align: align}
		l.Stems[i] = Segment{From: Point{X: 0, Y: y}, To: Point{X: x, Y: y}}
	}

	top := float64(n+1) * opts.Interval
	l.Spine = Segment{From: Point{X: 0, Y: 0}, To: Point{X: 0, Y: top}}
	l.X = Range{Min: opts.XMin, Max: opts.XMax}
	l.Y = Range{Min: 0, Max: top}
	l.Bounds = ComputeBounds(events)
	return l, nil
}

// FormatLabel renders "DD Mon YYYY:\n<text>" for an event.
func FormatLabel(ev model.Event, opts Options) string {
	layout := opts.DateFormat
	if layout == "" {
		layout = DefaultOptions().DateFormat
	}
	text := ev.Text
	if opts.WrapWidth > 0 {
		text = Wrap(text, opts.WrapWidth)
	}
	return fmt.Sprintf("%s:\n%s", ev.Date.Format(layout), text)
}

// ComputeBounds returns the earliest date one year earlier and the latest
// date one year later, both truncated to midnight. events must be non-empty.
func ComputeBounds(events []model.Event) Bounds {
	lo, hi := events[0].Date, events[0].Date
	for _, ev := range events[1:] {
		if ev.Date.Before(lo) {
			lo = ev.Date
		}
		if ev.Date.After(hi) {
			hi = ev.Date
		}
	}
	return Bounds{Start: shiftYear(lo, -1), End: shiftYear(hi, 1)}
}

// shiftYear moves t by years, keeping month and day. Feb 29 lands on
// Feb 28 when the target year has no leap day.
func shiftYear(t time.Time, years int) time.Time {
	y, m, d := t.Date()
	y += years
	if m == time.February && d == 29 && !isLeap(y) {
		d = 28
	}
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}
