package timeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/crimson-sun/timeline/internal/layout"
	"github.com/crimson-sun/timeline/internal/model"
	"github.com/crimson-sun/timeline/internal/render"
	"github.com/crimson-sun/timeline/internal/source"
	"github.com/crimson-sun/timeline/internal/source/csv"
)

// Timeline loads, lays out and renders event tables.
// Safe for concurrent use.
type Timeline struct {
	opts options
}

// New creates a Timeline with the given options.
func New(opts ...Option) *Timeline {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Timeline{opts: o}
}

// Load reads events from a CSV or TSV file, chosen by extension.
func (t *Timeline) Load(ctx context.Context, path string) ([]Event, error) {
	src, err := source.ForPath(path, t.opts.source)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	evs, err := src.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	return fromModel(evs), nil
}

// Read parses comma-separated events from r.
func (t *Timeline) Read(ctx context.Context, r io.Reader) ([]Event, error) {
	evs, err := csv.New(t.opts.source, ',').Read(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	return fromModel(evs), nil
}

// Layout computes where each event is drawn.
func (t *Timeline) Layout(events []Event) (Layout, error) {
	l, err := layout.Compute(toModel(events), t.opts.layout)
	if err != nil {
		return Layout{}, fmt.Errorf("timeline: %w", err)
	}
	out := Layout{
		Placements: make([]Placement, l.Len()),
		Start:      l.Bounds.Start,
		End:        l.Bounds.End,
	}
	for i, ev := range events {
		out.Placements[i] = Placement{
			Event:  ev,
			X:      l.Points[i].X,
			Y:      l.Points[i].Y,
			LabelX: l.Labels[i].X,
			Label:  l.Labels[i].Text,
			Align:  string(l.Labels[i].Align),
		}
	}
	return out, nil
}

// Render draws events to w in format: png, jpg, tif, svg, pdf or eps.
func (t *Timeline) Render(w io.Writer, format string, events []Event) error {
	l, err := layout.Compute(toModel(events), t.opts.layout)
	if err != nil {
		return fmt.Errorf("timeline: %w", err)
	}
	chart, err := render.New(l, t.opts.style)
	if err != nil {
		return fmt.Errorf("timeline: %w", err)
	}
	if err := chart.Encode(w, format); err != nil {
		return fmt.Errorf("timeline: %w", err)
	}
	return nil
}

// RenderFile loads in and writes the chart to out, inferring the format
// from out's extension.
func (t *Timeline) RenderFile(ctx context.Context, in, out string) error {
	format, err := render.FormatFromPath(out)
	if err != nil {
		return fmt.Errorf("timeline: %w", err)
	}
	events, err := t.Load(ctx, in)
	if err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("timeline: %w", err)
	}
	if err := t.Render(f, format, events); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fromModel(evs []model.Event) []Event {
	out := make([]Event, len(evs))
	for i, e := range evs {
		out[i] = Event{Date: e.Date, Text: e.Text}
	}
	return out
}

func toModel(evs []Event) []model.Event {
	out := make([]model.Event, len(evs))
	for i, e := range evs {
		out[i] = model.Event{Date: e.Date, Text: e.Text}
	}
	return out
}
