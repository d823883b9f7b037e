package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crimson-sun/timeline/internal/layout"
	"github.com/crimson-sun/timeline/internal/metrics"
	"github.com/crimson-sun/timeline/internal/output"
	"github.com/crimson-sun/timeline/internal/render"
	"github.com/crimson-sun/timeline/internal/source"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics counts loaded events.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// Pipeline connects a source, the layout and render stages, and an output.
type Pipeline struct {
	source  source.Source
	layout  layout.Options
	style   render.Style
	output  output.Output
	metrics *metrics.Metrics
}

// New creates a Pipeline from the given components.
func New(src source.Source, opts layout.Options, style render.Style, out output.Output, options ...Option) *Pipeline {
	p := &Pipeline{
		source: src,
		layout: opts,
		style:  style,
		output: out,
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Build loads the table at path and returns the rendered chart.
func (p *Pipeline) Build(ctx context.Context, path string) (*render.Chart, error) {
	events, err := p.source.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("pipeline load: %w", err)
	}
	if p.metrics != nil {
		p.metrics.EventsLoaded.Add(float64(len(events)))
	}
	slog.Debug("events loaded", "path", path, "count", len(events))

	lay, err := layout.Compute(events, p.layout)
	if err != nil {
		return nil, fmt.Errorf("pipeline layout: %w", err)
	}
	slog.Debug("layout computed",
		"events", lay.Len(),
		"start", lay.Bounds.Start.Format("2006-01-02"),
		"end", lay.Bounds.End.Format("2006-01-02"))

	chart, err := render.New(lay, p.style)
	if err != nil {
		return nil, fmt.Errorf("pipeline render: %w", err)
	}
	return chart, nil
}

// Run builds the chart for path and hands it to the output. Interactive
// outputs make Run block until they finish.
func (p *Pipeline) Run(ctx context.Context, path string) error {
	chart, err := p.Build(ctx, path)
	if err != nil {
		return err
	}
	if err := p.output.Write(ctx, chart); err != nil {
		return fmt.Errorf("pipeline output: %w", err)
	}
	return nil
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	return p.output.Close()
}
