package file

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/crimson-sun/timeline/internal/metrics"
	"github.com/crimson-sun/timeline/internal/render"
)

const defaultBufSize = 64 * 1024 // 64KB

// Option configures a file Output.
type Option func(*Output)

// WithFormat overrides the format inferred from the file extension.
func WithFormat(format string) Option {
	return func(o *Output) { o.format = format }
}

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(o *Output) { o.bufSize = bytes }
}

// WithMetrics counts every chart written.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Output) { o.metrics = m }
}

// Output writes each chart to a single path. The chart is written to a
// temporary file in the same directory and renamed into place, so a failed
// render never clobbers an existing chart.
type Output struct {
	path    string
	format  string
	bufSize int
	metrics *metrics.Metrics
}

// New creates a file output for path. The format comes from the extension
// unless WithFormat is given.
func New(path string, opts ...Option) (*Output, error) {
	o := &Output{path: path, bufSize: defaultBufSize}
	for _, opt := range opts {
		opt(o)
	}
	if o.format == "" {
		f, err := render.FormatFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("file output: %w", err)
		}
		o.format = f
	}
	return o, nil
}

// Write encodes the chart and atomically replaces the target file.
func (o *Output) Write(_ context.Context, chart *render.Chart) error {
	tmp, err := os.CreateTemp(filepath.Dir(o.path), "."+filepath.Base(o.path)+".*")
	if err != nil {
		return fmt.Errorf("file output: create %s: %w", o.path, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	w := bufio.NewWriterSize(tmp, o.bufSize)
	if err := chart.Encode(w, o.format); err != nil {
		tmp.Close()
		return fmt.Errorf("file output: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("file output: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file output: close: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("file output: chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), o.path); err != nil {
		return fmt.Errorf("file output: rename: %w", err)
	}

	if o.metrics != nil {
		o.metrics.ChartsRendered.WithLabelValues(o.format).Inc()
	}
	slog.Info("chart written", "path", o.path, "format", o.format, "events", chart.Layout.Len())
	return nil
}

// Close is a no-op; every Write is self-contained.
func (o *Output) Close() error {
	return nil
}
