package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/timeline/internal/output"
	"github.com/crimson-sun/timeline/internal/render"
)

// Multi fans out charts to multiple output.Output implementations.
// Each Write call delivers the chart to every wrapped output sequentially,
// in the order given, so blocking outputs such as a window belong last.
// If one output fails, the remaining outputs still receive the chart.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi that fans out to the given outputs.
func New(outputs ...output.Output) *Multi {
	return &Multi{outputs: outputs}
}

// Write delivers the chart to every wrapped output. Errors are collected
// but do not prevent delivery to subsequent outputs.
func (m *Multi) Write(ctx context.Context, chart *render.Chart) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Write(ctx, chart); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on every wrapped output, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
