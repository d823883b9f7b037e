package output

import (
	"context"

	"github.com/crimson-sun/timeline/internal/render"
)

// Output defines the interface for chart destinations.
type Output interface {
	// Write delivers a rendered chart. Interactive outputs block until
	// the user is done or ctx is cancelled.
	Write(ctx context.Context, chart *render.Chart) error
	Close() error
}
