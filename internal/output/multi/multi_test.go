package multi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/timeline/internal/layout"
	"github.com/crimson-sun/timeline/internal/render"
)

// mockOutput records calls for test assertions.
type mockOutput struct {
	charts []*render.Chart
	closed bool
	err    error // if set, Write and Close return this error
}

func (m *mockOutput) Write(_ context.Context, chart *render.Chart) error {
	m.charts = append(m.charts, chart)
	return m.err
}

func (m *mockOutput) Close() error {
	m.closed = true
	return m.err
}

func testChart() *render.Chart {
	return &render.Chart{Layout: layout.Layout{Points: make([]layout.Point, 2)}}
}

func TestFanOutDeliversToAll(t *testing.T) {
	a, b, c := &mockOutput{}, &mockOutput{}, &mockOutput{}
	m := New(a, b, c)

	chart := testChart()
	require.NoError(t, m.Write(context.Background(), chart))

	for i, out := range []*mockOutput{a, b, c} {
		require.Len(t, out.charts, 1, "output %d", i)
		assert.Same(t, chart, out.charts[0], "output %d", i)
	}
}

func TestErrorDoesNotPreventDelivery(t *testing.T) {
	failing := &mockOutput{err: errors.New("disk full")}
	healthy := &mockOutput{}
	m := New(failing, healthy)

	err := m.Write(context.Background(), testChart())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Len(t, healthy.charts, 1)
	assert.Len(t, failing.charts, 1)
}

func TestCloseCallsAllOutputs(t *testing.T) {
	a, b := &mockOutput{}, &mockOutput{}
	require.NoError(t, New(a, b).Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestCloseCollectsErrors(t *testing.T) {
	a := &mockOutput{err: errors.New("err-a")}
	b := &mockOutput{err: errors.New("err-b")}

	err := New(a, b).Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "err-a")
	assert.Contains(t, err.Error(), "err-b")
	assert.True(t, a.closed && b.closed, "Close should reach every output")
}

func TestEmptyMultiIsNoop(t *testing.T) {
	m := New()
	assert.NoError(t, m.Write(context.Background(), testChart()))
	assert.NoError(t, m.Close())
}
