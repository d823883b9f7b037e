package timeline

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const table = "timeline,event\n2001-01-01,one\n2002-02-02,two\n2003-03-03,three\n"

func TestReadAndLayout(t *testing.T) {
	tl := New(WithInterval(2))
	events, err := tl.Read(context.Background(), strings.NewReader(table))
	require.NoError(t, err)
	require.Len(t, events, 3)

	l, err := tl.Layout(events)
	require.NoError(t, err)
	require.Len(t, l.Placements, 3)
	assert.Equal(t, 6.0, l.Placements[0].Y)
	assert.Equal(t, 2.0, l.Placements[2].Y)
	assert.Equal(t, "right", l.Placements[1].Align)
	assert.Equal(t, -6.0, l.Placements[1].LabelX)
	assert.Equal(t, "two", l.Placements[1].Text)
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), l.Start)
	assert.Equal(t, time.Date(2004, 3, 3, 0, 0, 0, 0, time.UTC), l.End)
}

func TestOptions(t *testing.T) {
	tl := New(
		WithEncoding("utf-8"),
		WithColumns("when", "what"),
		WithDateFormat("2006-01-02"),
		WithWrap(4),
	)
	events, err := tl.Read(context.Background(), strings.NewReader("what,when\nlong text,2020-05-06\n"))
	require.NoError(t, err)

	l, err := tl.Layout(events)
	require.NoError(t, err)
	assert.Equal(t, "2020-05-06:\nlong\ntext", l.Placements[0].Label)
}

func TestLayoutEmpty(t *testing.T) {
	_, err := New().Layout(nil)
	assert.Error(t, err)
}

func TestRenderPNG(t *testing.T) {
	tl := New(WithSize(3, 2), WithTitle("Small"))
	events, err := tl.Read(context.Background(), strings.NewReader(table))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tl.Render(&buf, "png", events))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 288, img.Bounds().Dx())
	assert.Equal(t, 192, img.Bounds().Dy())
}

func TestRenderStyleMergesDefaults(t *testing.T) {
	s := Style{Title: "Styled", Width: 2, Height: 2, DPI: 20}
	tl := New(WithStyle(s))
	assert.Equal(t, "royalblue", tl.opts.style.LabelColor)
	assert.Equal(t, "Styled", tl.opts.style.Title)
	assert.Equal(t, "Timeline of Events", DefaultStyle().Title)
	assert.False(t, tl.opts.style.HideBounds, "bounds stay framed unless hidden")

	tl = New(WithStyle(Style{HideBounds: true}))
	assert.True(t, tl.opts.style.HideBounds)
	assert.Equal(t, 12.0, tl.opts.style.Width)
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "events.tsv")
	require.NoError(t, os.WriteFile(in, []byte("timeline\tevent\n2020-01-01\tlaunch\n"), 0644))
	out := filepath.Join(dir, "chart.svg")

	require.NoError(t, New(WithSize(3, 2)).RenderFile(context.Background(), in, out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	err = New().RenderFile(context.Background(), in, filepath.Join(dir, "chart.gif"))
	assert.Error(t, err)
	err = New().RenderFile(context.Background(), filepath.Join(dir, "missing.csv"), out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConcurrentRender(t *testing.T) {
	tl := New(WithSize(2, 2))
	events, err := tl.Read(context.Background(), strings.NewReader(table))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = tl.Render(&bytes.Buffer{}, "svg", events)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}
