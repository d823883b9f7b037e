package window

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/crimson-sun/timeline/internal/render"
)

const (
	defaultMaxWidth  = 1280
	defaultMaxHeight = 900
	wheelStep        = 40 // pixels per wheel notch
	keyStep          = 12 // pixels per frame while an arrow key is held
)

// Option configures a window Output.
type Option func(*Output)

// WithMaxSize caps the initial window size in pixels.
func WithMaxSize(w, h int) Option {
	return func(o *Output) { o.maxW, o.maxH = w, h }
}

// Output shows the chart in a desktop window. Write blocks until the
// window is closed, Esc or q is pressed, or ctx is cancelled. It must be
// called from the main goroutine.
type Output struct {
	title      string
	maxW, maxH int
}

// New creates a window Output with the given title.
func New(title string, opts ...Option) *Output {
	o := &Output{title: title, maxW: defaultMaxWidth, maxH: defaultMaxHeight}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Output) Write(ctx context.Context, chart *render.Chart) error {
	img := chart.Image()
	b := img.Bounds()
	w, h := windowSize(b.Dx(), b.Dy(), o.maxW, o.maxH)

	ebiten.SetWindowTitle(o.title)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(30)

	slog.Debug("opening chart window", "width", w, "height", h, "image", b.Size())
	err := ebiten.RunGame(newViewer(ctx, img))
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("window output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}

// viewer is an ebiten.Game that scrolls a chart vertically.
type viewer struct {
	ctx    context.Context
	src    image.Image
	img    *ebiten.Image
	width  int
	height int
	view   int // logical viewport height
	scroll float64
}

func newViewer(ctx context.Context, src image.Image) *viewer {
	b := src.Bounds()
	return &viewer{ctx: ctx, src: src, width: b.Dx(), height: b.Dy(), view: b.Dy()}
}

func (v *viewer) Update() error {
	if v.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	_, dy := ebiten.Wheel()
	delta := -dy * wheelStep
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowDown):
		delta += keyStep
	case ebiten.IsKeyPressed(ebiten.KeyArrowUp):
		delta -= keyStep
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown), inpututil.IsKeyJustPressed(ebiten.KeySpace):
		delta += float64(v.view)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		delta -= float64(v.view)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		delta = -v.scroll
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		delta = float64(v.height)
	}
	v.scroll = clampScroll(v.scroll+delta, v.height, v.view)
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	if v.img == nil {
		v.img = ebiten.NewImageFromImage(v.src)
	}
	screen.Fill(color.White)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(0, -v.scroll)
	screen.DrawImage(v.img, op)
}

// Layout keeps the chart at full width and shows as much of its height as
// the window's aspect ratio allows.
func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.view = viewportHeight(v.width, v.height, outsideWidth, outsideHeight)
	v.scroll = clampScroll(v.scroll, v.height, v.view)
	return v.width, v.view
}

// windowSize fits an image into maxW x maxH, keeping the full width
// visible and cropping the height when the chart is tall.
func windowSize(imgW, imgH, maxW, maxH int) (int, int) {
	w, h := imgW, imgH
	if w > maxW {
		h = h * maxW / w
		w = maxW
	}
	if h > maxH {
		h = maxH
	}
	return max(w, 1), max(h, 1)
}

func viewportHeight(imgW, imgH, outW, outH int) int {
	if outW <= 0 || outH <= 0 {
		return imgH
	}
	return max(min(imgH, imgW*outH/outW), 1)
}

func clampScroll(scroll float64, content, view int) float64 {
	limit := float64(content - view)
	if limit < 0 {
		limit = 0
	}
	return min(max(scroll, 0), limit)
}
