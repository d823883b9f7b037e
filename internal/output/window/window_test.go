package window

import (
	"context"
	"image"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
)

func TestWindowSize(t *testing.T) {
	tests := []struct {
		name         string
		imgW, imgH   int
		maxW, maxH   int
		wantW, wantH int
	}{
		{"fits", 800, 600, 1280, 900, 800, 600},
		{"tall chart cropped", 1152, 3000, 1280, 900, 1152, 900},
		{"wide chart scaled", 2560, 1000, 1280, 900, 1280, 500},
		{"wide and tall", 2560, 4000, 1280, 900, 1280, 900},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := windowSize(tt.imgW, tt.imgH, tt.maxW, tt.maxH)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestViewportHeight(t *testing.T) {
	assert.Equal(t, 500, viewportHeight(1000, 3000, 500, 250))
	assert.Equal(t, 3000, viewportHeight(1000, 3000, 100, 1000))
	assert.Equal(t, 3000, viewportHeight(1000, 3000, 0, 0))
}

func TestClampScroll(t *testing.T) {
	assert.Equal(t, 0.0, clampScroll(-10, 1000, 400))
	assert.Equal(t, 250.0, clampScroll(250, 1000, 400))
	assert.Equal(t, 600.0, clampScroll(5000, 1000, 400))
	assert.Equal(t, 0.0, clampScroll(50, 300, 400))
}

func TestViewerLayoutClampsScroll(t *testing.T) {
	v := newViewer(context.Background(), image.NewRGBA(image.Rect(0, 0, 1000, 3000)))
	v.scroll = 2900

	w, h := v.Layout(500, 500)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 1000, h)
	assert.Equal(t, 2000.0, v.scroll)
}

func TestViewerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v := newViewer(ctx, image.NewRGBA(image.Rect(0, 0, 10, 10)))
	assert.ErrorIs(t, v.Update(), ebiten.Termination)
}
