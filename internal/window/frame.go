package window

import (
	"context"
	"image"
	"image/draw"

	"github.com/example/sketchpad/internal/canvas"
)

const checkerSize = 8

// frameState is the snapshot of window state a frame is painted from.
type frameState struct {
	width, height int
	hover         string
	status        string
}

// drawFrame paints the checkerboard backdrop, the session and the shortcut
// bar into dst. It returns false if ctx was cancelled part way.
func (w *Window) drawFrame(ctx context.Context, dst *image.RGBA, surface *canvas.Surface, st frameState) bool {
	canvas.DrawCheckerboard(dst, dst.Bounds(), checkerSize, w.light, w.dark)
	if ctx.Err() != nil {
		return false
	}
	w.session.Render(surface)
	if ctx.Err() != nil {
		return false
	}
	img := surface.Image()
	draw.Draw(dst, w.canvasRect, img, img.Bounds().Min, draw.Over)
	drawShortcuts(dst, w.shortcuts, st.hover, st.status, w.barBG)
	return ctx.Err() == nil
}
