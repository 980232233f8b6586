package sketch

import "github.com/example/sketchpad/internal/canvas"

// RenderFull clears s and repaints it from scratch: committed drawables
// oldest first, then the transient object on top. The surface keeps no
// per-object state between frames.
func RenderFull(s *canvas.Surface, committed []Drawable, transient canvas.Paintable) {
	s.Clear()
	for _, d := range committed {
		if d != nil {
			d.Render(s)
		}
	}
	if transient != nil {
		transient.Render(s)
	}
}
