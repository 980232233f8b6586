// Package clipboard copies exported drawings to the system clipboard.
package clipboard

import "errors"

// ErrNoDisplay is returned when no X11 or Wayland display is available.
var ErrNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
