//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"os"
	"sync"
)

var (
	initOnce       sync.Once
	initErr        error
	errCGODisabled = errors.New("clipboard operations require cgo support")
)

func ensureInit() error {
	initOnce.Do(func() {
		if hasDisplay() {
			initErr = errCGODisabled
			return
		}
		initErr = ErrNoDisplay
	})
	return initErr
}

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

func WritePNG([]byte) error {
	return ensureInit()
}
