package config

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/example/sketchpad/internal/canvas"
)

// Notify holds notification settings.
type Notify struct {
	Export bool `toml:"export"`
	Copy   bool `toml:"copy"`
}

// Window holds colours used by the drawing window around the canvas.
type Window struct {
	CheckerLight  string `toml:"checker_light"`
	CheckerDark   string `toml:"checker_dark"`
	BarBackground string `toml:"bar_background"`
}

// Config holds the application configuration.
type Config struct {
	Width            int       `toml:"width"`
	Height           int       `toml:"height"`
	ExportScale      float64   `toml:"export_scale"`
	Background       string    `toml:"background"`
	Thickness        float64   `toml:"thickness"`
	Color            string    `toml:"color"`
	ThicknessOptions []float64 `toml:"thickness_options"`
	Stickers         []string  `toml:"stickers"`
	StickerSize      float64   `toml:"sticker_size"`
	StickerFont      string    `toml:"sticker_font"`
	OutputDir        string    `toml:"output_dir"`
	Notify           Notify    `toml:"notify"`
	Window           Window    `toml:"window"`
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Width:            256,
		Height:           256,
		ExportScale:      4,
		Background:       "#00000000",
		Thickness:        2,
		Color:            "#000000",
		ThicknessOptions: []float64{2, 5, 10},
		Stickers:         []string{"🙂", "⭐", "🎉"},
		StickerSize:      32,
		OutputDir:        ".",
		Window: Window{
			CheckerLight:  "#DCDCDC",
			CheckerDark:   "#C0C0C0",
			BarBackground: "#DCDCDC",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("width: must be positive, got %d", c.Width)
	}
	if c.Height <= 0 {
		return fmt.Errorf("height: must be positive, got %d", c.Height)
	}
	if !positive(c.ExportScale) {
		return fmt.Errorf("export_scale: must be a positive number, got %v", c.ExportScale)
	}
	if !positive(c.Thickness) {
		return fmt.Errorf("thickness: must be a positive number, got %v", c.Thickness)
	}
	for i, t := range c.ThicknessOptions {
		if !positive(t) {
			return fmt.Errorf("thickness_options[%d]: must be a positive number, got %v", i, t)
		}
	}
	if !positive(c.StickerSize) {
		return fmt.Errorf("sticker_size: must be a positive number, got %v", c.StickerSize)
	}
	for i, s := range c.Stickers {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("stickers[%d]: glyph is empty", i)
		}
	}
	colors := []struct{ key, value string }{
		{"background", c.Background},
		{"color", c.Color},
		{"window.checker_light", c.Window.CheckerLight},
		{"window.checker_dark", c.Window.CheckerDark},
		{"window.bar_background", c.Window.BarBackground},
	}
	for _, kv := range colors {
		if _, err := canvas.ParseColor(kv.value); err != nil {
			return fmt.Errorf("%s: %w", kv.key, err)
		}
	}
	return nil
}

// BackgroundColor returns the parsed canvas background.
func (c *Config) BackgroundColor() color.RGBA { return colorOr(c.Background, color.RGBA{}) }

// DrawColor returns the parsed initial drawing colour.
func (c *Config) DrawColor() color.RGBA { return colorOr(c.Color, color.RGBA{A: 255}) }

// CheckerLight returns the light square colour behind the canvas.
func (c *Config) CheckerLight() color.RGBA {
	return colorOr(c.Window.CheckerLight, color.RGBA{R: 220, G: 220, B: 220, A: 255})
}

// CheckerDark returns the dark square colour behind the canvas.
func (c *Config) CheckerDark() color.RGBA {
	return colorOr(c.Window.CheckerDark, color.RGBA{R: 192, G: 192, B: 192, A: 255})
}

// BarBackground returns the shortcut bar colour.
func (c *Config) BarBackground() color.RGBA {
	return colorOr(c.Window.BarBackground, color.RGBA{R: 220, G: 220, B: 220, A: 255})
}

func colorOr(s string, fallback color.RGBA) color.RGBA {
	col, err := canvas.ParseColor(s)
	if err != nil {
		return fallback
	}
	return col
}

// String implements fmt.Stringer and returns the configuration as TOML.
func (c *Config) String() string {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Sprintf("# encode config: %v\n", err)
	}
	return sb.String()
}

// positive reports whether v is finite and greater than zero.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
