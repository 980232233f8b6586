package export

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"math"

	"github.com/jung-kurt/gofpdf"

	"github.com/example/sketchpad/internal/canvas"
)

// PDF renders items onto a single page measuring the export size in points.
// Strokes become vector paths; stickers are embedded as rotated raster tiles.
func (e *Exporter) PDF(items []canvas.Paintable) ([]byte, error) {
	w, h := e.Size()
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(w), Ht: float64(h)},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("sketchpad", true)
	pdf.AddPage()
	p := &pdfPainter{pdf: pdf, scale: e.scale, fonts: e.fonts}
	if e.background.A > 0 {
		p.setFill(e.background)
		pdf.Rect(0, 0, float64(w), float64(h), "F")
		p.resetAlpha()
	}
	for _, it := range items {
		if it != nil {
			it.Render(p)
		}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfPainter struct {
	pdf    *gofpdf.Fpdf
	scale  float64
	fonts  *canvas.FontSet
	images int
	alpha  bool
}

var _ canvas.Painter = (*pdfPainter)(nil)

func (p *pdfPainter) StrokePolyline(pts []canvas.Point, width float64, col color.Color) {
	if len(pts) < 2 || width <= 0 {
		return
	}
	p.setDraw(col)
	p.pdf.SetLineWidth(width * p.scale)
	p.pdf.SetLineCapStyle("butt")
	p.pdf.SetLineJoinStyle("round")
	p.pdf.MoveTo(pts[0].X*p.scale, pts[0].Y*p.scale)
	for _, pt := range pts[1:] {
		p.pdf.LineTo(pt.X*p.scale, pt.Y*p.scale)
	}
	p.pdf.DrawPath("D")
	p.resetAlpha()
}

func (p *pdfPainter) StrokeCircle(c canvas.Point, r float64, col color.Color) {
	if r < 0 || !c.Finite() {
		return
	}
	p.setDraw(col)
	p.pdf.SetLineWidth(p.scale)
	p.pdf.Circle(c.X*p.scale, c.Y*p.scale, r*p.scale, "D")
	p.resetAlpha()
}

func (p *pdfPainter) DrawGlyph(glyph string, c canvas.Point, rotation, size float64, fill color.Color) error {
	if !c.Finite() || size <= 0 {
		return nil
	}
	outline := int(math.Max(1, math.Round(p.scale)))
	tile, err := p.fonts.GlyphTile(glyph, size*p.scale, outline, fill)
	if err != nil {
		p.pdf.SetError(err)
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, tile); err != nil {
		p.pdf.SetError(err)
		return err
	}
	p.images++
	name := fmt.Sprintf("glyph-%d", p.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.pdf.RegisterImageOptionsReader(name, opts, &buf)
	tw, th := float64(tile.Bounds().Dx()), float64(tile.Bounds().Dy())
	cx, cy := c.X*p.scale, c.Y*p.scale
	p.pdf.TransformBegin()
	// gofpdf rotates counter-clockwise
	p.pdf.TransformRotate(-rotation, cx, cy)
	p.pdf.ImageOptions(name, cx-tw/2, cy-th/2, tw, th, false, opts, 0, "")
	p.pdf.TransformEnd()
	return nil
}

func (p *pdfPainter) SetError(err error) { p.pdf.SetError(err) }

func (p *pdfPainter) setDraw(col color.Color) {
	n := color.NRGBAModel.Convert(col).(color.NRGBA)
	p.pdf.SetDrawColor(int(n.R), int(n.G), int(n.B))
	if n.A < 255 {
		p.pdf.SetAlpha(float64(n.A)/255, "Normal")
		p.alpha = true
	}
}

func (p *pdfPainter) setFill(col color.Color) {
	n := color.NRGBAModel.Convert(col).(color.NRGBA)
	p.pdf.SetFillColor(int(n.R), int(n.G), int(n.B))
	if n.A < 255 {
		p.pdf.SetAlpha(float64(n.A)/255, "Normal")
		p.alpha = true
	}
}

func (p *pdfPainter) resetAlpha() {
	if p.alpha {
		p.pdf.SetAlpha(1, "Normal")
		p.alpha = false
	}
}
