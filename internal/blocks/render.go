package blocks

import (
	"math"
	"os"
	"path/filepath"

	cgeom "github.com/ctessum/geom"
	"github.com/fogleman/gg"
	"github.com/rotisserie/eris"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// labelColor is the fill for the name overlay.
const labelColor = "#FFFFFF"

// render rasterizes the three cutouts (and optional label) onto a canvas of
// FigWidth x FigHeight inches at the requested DPI and writes it as PNG.
func (d *Designer) render(path, label string, cuts [3]cutout, opts Options) error {
	canvasW := int(opts.FigWidth * float64(opts.DPI))
	canvasH := int(opts.FigHeight * float64(opts.DPI))
	if canvasW < 1 || canvasH < 1 {
		return eris.Wrapf(ErrInvalidParameter, "degenerate canvas %dx%d", canvasW, canvasH)
	}
	pad := 0.1 * float64(opts.DPI)

	showLabel := label != "" && opts.ShowText

	// World window. When a label is drawn the window extends below the bands
	// to make room for it.
	yLow := d.bounds.MinY
	if showLabel {
		yLow -= d.height * 0.06
	}
	worldW := d.width
	worldH := d.bounds.MaxY - yLow

	scale := math.Min(
		(float64(canvasW)-2*pad)/worldW,
		(float64(canvasH)-2*pad)/worldH,
	)
	offX := (float64(canvasW) - worldW*scale) / 2
	offY := (float64(canvasH) - worldH*scale) / 2

	toX := func(x float64) float64 { return offX + (x-d.bounds.MinX)*scale }
	toY := func(y float64) float64 { return float64(canvasH) - offY - (y-yLow)*scale }

	dc := gg.NewContext(canvasW, canvasH)
	if opts.Background != BackgroundTransparent && opts.Background != "" {
		dc.SetHexColor(opts.Background)
		dc.Clear()
	}

	dc.SetFillRule(gg.FillRuleEvenOdd)
	for _, c := range cuts {
		poly := c.poly
		if c.solid {
			poly = c.band.rect()
		}
		if len(poly) == 0 {
			continue
		}
		dc.SetHexColor(c.band.color)
		fillPolygon(dc, poly, toX, toY)
	}

	if showLabel {
		face, err := labelFace(labelSize(opts), opts.DPI)
		if err != nil {
			return eris.Wrap(err, "blocks: load label font")
		}
		dc.SetFontFace(face)
		dc.SetHexColor(labelColor)
		// Right-aligned at the extent's right edge, just below the bands.
		dc.DrawStringAnchored(label,
			toX(d.bounds.MaxX),
			toY(d.bounds.MinY-d.height*0.02),
			1, 1,
		)
	}

	return writePNG(dc, path)
}

// fillPolygon draws every ring of poly as a subpath and fills with the
// even-odd rule so holes render as holes.
func fillPolygon(dc *gg.Context, poly cgeom.Polygon, toX, toY func(float64) float64) {
	for _, ring := range poly {
		for i, p := range ring {
			if i == 0 {
				dc.MoveTo(toX(p.X), toY(p.Y))
			} else {
				dc.LineTo(toX(p.X), toY(p.Y))
			}
		}
		dc.ClosePath()
	}
	dc.Fill()
}

// labelSize resolves the label font size in points. An explicit TextSize
// wins; adaptive sizing scales with the smaller figure dimension, clamped to
// [12, 48]; otherwise the fixed fallback is 24.
func labelSize(opts Options) float64 {
	if opts.TextSize > 0 {
		return opts.TextSize
	}
	if opts.Adaptive {
		return math.Max(12, math.Min(48, 3*math.Min(opts.FigWidth, opts.FigHeight)))
	}
	return 24
}

// labelFace builds a font face for the given point size at the output DPI.
func labelFace(points float64, dpi int) (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, eris.Wrap(err, "parse font")
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    points,
		DPI:     float64(dpi),
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, eris.Wrap(err, "build font face")
	}
	return face, nil
}

// writePNG encodes the canvas to path, creating parent directories as needed.
// The image is staged in a temp file and renamed into place so a failed
// encode never leaves a partial design behind.
func writePNG(dc *gg.Context, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".topoblocks-*.png")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	if err := dc.EncodePNG(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
