// Package blocks implements the topographic block design engine. It
// partitions a contour layer's extent into three vertical color bands, cuts
// the buffered contour lines out of each band, and renders the resulting
// stencil shapes to PNG.
package blocks

import (
	cgeom "github.com/ctessum/geom"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mtnprints/topoblocks/internal/vector"
)

// DefaultColors is the monochrome triple used when no colors are given.
var DefaultColors = []string{"#1A1A1A", "#333333", "#4D4D4D"}

// BackgroundTransparent is the sentinel background value for a fully
// transparent canvas.
const BackgroundTransparent = "transparent"

// Options holds every knob of a single design run.
type Options struct {
	// Colors are the three band fills, left to right. Nil means DefaultColors.
	Colors []string
	// GapPercent is the gap between bands as a fraction of total width,
	// in [0, 0.5].
	GapPercent float64
	// DPI is the output raster resolution. Must be positive.
	DPI int
	// FigWidth and FigHeight are the canvas size in inches.
	FigWidth, FigHeight float64
	// LineWidth controls the contour cutout width. The buffer radius is
	// LineWidth times a five-hundredth of the extent width, so the visual
	// thickness tracks the data's real-world extent rather than pixel count.
	LineWidth float64
	// Background is a hex color or BackgroundTransparent.
	Background string
	// TextSize is the label font size in points; 0 derives it from the
	// figure dimensions when Adaptive is set, and falls back to 24 otherwise.
	TextSize float64
	// Adaptive enables figure-relative label sizing.
	Adaptive bool
	// ShowText toggles the label overlay.
	ShowText bool
}

// DefaultOptions returns the standard print-oriented parameters.
func DefaultOptions() Options {
	return Options{
		GapPercent: 0.005,
		DPI:        300,
		FigWidth:   12,
		FigHeight:  12,
		LineWidth:  0.8,
		Background: BackgroundTransparent,
		Adaptive:   true,
		ShowText:   true,
	}
}

// validate rejects out-of-range parameters before any I/O happens.
func (o Options) validate() error {
	if len(o.Colors) != 3 {
		return eris.Wrapf(ErrInvalidParameter, "exactly 3 colors required, got %d", len(o.Colors))
	}
	if o.GapPercent < 0 || o.GapPercent > 0.5 {
		return eris.Wrapf(ErrInvalidParameter, "gap percent %g outside [0, 0.5]", o.GapPercent)
	}
	if o.DPI <= 0 {
		return eris.Wrapf(ErrInvalidParameter, "dpi must be positive, got %d", o.DPI)
	}
	return nil
}

// Designer holds the loaded contour and optional border layers and the
// validated working extent. It is immutable after construction; every design
// call recomputes its bands and cutouts from scratch.
type Designer struct {
	contours *vector.Layer
	border   *vector.Layer
	bounds   vector.Bounds
	width    float64
	height   float64
}

// NewDesigner loads the contour layer (mandatory) and border layer
// (advisory). A missing, empty, or unreadable border is logged and dropped.
// When the border CRS differs from the contour CRS the border is reprojected;
// the contour layer is never reprojected. The working extent comes from the
// border when present, the contours otherwise.
func NewDesigner(contourPath, borderPath string) (*Designer, error) {
	log := zap.L().With(zap.String("component", "blocks.designer"))

	contours, err := vector.Open(contourPath)
	if err != nil {
		return nil, eris.Wrap(err, "blocks: load contour layer")
	}

	var border *vector.Layer
	if borderPath != "" {
		b, err := vector.Open(borderPath)
		if err != nil {
			log.Warn("ignoring border layer", zap.String("path", borderPath), zap.Error(err))
		} else {
			border = b
		}
	}

	if border != nil && !border.CRS.Equal(contours.CRS) {
		if err := border.Reproject(contours.CRS); err != nil {
			log.Warn("cannot reproject border layer, ignoring",
				zap.String("path", border.Path), zap.Error(err))
			border = nil
		} else {
			log.Debug("reprojected border to contour CRS")
		}
	}

	bounds := contours.Bounds()
	if border != nil {
		bounds = border.Bounds()
	}

	w, h := bounds.Width(), bounds.Height()
	if w <= 0 || h <= 0 {
		return nil, eris.Wrapf(ErrInvalidGeometry, "width=%g height=%g", w, h)
	}

	if contours.CRS.Geographic() {
		// Buffer radii stay planar in degree units. The resulting line
		// thickness is an approximation that matches the extent-relative
		// radius formula, so output is consistent across latitudes.
		log.Debug("contour CRS is geographic; buffering uses planar degree distances")
	}

	return &Designer{
		contours: contours,
		border:   border,
		bounds:   bounds,
		width:    w,
		height:   h,
	}, nil
}

// Bounds returns the working extent.
func (d *Designer) Bounds() vector.Bounds { return d.bounds }

// cutout is the computed geometry for one band.
type cutout struct {
	band band
	// solid means no contours intersect the band: render the full rectangle.
	solid bool
	// poly is the band minus the buffered contour union. Empty when the
	// contours consumed the whole band, which skips rendering.
	poly cgeom.Polygon
}

// computeCutout runs the two-phase clip for one band: a bounding-box
// prefilter via the contour layer's spatial index, then an exact clip of each
// candidate against the band rectangle. Surviving segments are buffered,
// unioned, and subtracted from the band.
func (d *Designer) computeCutout(b band, lineWidth float64) cutout {
	candidates := d.contours.Search(b.bounds())
	if len(candidates) == 0 {
		return cutout{band: b, solid: true}
	}

	var segs []segment
	for _, f := range candidates {
		segs = append(segs, clipGeom(f.Geom, b)...)
	}
	if len(segs) == 0 {
		return cutout{band: b, solid: true}
	}

	radius := lineWidth * (d.width / 500)
	if radius <= 0 {
		return cutout{band: b, poly: b.rect()}
	}

	union := bufferSegments(segs, radius)

	// Clipped segments and capsule cap vertices land exactly on the band
	// edges, and polyclip degenerates to an empty result when subtrahend
	// vertices coincide with the minuend boundary. Subtracting from a band
	// grown by a vanishing extent-relative margin keeps the vertices strictly
	// interior.
	grown := b
	eps := d.width * 1e-9
	grown.minX -= eps
	grown.minY -= eps
	grown.maxX += eps
	grown.maxY += eps

	return cutout{band: b, poly: grown.rect().Difference(union).(cgeom.Polygon)}
}

// CreateBlockDesign renders the three-band cutout design for this designer's
// layers into a PNG at outputPath. An empty name suppresses the label
// overlay. Parameters are validated before any filesystem side effect.
func (d *Designer) CreateBlockDesign(name, outputPath string, opts Options) error {
	if opts.Colors == nil {
		opts.Colors = DefaultColors
	}
	if err := opts.validate(); err != nil {
		return err
	}

	bands := computeBands(d.bounds, opts.GapPercent, opts.Colors)

	var cuts [3]cutout
	for i, b := range bands {
		cuts[i] = d.computeCutout(b, opts.LineWidth)
	}

	if err := d.render(outputPath, name, cuts, opts); err != nil {
		return err
	}

	zap.L().Debug("design saved",
		zap.String("name", name),
		zap.String("path", outputPath),
	)
	return nil
}
