// Package vector loads GIS vector layers from shapefiles into go-geom
// geometries, with an R-tree spatial index for bounding-box queries and
// CRS-aware reprojection.
package vector

import (
	"math"
	"os"

	cgeom "github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

var (
	// ErrNotFound indicates the shapefile does not exist.
	ErrNotFound = eris.New("vector: file not found")
	// ErrEmpty indicates the shapefile contains no usable geometries.
	ErrEmpty = eris.New("vector: layer is empty")
	// ErrMalformed indicates the shapefile could not be read.
	ErrMalformed = eris.New("vector: malformed shapefile")
)

// Bounds is a 2D extent.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Feature is a single shapefile record. Attributes are not retained; only
// the geometry matters downstream.
type Feature struct {
	Geom   geom.T
	bounds *cgeom.Bounds
}

// Bounds returns the feature's bounding box.
func (f *Feature) Bounds() *cgeom.Bounds { return f.bounds }

// The remaining cgeom.Geom methods delegate to the cached bounding box so a
// feature can live in the rtree; the index itself only consults Bounds.

func (f *Feature) Similar(g cgeom.Geom, tolerance float64) bool {
	return f.bounds.Similar(g, tolerance)
}

func (f *Feature) Transform(t proj.Transformer) (cgeom.Geom, error) {
	return f.bounds.Transform(t)
}

func (f *Feature) Len() int { return f.bounds.Len() }

func (f *Feature) Points() func() cgeom.Point { return f.bounds.Points() }

// Layer is an immutable collection of features loaded from one shapefile,
// indexed for fast bounding-box intersection queries. The only permitted
// mutation is Reproject, used on advisory border layers before their bounds
// are read.
type Layer struct {
	Path string
	CRS  CRS

	features []*Feature
	index    *rtree.Rtree
	bounds   Bounds
}

// Open reads a shapefile and builds the spatial index.
func Open(path string) (*Layer, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, eris.Wrapf(ErrNotFound, "%s", path)
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(ErrMalformed, "open %s: %v", path, err)
	}
	defer func() { _ = reader.Close() }()

	l := &Layer{Path: path, CRS: readCRS(path)}

	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		g := shapeToGeom(shape)
		if g == nil {
			skipped++
			continue
		}
		l.features = append(l.features, &Feature{Geom: g, bounds: geomBounds(g)})
	}

	if skipped > 0 {
		zap.L().Debug("vector: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	if len(l.features) == 0 {
		return nil, eris.Wrapf(ErrEmpty, "%s", path)
	}

	l.rebuild()
	return l, nil
}

// Len returns the number of features.
func (l *Layer) Len() int { return len(l.features) }

// Features returns the ordered feature list.
func (l *Layer) Features() []*Feature { return l.features }

// Bounds returns the layer's total extent.
func (l *Layer) Bounds() Bounds { return l.bounds }

// Search returns the features whose bounding boxes intersect b. This is a
// prefilter: callers still need an exact geometric test against the results.
func (l *Layer) Search(b Bounds) []*Feature {
	hits := l.index.SearchIntersect(&cgeom.Bounds{
		Min: cgeom.Point{X: b.MinX, Y: b.MinY},
		Max: cgeom.Point{X: b.MaxX, Y: b.MaxY},
	})
	out := make([]*Feature, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*Feature))
	}
	return out
}

// Reproject transforms every feature in place into the target CRS and
// rebuilds the index and bounds. Both CRS must be recognized.
func (l *Layer) Reproject(to CRS) error {
	t, err := l.CRS.Transform(to)
	if err != nil {
		return err
	}

	for _, f := range l.features {
		flat := f.Geom.FlatCoords()
		stride := f.Geom.Stride()
		for i := 0; i+1 < len(flat); i += stride {
			p, err := cgeom.Point{X: flat[i], Y: flat[i+1]}.Transform(t)
			if err != nil {
				return eris.Wrapf(err, "vector: reproject %s", l.Path)
			}
			pt := p.(cgeom.Point)
			flat[i], flat[i+1] = pt.X, pt.Y
		}
		f.bounds = geomBounds(f.Geom)
	}

	l.CRS = to
	l.rebuild()
	return nil
}

// rebuild recomputes the layer bounds and spatial index from the features.
func (l *Layer) rebuild() {
	l.index = rtree.NewTree(25, 50)
	total := Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, f := range l.features {
		l.index.Insert(f)
		total.MinX = math.Min(total.MinX, f.bounds.Min.X)
		total.MinY = math.Min(total.MinY, f.bounds.Min.Y)
		total.MaxX = math.Max(total.MaxX, f.bounds.Max.X)
		total.MaxY = math.Max(total.MaxY, f.bounds.Max.Y)
	}
	l.bounds = total
}

// geomBounds computes a ctessum bounds box from a go-geom geometry's flat
// coordinates.
func geomBounds(g geom.T) *cgeom.Bounds {
	flat := g.FlatCoords()
	stride := g.Stride()
	b := &cgeom.Bounds{
		Min: cgeom.Point{X: math.Inf(1), Y: math.Inf(1)},
		Max: cgeom.Point{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	for i := 0; i+1 < len(flat); i += stride {
		b.Min.X = math.Min(b.Min.X, flat[i])
		b.Min.Y = math.Min(b.Min.Y, flat[i+1])
		b.Max.X = math.Max(b.Max.X, flat[i])
		b.Max.Y = math.Max(b.Max.Y, flat[i+1])
	}
	return b
}
