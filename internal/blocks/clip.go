package blocks

import (
	"github.com/twpayne/go-geom"
)

// segment is a single contour line segment, possibly clipped to a band.
type segment struct {
	x1, y1, x2, y2 float64
}

// clipGeom clips the line parts of g to the band rectangle, returning the
// surviving segments. Non-line geometries contribute nothing.
func clipGeom(g geom.T, b band) []segment {
	var segs []segment
	switch t := g.(type) {
	case *geom.LineString:
		segs = appendClipped(segs, t.FlatCoords(), t.Stride(), b)
	case *geom.MultiLineString:
		for i := 0; i < t.NumLineStrings(); i++ {
			ls := t.LineString(i)
			segs = appendClipped(segs, ls.FlatCoords(), ls.Stride(), b)
		}
	}
	return segs
}

// appendClipped clips each consecutive coordinate pair of a flat coordinate
// sequence against the band rectangle.
func appendClipped(segs []segment, flat []float64, stride int, b band) []segment {
	for i := 0; i+2*stride-1 < len(flat); i += stride {
		s, ok := clipSegment(
			flat[i], flat[i+1],
			flat[i+stride], flat[i+stride+1],
			b.minX, b.minY, b.maxX, b.maxY,
		)
		if ok {
			segs = append(segs, s)
		}
	}
	return segs
}

// clipSegment clips one segment to an axis-aligned rectangle using the
// Liang-Barsky algorithm. ok is false when the segment lies entirely outside.
func clipSegment(x1, y1, x2, y2, minX, minY, maxX, maxY float64) (s segment, ok bool) {
	dx := x2 - x1
	dy := y2 - y1

	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{x1 - minX, maxX - x1, y1 - minY, maxY - y1}

	t0, t1 := 0.0, 1.0
	for i := 0; i < 4; i++ {
		if p[i] == 0 {
			if q[i] < 0 {
				return segment{}, false
			}
			continue
		}
		r := q[i] / p[i]
		if p[i] < 0 {
			if r > t1 {
				return segment{}, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return segment{}, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}

	return segment{
		x1: x1 + t0*dx,
		y1: y1 + t0*dy,
		x2: x1 + t1*dx,
		y2: y1 + t1*dy,
	}, true
}
