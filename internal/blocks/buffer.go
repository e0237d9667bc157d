package blocks

import (
	"math"

	cgeom "github.com/ctessum/geom"
)

// capSegments is the number of arc steps approximating each semicircular
// end cap of a buffered segment.
const capSegments = 8

// bufferSegments buffers every segment by radius r and unions the results
// into one polygon. The union of per-segment round-capped buffers equals the
// round-join buffer of the original polylines.
func bufferSegments(segs []segment, r float64) cgeom.Polygon {
	var union cgeom.Polygon
	for _, s := range segs {
		c := capsule(s, r)
		if union == nil {
			union = c
			continue
		}
		union = union.Union(c).(cgeom.Polygon)
	}
	return union
}

// capsule returns the round-capped buffer polygon of one segment: a rectangle
// along the segment closed by two approximated semicircles. A zero-length
// segment buffers to a full circle.
func capsule(s segment, r float64) cgeom.Polygon {
	dx := s.x2 - s.x1
	dy := s.y2 - s.y1

	if dx == 0 && dy == 0 {
		ring := make([]cgeom.Point, 0, 2*capSegments)
		for i := 0; i < 2*capSegments; i++ {
			a := 2 * math.Pi * float64(i) / float64(2*capSegments)
			ring = append(ring, cgeom.Point{X: s.x1 + r*math.Cos(a), Y: s.y1 + r*math.Sin(a)})
		}
		return cgeom.Polygon{ring}
	}

	theta := math.Atan2(dy, dx)
	ring := make([]cgeom.Point, 0, 2*(capSegments+1))

	// Cap around the end point, sweeping counterclockwise from the right
	// side of the segment to the left.
	for i := 0; i <= capSegments; i++ {
		a := theta - math.Pi/2 + math.Pi*float64(i)/capSegments
		ring = append(ring, cgeom.Point{X: s.x2 + r*math.Cos(a), Y: s.y2 + r*math.Sin(a)})
	}
	// Cap around the start point.
	for i := 0; i <= capSegments; i++ {
		a := theta + math.Pi/2 + math.Pi*float64(i)/capSegments
		ring = append(ring, cgeom.Point{X: s.x1 + r*math.Cos(a), Y: s.y1 + r*math.Sin(a)})
	}

	return cgeom.Polygon{ring}
}
