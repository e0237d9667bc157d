package blocks

import (
	cgeom "github.com/ctessum/geom"

	"github.com/mtnprints/topoblocks/internal/vector"
)

// band is one of the three equal-width vertical partitions of the working
// extent, together with its fill color.
type band struct {
	index                  int
	minX, minY, maxX, maxY float64
	color                  string
}

// computeBands partitions the extent into three bands separated by two gaps
// of gapPercent times the total width, ordered left to right. The invariant
// is 3*bandWidth + 2*gapSize == width.
func computeBands(b vector.Bounds, gapPercent float64, colors []string) [3]band {
	gap := b.Width() * gapPercent
	bandWidth := (b.Width() - 2*gap) / 3

	var bands [3]band
	for i := 0; i < 3; i++ {
		left := b.MinX + float64(i)*(bandWidth+gap)
		bands[i] = band{
			index: i,
			minX:  left,
			minY:  b.MinY,
			maxX:  left + bandWidth,
			maxY:  b.MaxY,
			color: colors[i],
		}
	}
	return bands
}

// rect returns the band rectangle as a polygon.
func (b band) rect() cgeom.Polygon {
	return cgeom.Polygon{{
		{X: b.minX, Y: b.minY},
		{X: b.maxX, Y: b.minY},
		{X: b.maxX, Y: b.maxY},
		{X: b.minX, Y: b.maxY},
	}}
}

// bounds returns the band's extent for spatial-index queries.
func (b band) bounds() vector.Bounds {
	return vector.Bounds{MinX: b.minX, MinY: b.minY, MaxX: b.maxX, MaxY: b.maxY}
}

// area returns the band rectangle's area.
func (b band) area() float64 {
	return (b.maxX - b.minX) * (b.maxY - b.minY)
}
