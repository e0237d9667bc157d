package blocks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtnprints/topoblocks/internal/vector"
)

const wgs84WKT = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

const mercatorWKT = `PROJCS["WGS_1984_Web_Mercator_Auxiliary_Sphere",GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Mercator_Auxiliary_Sphere"],UNIT["Meter",1.0]]`

func writeLineShapefile(t *testing.T, path string, lines [][]shp.Point) {
	t.Helper()
	w, err := shp.Create(path, shp.POLYLINE)
	require.NoError(t, err)
	w.SetFields([]shp.Field{shp.StringField("ELEV", 10)})
	for i, pts := range lines {
		w.Write(shp.NewPolyLine([][]shp.Point{pts}))
		w.WriteAttribute(i, 0, fmt.Sprintf("%d", i*100))
	}
	w.Close()
}

func writeBorderShapefile(t *testing.T, path string, minX, minY, maxX, maxY float64) {
	t.Helper()
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	w.SetFields([]shp.Field{shp.StringField("NAME", 10)})
	ring := []shp.Point{
		{X: minX, Y: minY}, {X: minX, Y: maxY},
		{X: maxX, Y: maxY}, {X: maxX, Y: minY},
		{X: minX, Y: minY},
	}
	w.Write((*shp.Polygon)(shp.NewPolyLine([][]shp.Point{ring})))
	w.WriteAttribute(0, 0, "border")
	w.Close()
}

func writePrj(t *testing.T, shpPath, wkt string) {
	t.Helper()
	prj := shpPath[:len(shpPath)-len(".shp")] + ".prj"
	require.NoError(t, os.WriteFile(prj, []byte(wkt), 0o644))
}

// scenarioDesigner builds a designer over a 30x10 border extent with a single
// horizontal contour line crossing all three bands at y=5.
func scenarioDesigner(t *testing.T) *Designer {
	t.Helper()
	dir := t.TempDir()
	contour := filepath.Join(dir, "contours.shp")
	border := filepath.Join(dir, "border.shp")
	writeLineShapefile(t, contour, [][]shp.Point{{{X: 0, Y: 5}, {X: 30, Y: 5}}})
	writeBorderShapefile(t, border, 0, 0, 30, 10)

	d, err := NewDesigner(contour, border)
	require.NoError(t, err)
	return d
}

func testOptions() Options {
	o := DefaultOptions()
	o.DPI = 50
	o.FigWidth = 4
	o.FigHeight = 4
	o.ShowText = false
	return o
}

func TestNewDesignerMissingContour(t *testing.T) {
	_, err := NewDesigner(filepath.Join(t.TempDir(), "nope.shp"), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, vector.ErrNotFound))
}

func TestNewDesignerEmptyContour(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.shp")
	writeLineShapefile(t, path, nil)

	_, err := NewDesigner(path, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, vector.ErrEmpty))
}

func TestNewDesignerDegenerateBounds(t *testing.T) {
	// A single vertical line has zero width.
	path := filepath.Join(t.TempDir(), "contours.shp")
	writeLineShapefile(t, path, [][]shp.Point{{{X: 5, Y: 0}, {X: 5, Y: 10}}})

	_, err := NewDesigner(path, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidGeometry))
}

func TestNewDesignerBoundsFromBorder(t *testing.T) {
	d := scenarioDesigner(t)
	b := d.Bounds()
	assert.InDelta(t, 0, b.MinX, 1e-9)
	assert.InDelta(t, 0, b.MinY, 1e-9)
	assert.InDelta(t, 30, b.MaxX, 1e-9)
	assert.InDelta(t, 10, b.MaxY, 1e-9)
}

func TestNewDesignerMissingBorderIsAdvisory(t *testing.T) {
	dir := t.TempDir()
	contour := filepath.Join(dir, "contours.shp")
	writeLineShapefile(t, contour, [][]shp.Point{
		{{X: 0, Y: 0}, {X: 10, Y: 0}},
		{{X: 0, Y: 4}, {X: 10, Y: 4}},
	})

	d, err := NewDesigner(contour, filepath.Join(dir, "missing.shp"))
	require.NoError(t, err)

	// Falls back to the contour extent.
	assert.InDelta(t, 10, d.Bounds().Width(), 1e-9)
	assert.InDelta(t, 4, d.Bounds().Height(), 1e-9)
}

func TestNewDesignerUnknownBorderCRSDropped(t *testing.T) {
	dir := t.TempDir()
	contour := filepath.Join(dir, "contours.shp")
	border := filepath.Join(dir, "border.shp")
	writeLineShapefile(t, contour, [][]shp.Point{
		{{X: 0, Y: 0}, {X: 10, Y: 0}},
		{{X: 0, Y: 4}, {X: 10, Y: 4}},
	})
	writeBorderShapefile(t, border, -100, -100, 100, 100)
	writePrj(t, border, `PROJCS["Some_Local_Grid",GEOGCS["GCS_Unknown"]]`)

	d, err := NewDesigner(contour, border)
	require.NoError(t, err)

	// The border could not be brought into the contour CRS, so its extent
	// must not be used.
	assert.InDelta(t, 10, d.Bounds().Width(), 1e-9)
}

func TestNewDesignerReprojectsBorder(t *testing.T) {
	dir := t.TempDir()
	contour := filepath.Join(dir, "contours.shp")
	border := filepath.Join(dir, "border.shp")

	writeLineShapefile(t, contour, [][]shp.Point{{{X: 0, Y: 0.5}, {X: 1, Y: 0.5}}})
	writePrj(t, contour, wgs84WKT)

	// Border in web mercator meters covering roughly 1x1 degree at the
	// equator.
	writeBorderShapefile(t, border, 0, 0, 111319.49, 111325.14)
	writePrj(t, border, mercatorWKT)

	d, err := NewDesigner(contour, border)
	require.NoError(t, err)

	b := d.Bounds()
	assert.InDelta(t, 0, b.MinX, 0.01)
	assert.InDelta(t, 0, b.MinY, 0.01)
	assert.InDelta(t, 1, b.MaxX, 0.01)
	assert.InDelta(t, 1, b.MaxY, 0.01)
}

func TestCreateBlockDesignValidation(t *testing.T) {
	d := scenarioDesigner(t)
	out := filepath.Join(t.TempDir(), "out.png")

	cases := []struct {
		name   string
		mutate func(*Options)
	}{
		{"two colors", func(o *Options) { o.Colors = []string{"#111", "#222"} }},
		{"four colors", func(o *Options) { o.Colors = []string{"#1", "#2", "#3", "#4"} }},
		{"negative gap", func(o *Options) { o.GapPercent = -0.01 }},
		{"gap too large", func(o *Options) { o.GapPercent = 0.51 }},
		{"zero dpi", func(o *Options) { o.DPI = 0 }},
		{"negative dpi", func(o *Options) { o.DPI = -300 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := testOptions()
			opts.Colors = testColors
			tc.mutate(&opts)

			err := d.CreateBlockDesign("Mt Test", out, opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameter))

			// Validation must reject before any rendering side effect.
			_, statErr := os.Stat(out)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestScenarioALinearCutouts(t *testing.T) {
	d := scenarioDesigner(t)
	opts := testOptions()
	opts.Colors = testColors
	opts.GapPercent = 0.05

	bands := computeBands(d.Bounds(), opts.GapPercent, opts.Colors)
	radius := opts.LineWidth * (d.width / 500)

	for i, b := range bands {
		cut := d.computeCutout(b, opts.LineWidth)
		assert.False(t, cut.solid, "band %d must not be solid", i)
		require.NotEmpty(t, cut.poly, "band %d must keep a cutout", i)

		// The contour slot removes exactly a 2r-tall strip across the band.
		bandWidth := b.maxX - b.minX
		want := b.area() - 2*radius*bandWidth
		assert.InDelta(t, want, cut.poly.Area(), 0.02, "band %d", i)
	}

	// Rendering the design succeeds and creates parent directories.
	out := filepath.Join(t.TempDir(), "nested", "dir", "design.png")
	require.NoError(t, d.CreateBlockDesign("Mt Test", out, opts))
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestScenarioBSolidBands(t *testing.T) {
	dir := t.TempDir()
	contour := filepath.Join(dir, "contours.shp")
	border := filepath.Join(dir, "border.shp")
	// All contours lie outside the border extent.
	writeLineShapefile(t, contour, [][]shp.Point{{{X: 100, Y: 5}, {X: 110, Y: 5}}})
	writeBorderShapefile(t, border, 0, 0, 10, 10)

	d, err := NewDesigner(contour, border)
	require.NoError(t, err)

	opts := testOptions()
	opts.Colors = testColors
	bands := computeBands(d.Bounds(), opts.GapPercent, opts.Colors)
	for i, b := range bands {
		cut := d.computeCutout(b, opts.LineWidth)
		assert.True(t, cut.solid, "band %d must be solid", i)
	}

	out := filepath.Join(dir, "design.png")
	require.NoError(t, d.CreateBlockDesign("Mt Test", out, opts))
	_, err = os.Stat(out)
	require.NoError(t, err)
}

func TestFullyConsumedBandIsSkipped(t *testing.T) {
	d := scenarioDesigner(t)

	// A huge line width buffers the contour far past the band extent, so the
	// difference comes back empty. That is a valid terminal state.
	const lineWidth = 200 // radius 12 against a 9x10 band
	bands := computeBands(d.Bounds(), 0.05, testColors)
	for i, b := range bands {
		cut := d.computeCutout(b, lineWidth)
		assert.False(t, cut.solid, "band %d", i)
		if len(cut.poly) > 0 {
			assert.Less(t, cut.poly.Area(), 1e-6, "band %d should be fully consumed", i)
		}
	}

	opts := testOptions()
	opts.Colors = testColors
	opts.GapPercent = 0.05
	opts.LineWidth = lineWidth
	out := filepath.Join(t.TempDir(), "design.png")
	require.NoError(t, d.CreateBlockDesign("Mt Test", out, opts))
}

func TestCutoutEdgeCoincidentBuffer(t *testing.T) {
	// With no gap, the clip lands the segment endpoints exactly on the band
	// edges, so capsule cap vertices coincide with the subtraction boundary.
	// The cutout must still keep the band minus the contour slot rather than
	// collapsing to empty.
	d := scenarioDesigner(t)
	bands := computeBands(d.Bounds(), 0, testColors)

	for i, b := range bands {
		cut := d.computeCutout(b, 0.8)
		assert.False(t, cut.solid, "band %d", i)
		require.NotEmpty(t, cut.poly, "band %d", i)

		radius := 0.8 * (d.width / 500)
		want := b.area() - 2*radius*(b.maxX-b.minX)
		assert.InDelta(t, want, cut.poly.Area(), 0.02, "band %d", i)
	}
}

func TestCutoutIdempotent(t *testing.T) {
	d := scenarioDesigner(t)
	bands := computeBands(d.Bounds(), 0.05, testColors)

	for _, b := range bands {
		first := d.computeCutout(b, 0.8)
		second := d.computeCutout(b, 0.8)

		assert.Equal(t, first.solid, second.solid)
		require.Equal(t, len(first.poly), len(second.poly))
		assert.InDelta(t, first.poly.Area(), second.poly.Area(), 1e-12)
	}
}

func TestZeroLineWidthKeepsFullBand(t *testing.T) {
	d := scenarioDesigner(t)
	bands := computeBands(d.Bounds(), 0.05, testColors)

	cut := d.computeCutout(bands[0], 0)
	assert.False(t, cut.solid)
	assert.InDelta(t, bands[0].area(), cut.poly.Area(), 1e-9)
}
