package vector

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/ctessum/geom/proj"
	"github.com/rotisserie/eris"
)

// CRS describes a layer's coordinate reference system as parsed from the
// shapefile's .prj sidecar. EPSG is 0 when the projection could not be
// recognized; such a CRS is still usable as long as no reprojection is
// required.
type CRS struct {
	WKT  string
	EPSG int
}

var authorityRe = regexp.MustCompile(`AUTHORITY\[\s*"EPSG"\s*,\s*"?(\d+)"?\s*\]`)

var utmZoneRe = regexp.MustCompile(`UTM[ _]?[Zz]one[ _]?(\d{1,2})\s*([NS])`)

// readCRS loads the .prj sidecar next to a .shp file. A missing sidecar
// yields a zero CRS, which compares equal only to another zero CRS.
func readCRS(shpPath string) CRS {
	prjPath := strings.TrimSuffix(shpPath, ".shp") + ".prj"
	data, err := os.ReadFile(prjPath)
	if err != nil {
		return CRS{}
	}
	return parseCRS(string(data))
}

// parseCRS extracts an EPSG code from projection WKT. It first looks for the
// outermost AUTHORITY clause, then falls back to well-known ESRI names that
// carry no authority (GCS_WGS_1984, Web Mercator, WGS 84 UTM zones).
func parseCRS(wkt string) CRS {
	c := CRS{WKT: strings.TrimSpace(wkt)}

	if m := authorityRe.FindAllStringSubmatch(wkt, -1); len(m) > 0 {
		// The top-level AUTHORITY clause closes the outermost object, so it
		// appears last in the string.
		if code, err := strconv.Atoi(m[len(m)-1][1]); err == nil {
			c.EPSG = code
			return c
		}
	}

	isWGS84 := strings.Contains(wkt, "WGS_1984") || strings.Contains(wkt, "WGS 84")

	if m := utmZoneRe.FindStringSubmatch(wkt); m != nil && isWGS84 {
		zone, _ := strconv.Atoi(m[1])
		if zone >= 1 && zone <= 60 {
			if m[2] == "S" {
				c.EPSG = 32700 + zone
			} else {
				c.EPSG = 32600 + zone
			}
			return c
		}
	}

	// Projected names first: ESRI Web Mercator WKT nests a
	// GEOGCS["GCS_WGS_1984"], so testing the geographic names first would
	// misread it as EPSG 4326. Any other projected system stays unknown.
	switch {
	case strings.Contains(wkt, "Web_Mercator"), strings.Contains(wkt, "Pseudo-Mercator"):
		c.EPSG = 3857
	case strings.Contains(wkt, "PROJCS"):
	case strings.Contains(wkt, "GCS_WGS_1984"), strings.Contains(wkt, `GEOGCS["WGS 84"`):
		c.EPSG = 4326
	}
	return c
}

// Known reports whether the CRS was recognized well enough to reproject.
func (c CRS) Known() bool { return c.EPSG != 0 }

// Geographic reports whether coordinates are in degrees.
func (c CRS) Geographic() bool { return c.EPSG == 4326 }

// Equal reports whether two CRS describe the same projection. Unrecognized
// CRS compare by exact WKT text.
func (c CRS) Equal(o CRS) bool {
	if c.EPSG != 0 || o.EPSG != 0 {
		return c.EPSG == o.EPSG
	}
	return c.WKT == o.WKT
}

// proj4 maps the recognized EPSG code to a proj4 definition string.
func (c CRS) proj4() (string, error) {
	switch {
	case c.EPSG == 4326:
		return "+proj=longlat +datum=WGS84 +no_defs", nil
	case c.EPSG == 3857:
		return "+proj=merc +a=6378137 +b=6378137 +lat_ts=0 +lon_0=0 +x_0=0 +y_0=0 +k=1 +units=m +no_defs", nil
	case c.EPSG > 32600 && c.EPSG <= 32660:
		return fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", c.EPSG-32600), nil
	case c.EPSG > 32700 && c.EPSG <= 32760:
		return fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", c.EPSG-32700), nil
	}
	return "", eris.Errorf("vector: no proj4 definition for CRS (EPSG %d)", c.EPSG)
}

// Transform builds a coordinate transformer from this CRS to another.
func (c CRS) Transform(to CRS) (proj.Transformer, error) {
	srcDef, err := c.proj4()
	if err != nil {
		return nil, err
	}
	dstDef, err := to.proj4()
	if err != nil {
		return nil, err
	}

	src, err := proj.Parse(srcDef)
	if err != nil {
		return nil, eris.Wrapf(err, "vector: parse source projection %q", srcDef)
	}
	dst, err := proj.Parse(dstDef)
	if err != nil {
		return nil, eris.Wrapf(err, "vector: parse target projection %q", dstDef)
	}

	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, eris.Wrapf(err, "vector: build transform EPSG %d -> %d", c.EPSG, to.EPSG)
	}
	return t, nil
}
