// Package layer loads heterogeneous geographic input layers (GeoJSON and
// shapefile), harmonizes their coordinate reference systems, and normalizes
// every feature to a representative point in a shared metric projection.
package layer

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// ErrMissingInput indicates a required input layer file is absent. This is
// fatal: the pipeline cannot proceed without its primary geospatial inputs.
var ErrMissingInput = eris.New("layer: required input missing")

// crsWGS84 is the default geographic reference assumed for layers that do
// not declare one.
const crsWGS84 = "EPSG:4326"

// Feature is one record of a layer. Geom holds the source geometry in
// degrees; after normalization X/Y carry the projected representative point
// in meters and Rings carry projected polygon rings for containment tests.
type Feature struct {
	ID    string
	Geom  geom.T
	Props map[string]any

	Lat, Lon float64
	X, Y     float64
	Rings    [][]XY
}

// XY is a projected planar coordinate in meters.
type XY struct {
	X, Y float64
}

// Layer is a named collection of features sharing one declared CRS.
type Layer struct {
	Name     string
	CRS      string
	Features []Feature
}

// StringProp returns a property as a string, or "" when absent.
func (f *Feature) StringProp(key string) string {
	if f.Props == nil {
		return ""
	}
	if v, ok := f.Props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// FloatProp returns a numeric property and whether it was present. JSON
// numbers arrive as float64; shapefile attributes as strings.
func (f *Feature) FloatProp(key string) (float64, bool) {
	if f.Props == nil {
		return 0, false
	}
	v, ok := f.Props[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		return parseFloat(n)
	}
	return 0, false
}

// ContainsXY reports whether the projected point lies within any of the
// feature's polygon rings. Holes are not distinguished from outer rings;
// parcel and tract sources in practice carry simple polygons, and odd-even
// counting over all rings handles the rest.
func (f *Feature) ContainsXY(x, y float64) bool {
	for _, ring := range f.Rings {
		if pointInRing(x, y, ring) {
			return true
		}
	}
	return false
}

// pointInRing is a standard ray-crossing test against one closed ring.
func pointInRing(x, y float64, ring []XY) bool {
	inside := false
	n := len(ring)
	if n < 3 {
		return false
	}
	j := n - 1
	for i := 0; i < n; i++ {
		pi, pj := ring[i], ring[j]
		if (pi.Y > y) != (pj.Y > y) &&
			x < (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}
