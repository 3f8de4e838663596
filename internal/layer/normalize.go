package layer

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// Normalizer reprojects layers into one shared metric projection and
// reduces every geometry to a representative point.
type Normalizer struct {
	Proj Projection
}

// NewNormalizer builds a Normalizer for the given UTM zone.
func NewNormalizer(zone int, south bool) *Normalizer {
	return &Normalizer{Proj: Projection{Zone: zone, South: south}}
}

// Normalize harmonizes the layer's CRS, reduces each feature to its
// centroid, and projects points and polygon rings to meters. A layer with
// no declared CRS is assumed to be WGS84; that recovery is logged, never
// fatal. A declared CRS other than WGS84 is an error, since inputs are
// documented to arrive in geographic coordinates.
func (n *Normalizer) Normalize(l *Layer) error {
	if l.CRS == "" {
		zap.L().Warn("layer: missing CRS, assuming default",
			zap.String("layer", l.Name),
			zap.String("assumed", crsWGS84),
		)
		l.CRS = crsWGS84
	}
	if !isWGS84(l.CRS) {
		return eris.Errorf("layer %s: unsupported CRS %q (expected %s)", l.Name, l.CRS, crsWGS84)
	}

	for i := range l.Features {
		f := &l.Features[i]

		c, err := xy.Centroid(f.Geom)
		if err != nil {
			return eris.Wrapf(err, "layer %s: centroid of feature %s", l.Name, f.ID)
		}
		f.Lon, f.Lat = c[0], c[1]
		f.X, f.Y = n.Proj.Forward(f.Lat, f.Lon)

		f.Rings = n.projectRings(f.Geom)
	}

	zap.L().Debug("layer: normalized",
		zap.String("layer", l.Name),
		zap.Int("features", len(l.Features)),
	)
	return nil
}

// projectRings projects polygon boundaries to meters for containment tests.
// Non-areal geometries yield nil.
func (n *Normalizer) projectRings(g geom.T) [][]XY {
	switch t := g.(type) {
	case *geom.Polygon:
		return n.polygonRings(t)
	case *geom.MultiPolygon:
		var rings [][]XY
		for i := 0; i < t.NumPolygons(); i++ {
			rings = append(rings, n.polygonRings(t.Polygon(i))...)
		}
		return rings
	default:
		return nil
	}
}

func (n *Normalizer) polygonRings(p *geom.Polygon) [][]XY {
	rings := make([][]XY, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		lr := p.LinearRing(i)
		coords := lr.Coords()
		ring := make([]XY, 0, len(coords))
		for _, c := range coords {
			x, y := n.Proj.Forward(c[1], c[0])
			ring = append(ring, XY{X: x, Y: y})
		}
		rings = append(rings, ring)
	}
	return rings
}

// isWGS84 accepts the spellings municipal exports use for the default
// geographic CRS.
func isWGS84(crs string) bool {
	switch crs {
	case "EPSG:4326", "epsg:4326", "urn:ogc:def:crs:EPSG::4326", "urn:ogc:def:crs:OGC:1.3:CRS84", "CRS84":
		return true
	}
	return false
}
