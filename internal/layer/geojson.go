package layer

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// crsEnvelope captures the legacy GeoJSON "crs" member, which modern GeoJSON
// omits (RFC 7946 fixes the CRS to WGS84) but municipal exports still carry.
type crsEnvelope struct {
	CRS *struct {
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
}

// LoadGeoJSON reads a GeoJSON feature collection into a Layer. A missing
// file wraps ErrMissingInput. The declared CRS is recorded when present;
// harmonization of absent CRS values happens in Normalize, not here.
func LoadGeoJSON(path, name string) (*Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrMissingInput, "layer %s: %s", name, path)
		}
		return nil, eris.Wrapf(err, "layer: read %s", path)
	}

	var env crsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, eris.Wrapf(err, "layer: parse %s envelope", name)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "layer: parse %s feature collection", name)
	}

	l := &Layer{Name: name}
	if env.CRS != nil {
		l.CRS = env.CRS.Properties.Name
	}

	for i, gf := range fc.Features {
		if gf == nil || gf.Geometry == nil {
			continue
		}
		f := Feature{
			ID:    featureID(gf, i),
			Geom:  gf.Geometry,
			Props: gf.Properties,
		}
		l.Features = append(l.Features, f)
	}

	return l, nil
}

// featureID extracts the feature's identifier, falling back to an "id"
// property and finally to the feature index.
func featureID(gf *geojson.Feature, idx int) string {
	if gf.ID != "" {
		return gf.ID
	}
	if gf.Properties != nil {
		switch v := gf.Properties["id"].(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return fmt.Sprintf("feature_%d", idx)
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
