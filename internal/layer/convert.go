package layer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/civiclens/lotscout/internal/model"
)

// Load dispatches on file extension: .shp loads a shapefile, everything
// else is treated as GeoJSON.
func Load(path, name string) (*Layer, error) {
	if strings.EqualFold(filepath.Ext(path), ".shp") {
		return LoadShapefile(path, name)
	}
	return LoadGeoJSON(path, name)
}

// Lots converts normalized lot features into domain lots, pulling optional
// address and name attributes when the source carries them.
func Lots(l *Layer) []model.Lot {
	lots := make([]model.Lot, 0, len(l.Features))
	for i := range l.Features {
		f := &l.Features[i]
		lots = append(lots, model.Lot{
			ID:     f.ID,
			Street: firstStringProp(f, "street", "address", "situs_address"),
			Name:   firstStringProp(f, "name", "owner"),
			X:      f.X,
			Y:      f.Y,
			Lat:    f.Lat,
			Lon:    f.Lon,
		})
	}
	return lots
}

// Listings converts normalized business features into listings, keeping
// the non-geometric attributes as string tags for categorization.
func Listings(l *Layer) []model.BusinessListing {
	listings := make([]model.BusinessListing, 0, len(l.Features))
	for i := range l.Features {
		f := &l.Features[i]
		tags := make(map[string]string, len(f.Props))
		for k, v := range f.Props {
			switch s := v.(type) {
			case string:
				tags[k] = s
			case float64, int, bool:
				tags[k] = fmt.Sprint(s)
			}
		}
		listings = append(listings, model.BusinessListing{
			Name: firstStringProp(f, "name", "business_name"),
			Tags: tags,
			X:    f.X,
			Y:    f.Y,
		})
	}
	return listings
}

func firstStringProp(f *Feature, keys ...string) string {
	for _, k := range keys {
		if v := f.StringProp(k); v != "" {
			return v
		}
	}
	return ""
}
