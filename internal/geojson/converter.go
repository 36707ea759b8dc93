package geojson

import (
	"encoding/json"
	"fmt"

	"github.com/MeKo-Tech/reversejp/internal/types"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ToFeatureCollection renders a lookup result as a FeatureCollection with one
// Point feature per matched region, all located at the queried point.
func ToFeatureCollection(pt orb.Point, props []types.Properties) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for i, p := range props {
		f := geojson.NewFeature(pt)
		f.Properties["code"] = p.Code
		f.Properties["name"] = p.Name
		if p.EnName != "" {
			f.Properties["enName"] = p.EnName
		}
		f.Properties["rank"] = i

		fc.Append(f)
	}

	return fc
}

// ToGeoJSONBytes converts a lookup result to indented GeoJSON bytes.
func ToGeoJSONBytes(pt orb.Point, props []types.Properties) ([]byte, error) {
	data, err := json.MarshalIndent(ToFeatureCollection(pt, props), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GeoJSON: %w", err)
	}

	return data, nil
}
