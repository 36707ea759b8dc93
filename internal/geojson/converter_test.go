package geojson

import (
	"encoding/json"
	"testing"

	"github.com/MeKo-Tech/reversejp/internal/types"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func TestToFeatureCollection(t *testing.T) {
	pt := orb.Point{139.7670, 35.6812}
	props := []types.Properties{
		{Code: "130010", Name: "東京都", EnName: "Tokyo"},
		{Code: "1310100", Name: "千代田区"},
	}

	fc := ToFeatureCollection(pt, props)

	if len(fc.Features) != 2 {
		t.Fatalf("Expected 2 features, got %d", len(fc.Features))
	}
	if fc.Features[0].Geometry.GeoJSONType() != "Point" {
		t.Errorf("Expected Point, got %s", fc.Features[0].Geometry.GeoJSONType())
	}
	if fc.Features[0].Properties["code"] != "130010" {
		t.Errorf("Expected code=130010, got %v", fc.Features[0].Properties["code"])
	}
	if fc.Features[0].Properties["enName"] != "Tokyo" {
		t.Errorf("Expected enName=Tokyo")
	}
	if _, ok := fc.Features[1].Properties["enName"]; ok {
		t.Errorf("Expected no enName on a feature without translation")
	}
	if fc.Features[1].Properties["rank"] != 1 {
		t.Errorf("Expected rank=1, got %v", fc.Features[1].Properties["rank"])
	}
}

func TestToGeoJSONBytes(t *testing.T) {
	pt := orb.Point{135.5022535, 34.6937378}
	props := []types.Properties{{Code: "270000", Name: "大阪府", EnName: "Osaka"}}

	data, err := ToGeoJSONBytes(pt, props)
	if err != nil {
		t.Fatalf("ToGeoJSONBytes failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if raw["type"] != "FeatureCollection" {
		t.Errorf("Expected FeatureCollection, got %v", raw["type"])
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("Output is not a valid feature collection: %v", err)
	}
	if got := fc.Features[0].Geometry.(orb.Point); got != pt {
		t.Errorf("Expected point %v, got %v", pt, got)
	}
}

func TestToFeatureCollection_Empty(t *testing.T) {
	fc := ToFeatureCollection(orb.Point{0, 0}, nil)
	if len(fc.Features) != 0 {
		t.Errorf("Expected no features, got %d", len(fc.Features))
	}
}
