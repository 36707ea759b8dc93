package geojson

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoPartFeature = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {
        "type": "MultiPolygon",
        "coordinates": [
          [[[139.0, 35.0], [140.0, 35.0], [140.0, 36.0], [139.0, 36.0], [139.0, 35.0]]],
          [[[141.0, 35.0], [142.0, 35.0], [142.0, 36.0], [141.0, 35.0]]]
        ]
      },
      "properties": {"code": "130010", "name": "東京都", "enName": "Tokyo"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [139.5, 35.5]},
      "properties": {"code": "999999", "name": "point"}
    },
    {
      "type": "Feature",
      "geometry": {
        "type": "MultiPolygon",
        "coordinates": [[[[130.0, 33.0], [131.0, 33.0], [131.0, 34.0], [130.0, 33.0]]]]
      },
      "properties": {"code": "400010", "name": "福岡地方"}
    }
  ]
}`

func TestDecode(t *testing.T) {
	entries, err := Decode([]byte(twoPartFeature))
	require.NoError(t, err)
	require.Len(t, entries, 3, "two parts from the first feature, one from the last, none from the point")

	assert.Equal(t, entries[0].Properties, entries[1].Properties)
	assert.Equal(t, "130010", entries[0].Properties.Code)
	assert.Equal(t, "東京都", entries[0].Properties.Name)
	assert.Equal(t, "Tokyo", entries[0].Properties.EnName)

	assert.Equal(t, "400010", entries[2].Properties.Code)
	assert.Equal(t, "", entries[2].Properties.EnName, "enName defaults to empty")

	for _, e := range entries {
		assert.Len(t, e.Polygon, 1, "no holes in the fixture")
	}
	assert.Equal(t, orb.Bound{Min: orb.Point{139, 35}, Max: orb.Point{140, 36}}, entries[0].Bound)
}

func TestDecode_Holes(t *testing.T) {
	doc := `{"type":"FeatureCollection","features":[{"type":"Feature",
	  "geometry":{"type":"MultiPolygon","coordinates":[[
	    [[0,0],[10,0],[10,10],[0,10],[0,0]],
	    [[4,4],[6,4],[6,6],[4,6],[4,4]]
	  ]]},
	  "properties":{"code":"1","name":"ring"}}]}`

	entries, err := Decode([]byte(doc))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Polygon, 2, "ring 0 outer, ring 1 hole")
	assert.Equal(t, orb.Point{4, 4}, entries[0].Polygon[1][0])
}

func TestDecode_SkipsNonMultiPolygon(t *testing.T) {
	doc := `{"type":"FeatureCollection","features":[
	  {"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]},"properties":{}},
	  {"type":"Feature","geometry":null,"properties":{"code":"x","name":"y"}}
	]}`

	entries, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDecode_EmptyCollection(t *testing.T) {
	entries, err := Decode([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDecode_AnyTopLevelType(t *testing.T) {
	// Only the presence of type matters at the top level.
	entries, err := Decode([]byte(`{"type":"Foo","features":[]}`))
	require.NoError(t, err)
	assert.Empty(t, entries)

	doc := `{"type":"","features":[{"type":"Feature",
	  "geometry":{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]]]},
	  "properties":{"code":"130010","name":"東京都"}}]}`
	entries, err = Decode([]byte(doc))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "130010", entries[0].Properties.Code)
}

func TestDecode_FeatureIndexInError(t *testing.T) {
	doc := `{"type":"FeatureCollection","features":[
	  {"type":"Feature","geometry":null,"properties":{}},
	  {"type":"Feature","geometry":{"type":"MultiPolygon","coordinates":"nope"},"properties":{}}
	]}`
	_, err := Decode([]byte(doc))
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Feature)
}

func TestDecode_Errors(t *testing.T) {
	multi := func(props string) string {
		return `{"type":"FeatureCollection","features":[{"type":"Feature",
		  "geometry":{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]]]},
		  "properties":` + props + `}]}`
	}

	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"type": "FeatureCollection", "features": [`},
		{"missing top-level type", `{"features":[]}`},
		{"features not an array", `{"type":"FeatureCollection","features":{}}`},
		{"missing features", `{"type":"FeatureCollection"}`},
		{"null feature", `{"type":"FeatureCollection","features":[null]}`},
		{"bad coordinates", `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"MultiPolygon","coordinates":"nope"},"properties":{}}]}`},
		{"missing code", multi(`{"name":"東京都"}`)},
		{"missing name", multi(`{"code":"130010"}`)},
		{"numeric code", multi(`{"code":130010,"name":"東京都"}`)},
		{"non-string enName", multi(`{"code":"130010","name":"東京都","enName":1}`)},
		{"null properties", multi(`null`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			require.Error(t, err)

			var pe *ParseError
			assert.True(t, errors.As(err, &pe), "expected *ParseError, got %T", err)
		})
	}
}

func TestDecode_NullEnName(t *testing.T) {
	doc := `{"type":"FeatureCollection","features":[{"type":"Feature",
	  "geometry":{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]]]},
	  "properties":{"code":"1","name":"a","enName":null}}]}`

	entries, err := Decode([]byte(doc))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].Properties.EnName)
}
