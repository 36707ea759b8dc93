package reversejp

import (
	"encoding/json"
	"testing"

	"github.com/MeKo-Tech/reversejp/internal/archive"
	"github.com/MeKo-Tech/reversejp/internal/types"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

// box returns an axis-aligned square of half-width r centred on (x, y).
func box(x, y, r float64) orb.Polygon {
	return orb.Polygon{{
		{x - r, y - r}, {x + r, y - r}, {x + r, y + r}, {x - r, y + r}, {x - r, y - r},
	}}
}

type fixtureFeature struct {
	props types.Properties
	parts []orb.Polygon
}

// shardDoc renders features as a FeatureCollection of MultiPolygons.
func shardDoc(t *testing.T, features ...fixtureFeature) []byte {
	t.Helper()

	type geometry struct {
		Type        string          `json:"type"`
		Coordinates [][][][]float64 `json:"coordinates"`
	}
	type feature struct {
		Type       string           `json:"type"`
		Geometry   geometry         `json:"geometry"`
		Properties types.Properties `json:"properties"`
	}
	doc := struct {
		Type     string    `json:"type"`
		Features []feature `json:"features"`
	}{Type: "FeatureCollection", Features: []feature{}}

	for _, f := range features {
		g := geometry{Type: "MultiPolygon"}
		for _, poly := range f.parts {
			var rings [][][]float64
			for _, ring := range poly {
				var pts [][]float64
				for _, p := range ring {
					pts = append(pts, []float64{p[0], p[1]})
				}
				rings = append(rings, pts)
			}
			g.Coordinates = append(g.Coordinates, rings)
		}
		doc.Features = append(doc.Features, feature{Type: "Feature", Geometry: g, Properties: f.props})
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

// zipShard packs a document into a single-entry shard.
func zipShard(t *testing.T, entry string, doc []byte) Shard {
	t.Helper()

	data, err := archive.Write(entry, doc)
	require.NoError(t, err)
	return Shard{Archive: data, Entry: entry}
}
