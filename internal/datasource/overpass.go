package datasource

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/MeKo-Christian/go-overpass"
)

// DefaultOverpassEndpoint is the public Overpass API interpreter.
const DefaultOverpassEndpoint = "https://overpass-api.de/api/interpreter"

// OverpassDataSource fetches populated places in Japan from the Overpass API.
type OverpassDataSource struct {
	client overpass.Client
}

// NewOverpassDataSource creates a new Overpass data source.
func NewOverpassDataSource(endpoint string) *OverpassDataSource {
	if endpoint == "" {
		endpoint = DefaultOverpassEndpoint
	}

	// Create client (rate limited to 1 concurrent request)
	client := overpass.NewWithSettings(
		endpoint,
		1, // Only 1 parallel request (API etiquette)
		http.DefaultClient,
	)

	return &OverpassDataSource{
		client: client,
	}
}

// FetchCities returns every place=city node inside Japan's national boundary.
// Set towns to include place=town as well.
func (ds *OverpassDataSource) FetchCities(ctx context.Context, towns bool) ([]City, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Execute query (note: this version doesn't support context)
	result, err := ds.client.Query(buildPlacesQuery(towns))
	if err != nil {
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}

	return ExtractCities(&result), nil
}

// buildPlacesQuery creates the Overpass QL query for place nodes in Japan.
func buildPlacesQuery(towns bool) string {
	places := "city"
	if towns {
		places = "city|town"
	}
	return fmt.Sprintf(`
[out:json][timeout:120];
area["ISO3166-1"="JP"][admin_level=2]->.jp;
node["place"~"^(%s)$"](area.jp);
out;
`, places)
}

// ExtractCities converts place nodes to cities ordered by node ID. The English
// name is preferred; nodes without any name keep their OSM ID as the name.
func ExtractCities(result *overpass.Result) []City {
	if result == nil {
		return nil
	}

	ids := make([]int64, 0, len(result.Nodes))
	for id := range result.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	cities := make([]City, 0, len(ids))
	for _, id := range ids {
		node := result.Nodes[id]
		if node == nil {
			continue
		}
		cities = append(cities, City{
			Name: placeName(id, node.Tags),
			Lon:  node.Lon,
			Lat:  node.Lat,
		})
	}
	return cities
}

func placeName(id int64, tags map[string]string) string {
	for _, key := range []string{"name:en", "name"} {
		if n := tags[key]; n != "" {
			return n
		}
	}
	return fmt.Sprintf("node/%d", id)
}
