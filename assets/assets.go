// Package assets holds files compiled into the binary: the optional dataset
// shards and the reference list of Japanese city coordinates.
package assets

import (
	_ "embed"
	"errors"
)

// ErrNoEmbeddedData is returned by DataFS in builds without the embeddata tag.
var ErrNoEmbeddedData = errors.New("no embedded dataset (build with -tags embeddata)")

// JPCitiesCSV is the reference set of Japanese city coordinates used by the
// coverage check. Columns: name,lon,lat.
//
//go:embed cities/jp_cities.csv
var JPCitiesCSV []byte
