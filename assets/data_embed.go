//go:build embeddata

package assets

import (
	"embed"
	"io/fs"
)

// Populate data/ with `reversejp fetch --data-dir assets/data` before building
// with -tags embeddata.
//
//go:embed data/*.json.zip
var dataFS embed.FS

// DataFS returns the embedded dataset shards, rooted so that shard files are
// at the top level (e.g. "class10s.json.zip").
func DataFS() (fs.FS, error) {
	return fs.Sub(dataFS, "data")
}
