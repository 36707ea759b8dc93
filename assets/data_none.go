//go:build !embeddata

package assets

import "io/fs"

// DataFS reports ErrNoEmbeddedData: this binary was built without -tags embeddata.
func DataFS() (fs.FS, error) {
	return nil, ErrNoEmbeddedData
}
