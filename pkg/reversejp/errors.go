package reversejp

import "fmt"

// ConstructionError reports the first shard that failed to load. It wraps an
// *archive.ArchiveError, a *geojson.ParseError, or the error from reading the
// shard file.
type ConstructionError struct {
	Shard string
	Err   error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("reversejp: failed to load shard %s: %v", e.Shard, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}
