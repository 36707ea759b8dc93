package reversejp

import (
	"fmt"
	"io/fs"

	"github.com/MeKo-Tech/reversejp/assets"
)

// LandslideShardCount is the number of landslides_N shards in the dataset.
const LandslideShardCount = 10

// ShardName identifies a shard file and the GeoJSON entry inside it.
type ShardName struct {
	File  string // e.g. "class10s.json.zip"
	Entry string // e.g. "class10s.json"
}

// DefaultShardNames lists the dataset in load order: the class10s regions
// shard followed by landslides_0 to landslides_9.
func DefaultShardNames() []ShardName {
	names := make([]ShardName, 0, LandslideShardCount+1)
	names = append(names, ShardName{File: "class10s.json.zip", Entry: "class10s.json"})
	for i := 0; i < LandslideShardCount; i++ {
		entry := fmt.Sprintf("landslides_%d.json", i)
		names = append(names, ShardName{File: entry + ".zip", Entry: entry})
	}
	return names
}

// ReadShards reads the default shard set from fsys. A missing or unreadable
// file is reported as a *ConstructionError.
func ReadShards(fsys fs.FS) ([]Shard, error) {
	names := DefaultShardNames()
	shards := make([]Shard, 0, len(names))
	for _, n := range names {
		data, err := fs.ReadFile(fsys, n.File)
		if err != nil {
			return nil, &ConstructionError{Shard: n.Entry, Err: err}
		}
		shards = append(shards, Shard{Archive: data, Entry: n.Entry})
	}
	return shards, nil
}

// BuildFS builds an engine from the default shard set stored in fsys, for
// example os.DirFS of a directory populated by `reversejp fetch`.
func BuildFS(fsys fs.FS, opts ...Option) (*Engine, error) {
	shards, err := ReadShards(fsys)
	if err != nil {
		return nil, err
	}
	return Build(shards, opts...)
}

// BuildEmbedded builds an engine from the shards compiled into the binary.
// Binaries built without the embeddata tag carry no shards; for them the
// returned *ConstructionError wraps assets.ErrNoEmbeddedData.
func BuildEmbedded(opts ...Option) (*Engine, error) {
	fsys, err := assets.DataFS()
	if err != nil {
		return nil, &ConstructionError{Shard: "embedded", Err: err}
	}
	return BuildFS(fsys, opts...)
}
