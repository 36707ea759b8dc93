package reversejp

import (
	"log/slog"
	"time"

	"github.com/MeKo-Tech/reversejp/internal/archive"
	"github.com/MeKo-Tech/reversejp/internal/geojson"
	"github.com/MeKo-Tech/reversejp/internal/types"
)

// Properties describes a matched region: its code, native name and English name.
type Properties = types.Properties

// Entry is one indexed polygon with the properties of its feature.
type Entry = types.Entry

// Shard is one compressed dataset source: a zip archive and the name of the
// GeoJSON entry inside it.
type Shard struct {
	Archive []byte
	Entry   string
}

// Engine holds the flat polygon index. It is immutable once built.
type Engine struct {
	entries []types.Entry
}

// Option configures Build.
type Option func(*buildConfig)

type buildConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger used while loading shards. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *buildConfig) {
		c.logger = logger
	}
}

// New returns an engine over already-decoded entries. New() is the empty engine.
// Each entry's Bound is recomputed from its outer ring, so entries may be
// given as plain literals.
func New(entries ...types.Entry) *Engine {
	copied := make([]types.Entry, len(entries))
	for i, e := range entries {
		copied[i] = types.NewEntry(e.Polygon, e.Properties)
	}
	return &Engine{entries: copied}
}

// Build decompresses and decodes every shard in order into one index. It stops
// at the first failing shard and returns a *ConstructionError; no partially
// loaded engine is ever returned.
func Build(shards []Shard, opts ...Option) (*Engine, error) {
	cfg := buildConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	start := time.Now()
	var entries []types.Entry
	for _, shard := range shards {
		doc, err := archive.Extract(shard.Archive, shard.Entry)
		if err != nil {
			return nil, &ConstructionError{Shard: shard.Entry, Err: err}
		}

		decoded, err := geojson.Decode(doc)
		if err != nil {
			return nil, &ConstructionError{Shard: shard.Entry, Err: err}
		}

		cfg.logger.Debug("shard loaded", "shard", shard.Entry, "polygons", len(decoded))
		entries = append(entries, decoded...)
	}

	cfg.logger.Info("region index built",
		"shards", len(shards),
		"polygons", len(entries),
		"elapsed", time.Since(start),
	)

	return &Engine{entries: entries}, nil
}

// Len returns the number of indexed polygons.
func (e *Engine) Len() int {
	return len(e.entries)
}
