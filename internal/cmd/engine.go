package cmd

import (
	"os"
	"time"

	"github.com/MeKo-Tech/reversejp/internal/binding"
	"github.com/MeKo-Tech/reversejp/internal/metrics"
	"github.com/MeKo-Tech/reversejp/pkg/reversejp"
	"github.com/spf13/viper"
)

// dataSource names where the shards come from, for logs and result metadata.
func dataSource() string {
	if dir := viper.GetString("data-dir"); dir != "" {
		return dir
	}
	return "embedded"
}

// loadEngine builds the engine from --data-dir, or from the embedded shards
// when no directory is configured.
func loadEngine() (*reversejp.Engine, error) {
	start := time.Now()

	var (
		eng *reversejp.Engine
		err error
	)
	if dir := viper.GetString("data-dir"); dir != "" {
		eng, err = reversejp.BuildFS(os.DirFS(dir), reversejp.WithLogger(logger))
	} else {
		eng, err = reversejp.BuildEmbedded(reversejp.WithLogger(logger))
	}
	if err != nil {
		return nil, err
	}

	metrics.BuildDurationSeconds.Observe(time.Since(start).Seconds())
	metrics.IndexedPolygons.Set(float64(eng.Len()))
	return eng, nil
}

func newLazyEngine() *binding.Lazy {
	return binding.NewLazy(loadEngine)
}
