// Package coverage measures how many reference cities resolve to at least one
// region. It is the regression check for dataset or search changes.
package coverage

import (
	"context"
	"fmt"

	"github.com/MeKo-Tech/reversejp/internal/datasource"
	"github.com/MeKo-Tech/reversejp/internal/worker"
)

// DefaultThreshold is the minimum fraction of cities that must resolve.
const DefaultThreshold = 0.9

// Report summarizes one coverage run.
type Report struct {
	Total    int
	Matched  int
	Approx   int // Matched only through a non-zero probe offset
	Missing  []datasource.City
	Results  []worker.Result
	Fraction float64
}

// Passes reports whether the matched fraction exceeds threshold.
func (r Report) Passes(threshold float64) bool {
	return r.Total > 0 && r.Fraction > threshold
}

func (r Report) String() string {
	return fmt.Sprintf("%d/%d cities resolved (%.1f%%, %d via offset probe)",
		r.Matched, r.Total, r.Fraction*100, r.Approx)
}

// Options configures Run.
type Options struct {
	Workers    int
	OnProgress worker.ProgressFunc
}

// Run resolves every city against res. Cities that were not looked up because
// ctx was cancelled count as missing.
func Run(ctx context.Context, res worker.Resolver, cities []datasource.City, opts Options) Report {
	tasks := make([]worker.Task, len(cities))
	for i, c := range cities {
		tasks[i] = worker.Task{ID: i, Name: c.Name, Lon: c.Lon, Lat: c.Lat}
	}

	pool := worker.New(worker.Config{
		Workers:    opts.Workers,
		Resolver:   res,
		OnProgress: opts.OnProgress,
	})
	results := pool.Run(ctx, tasks)

	report := Report{Total: len(cities), Results: results}
	for _, r := range results {
		if !r.Matched() {
			report.Missing = append(report.Missing, cities[r.Task.ID])
			continue
		}
		report.Matched++
		if !r.Probe.Exact() {
			report.Approx++
		}
	}
	if report.Total > 0 {
		report.Fraction = float64(report.Matched) / float64(report.Total)
	}

	return report
}
