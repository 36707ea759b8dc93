// Package worker runs batches of reverse lookups in parallel against one
// shared, read-only engine.
package worker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MeKo-Tech/reversejp/internal/types"
	"github.com/MeKo-Tech/reversejp/pkg/reversejp"
)

// Resolver is the lookup interface; *reversejp.Engine implements it.
type Resolver interface {
	FindWithProbe(lon, lat float64) ([]types.Properties, reversejp.Probe)
}

// Task is a single point to resolve.
type Task struct {
	ID   int
	Name string
	Lon  float64
	Lat  float64
}

// Result is the outcome of one Task. Err is set only when the context was
// cancelled before the task ran.
type Result struct {
	Task       Task
	Properties []types.Properties
	Probe      reversejp.Probe
	Err        error
	Elapsed    time.Duration
}

// Matched reports whether the lookup found at least one region.
func (r Result) Matched() bool {
	return r.Err == nil && len(r.Properties) > 0
}

// ProgressFunc is called from a single goroutine after each task completes,
// with the running completed count and the result just received.
type ProgressFunc func(completed, total int, r Result)

// Config configures the worker pool.
type Config struct {
	Workers    int
	Resolver   Resolver
	OnProgress ProgressFunc
}

// Pool manages parallel lookups.
type Pool struct {
	workers    int
	resolver   Resolver
	onProgress ProgressFunc
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		resolver:   cfg.Resolver,
		onProgress: cfg.OnProgress,
	}
}

// Run executes all tasks and returns one result per task, ordered by Task.ID.
// The function blocks until all tasks complete or the context is cancelled;
// tasks not started before cancellation are reported with ctx.Err().
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	// Create channels
	taskCh := make(chan Task, len(tasks))
	resultCh := make(chan Result, len(tasks))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	// Feed tasks; the channel is sized for all of them so this never blocks.
	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)

	// Collect results in a separate goroutine
	results := make([]Result, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		for result := range resultCh {
			results = append(results, result)

			if p.onProgress != nil {
				p.onProgress(len(results), len(tasks), result)
			}
		}
		close(done)
	}()

	// Wait for workers to finish
	wg.Wait()
	close(resultCh)

	// Wait for result collection to finish
	<-done

	sort.Slice(results, func(i, j int) bool { return results[i].Task.ID < results[j].Task.ID })
	return results
}

// worker processes tasks from the task channel and sends results to the result channel.
func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result) {
	for task := range tasks {
		select {
		case <-ctx.Done():
			// Send cancellation result
			results <- Result{
				Task: task,
				Err:  ctx.Err(),
			}
			continue
		default:
		}

		start := time.Now()
		props, probe := p.resolver.FindWithProbe(task.Lon, task.Lat)
		elapsed := time.Since(start)

		results <- Result{
			Task:       task,
			Properties: props,
			Probe:      probe,
			Elapsed:    elapsed,
		}
	}
}
