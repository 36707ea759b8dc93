package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/MeKo-Tech/reversejp/internal/datasource"
	"github.com/MeKo-Tech/reversejp/internal/resultdb"
	"github.com/MeKo-Tech/reversejp/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Resolve a CSV of points and store the results in SQLite",
	Long: `Resolve every point of a CSV file (header with name, lon and lat columns)
in parallel and write the lookups and their matches to a SQLite database.`,
	Example: `  reversejp batch --input points.csv --output results.sqlite --workers 8`,
	RunE:    runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("input", "i", "", "CSV file with name,lon,lat columns")
	batchCmd.Flags().StringP("output", "o", "results.sqlite", "SQLite database to write")
	batchCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	batchCmd.Flags().Bool("progress", true, "Show progress bar")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"batch.input", "input"},
		{"batch.output", "output"},
		{"batch.workers", "workers"},
		{"batch.progress", "progress"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, batchCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	input := viper.GetString("batch.input")
	output := viper.GetString("batch.output")
	workers := viper.GetInt("batch.workers")
	showProgress := viper.GetBool("batch.progress")

	if input == "" {
		return fmt.Errorf("--input is required")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	points, err := datasource.ParseCitiesCSV(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}

	eng, err := loadEngine()
	if err != nil {
		return fmt.Errorf("failed to load region index: %w", err)
	}

	logger.Info("Starting batch lookup",
		"input", input,
		"points", len(points),
		"workers", workers,
		"output", output,
	)

	w, err := resultdb.New(output, resultdb.Metadata{
		Name:     "reversejp batch",
		Source:   dataSource(),
		Input:    input,
		Version:  "1.0",
		Polygons: eng.Len(),
	})
	if err != nil {
		return fmt.Errorf("failed to create result database: %w", err)
	}
	defer w.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tasks := make([]worker.Task, len(points))
	for i, p := range points {
		tasks[i] = worker.Task{ID: i, Name: p.Name, Lon: p.Lon, Lat: p.Lat}
	}

	var bar io.Writer
	if showProgress {
		bar = os.Stderr
	}
	progress := worker.NewProgress(len(tasks), bar)
	pool := worker.New(worker.Config{
		Workers:    workers,
		Resolver:   eng,
		OnProgress: progress.Observe,
	})

	results := pool.Run(ctx, tasks)
	progress.Done()

	var cancelled int
	for _, r := range results {
		if r.Err != nil {
			cancelled++
			continue
		}
		if err := w.Write(resultdb.FromResult(r)); err != nil {
			return err
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	logger.Info(progress.Summary())
	tally := progress.Snapshot()
	for _, oc := range tally.OffsetsByCount() {
		logger.Debug("Offset probe matches", "dx", oc.DX, "dy", oc.DY, "count", oc.Count)
	}
	if tally.Slowest.Elapsed > 0 {
		logger.Debug("Slowest lookup", "name", tally.Slowest.Task.Name, "lon", tally.Slowest.Task.Lon,
			"lat", tally.Slowest.Task.Lat, "elapsed", tally.Slowest.Elapsed)
	}
	if cancelled > 0 {
		return fmt.Errorf("interrupted: %d of %d points not resolved", cancelled, len(points))
	}

	logger.Info("Batch complete", "output", output)
	return nil
}
