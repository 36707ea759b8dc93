package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/MeKo-Tech/reversejp/internal/coverage"
	"github.com/MeKo-Tech/reversejp/internal/datasource"
	"github.com/MeKo-Tech/reversejp/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Check that reference cities resolve to a region",
	Long: `Resolve a list of reference cities and fail when the fraction that
resolves to at least one region is not above --threshold.

Cities come from the built-in list, a CSV file (--cities), or OpenStreetMap
place nodes fetched from the Overpass API (--overpass).`,
	RunE: runCoverage,
}

func init() {
	rootCmd.AddCommand(coverageCmd)

	coverageCmd.Flags().String("cities", "", "CSV file with name,lon,lat columns (default: built-in list)")
	coverageCmd.Flags().Bool("overpass", false, "Fetch cities from the Overpass API")
	coverageCmd.Flags().Bool("towns", false, "With --overpass, include place=town nodes")
	coverageCmd.Flags().String("overpass-endpoint", datasource.DefaultOverpassEndpoint, "Overpass API endpoint")
	coverageCmd.Flags().Float64("threshold", coverage.DefaultThreshold, "Minimum resolved fraction")
	coverageCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	coverageCmd.Flags().Bool("progress", false, "Show progress bar")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"coverage.cities", "cities"},
		{"coverage.overpass", "overpass"},
		{"coverage.towns", "towns"},
		{"coverage.overpass_endpoint", "overpass-endpoint"},
		{"coverage.threshold", "threshold"},
		{"coverage.workers", "workers"},
		{"coverage.progress", "progress"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, coverageCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runCoverage(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	threshold := viper.GetFloat64("coverage.threshold")
	workers := viper.GetInt("coverage.workers")
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cities, source, err := loadCities(ctx)
	if err != nil {
		return err
	}
	logger.Info("Loaded reference cities", "source", source, "count", len(cities))

	eng, err := loadEngine()
	if err != nil {
		return fmt.Errorf("failed to load region index: %w", err)
	}

	var bar io.Writer
	if viper.GetBool("coverage.progress") {
		bar = os.Stderr
	}
	progress := worker.NewProgress(len(cities), bar)
	report := coverage.Run(ctx, eng, cities, coverage.Options{Workers: workers, OnProgress: progress.Observe})
	progress.Done()
	logger.Debug(progress.Summary())

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report)
	for _, c := range report.Missing {
		fmt.Fprintf(out, "  unresolved: %s\n", c)
	}

	if !report.Passes(threshold) {
		return fmt.Errorf("coverage %.1f%% is not above threshold %.1f%%", report.Fraction*100, threshold*100)
	}
	return nil
}

// loadCities picks the city source from the coverage flags.
func loadCities(ctx context.Context) ([]datasource.City, string, error) {
	if viper.GetBool("coverage.overpass") {
		ds := datasource.NewOverpassDataSource(viper.GetString("coverage.overpass_endpoint"))
		cities, err := ds.FetchCities(ctx, viper.GetBool("coverage.towns"))
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch cities: %w", err)
		}
		return cities, "overpass", nil
	}

	if path := viper.GetString("coverage.cities"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open cities file: %w", err)
		}
		defer f.Close()

		cities, err := datasource.ParseCitiesCSV(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return cities, path, nil
	}

	cities, err := datasource.ReferenceCities()
	if err != nil {
		return nil, "", err
	}
	return cities, "built-in", nil
}
