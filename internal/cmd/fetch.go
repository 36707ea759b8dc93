package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/reversejp/internal/fetch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the JMA GeoJSON dataset into --data-dir",
	Long: `Download class10s.json and landslides_0..9.json from the JMA and store each
as a zip shard (<name>.json.zip) in --data-dir. Point --data-dir at
assets/data and build with -tags embeddata to compile the dataset into the
binary.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().String("base-url", fetch.DefaultBaseURL, "Base URL of the GeoJSON documents")
	fetchCmd.Flags().Bool("verify", true, "Decode each document before writing it")
	fetchCmd.Flags().Duration("timeout", 2*time.Minute, "HTTP timeout per document")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, fetchCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("fetch.base_url", "base-url")
	mustBind("fetch.verify", "verify")
	mustBind("fetch.timeout", "timeout")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	dir := viper.GetString("data-dir")
	if dir == "" {
		return fmt.Errorf("--data-dir is required")
	}

	f := fetch.New(fetch.Config{
		BaseURL: viper.GetString("fetch.base_url"),
		Client:  &http.Client{Timeout: viper.GetDuration("fetch.timeout")},
		Verify:  viper.GetBool("fetch.verify"),
	}, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	results, err := f.FetchAll(ctx, dir)
	if err != nil {
		return err
	}

	var polygons int
	for _, r := range results {
		polygons += r.Polygons
	}
	logger.Info("Dataset fetched",
		"dir", dir,
		"shards", len(results),
		"polygons", polygons,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
