// Package fetch downloads the JMA GeoJSON documents and stores them as the
// zip shards the engine loads.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/reversejp/internal/archive"
	"github.com/MeKo-Tech/reversejp/internal/geojson"
	"github.com/MeKo-Tech/reversejp/pkg/reversejp"
)

// DefaultBaseURL serves class10s.json and landslides_N.json.
const DefaultBaseURL = "https://www.jma.go.jp/bosai/common/const/geojson/"

// Config configures a Fetcher.
type Config struct {
	BaseURL string
	Client  *http.Client
	// Verify decodes each document before writing it so a broken download
	// never replaces a working shard.
	Verify bool
}

// Fetcher downloads the default shard set.
type Fetcher struct {
	baseURL string
	client  *http.Client
	verify  bool
	logger  *slog.Logger
}

// ShardResult describes one written shard.
type ShardResult struct {
	File     string
	Bytes    int // Uncompressed document size
	Polygons int // Only set when verification is enabled
}

// New creates a fetcher.
func New(cfg Config, logger *slog.Logger) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 2 * time.Minute}
	}

	return &Fetcher{
		baseURL: cfg.BaseURL,
		client:  cfg.Client,
		verify:  cfg.Verify,
		logger:  logger,
	}
}

// FetchAll downloads every shard of the default set into dir, creating it if
// needed. It stops at the first failure; shards written before it are kept.
func (f *Fetcher) FetchAll(ctx context.Context, dir string) ([]ShardResult, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	var results []ShardResult
	for _, name := range reversejp.DefaultShardNames() {
		res, err := f.FetchShard(ctx, dir, name)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	return results, nil
}

// FetchShard downloads one document and writes it to dir/name.File as a
// single-entry zip archive.
func (f *Fetcher) FetchShard(ctx context.Context, dir string, name reversejp.ShardName) (ShardResult, error) {
	url := f.baseURL + name.Entry
	start := time.Now()

	doc, err := f.download(ctx, url)
	if err != nil {
		return ShardResult{}, fmt.Errorf("failed to download %s: %w", name.Entry, err)
	}

	res := ShardResult{File: name.File, Bytes: len(doc)}
	if f.verify {
		entries, err := geojson.Decode(doc)
		if err != nil {
			return ShardResult{}, fmt.Errorf("invalid document %s: %w", name.Entry, err)
		}
		res.Polygons = len(entries)
	}

	data, err := archive.Write(name.Entry, doc)
	if err != nil {
		return ShardResult{}, err
	}
	if err := writeFileAtomic(filepath.Join(dir, name.File), data); err != nil {
		return ShardResult{}, err
	}

	f.log().Info("shard fetched",
		"file", name.File,
		"bytes", res.Bytes,
		"compressed", len(data),
		"polygons", res.Polygons,
		"elapsed", time.Since(start),
	)

	return res, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "reversejp-fetch")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func (f *Fetcher) log() *slog.Logger {
	if f.logger != nil {
		return f.logger
	}
	return slog.Default()
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".fetch-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename into %s: %w", path, err)
	}
	return nil
}
