package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/MeKo-Tech/reversejp/internal/archive"
	"github.com/MeKo-Tech/reversejp/pkg/reversejp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func featureDoc(code string) string {
	return fmt.Sprintf(`{"type":"FeatureCollection","features":[{"type":"Feature",
		"geometry":{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,1],[0,0]]]]},
		"properties":{"code":%q,"name":"n"}}]}`, code)
}

// jmaServer serves every name of the default shard set.
func jmaServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		name := strings.TrimPrefix(r.URL.Path, "/geojson/")
		if !strings.HasSuffix(name, ".json") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, featureDoc(strings.TrimSuffix(name, ".json")))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchAll(t *testing.T) {
	var hits atomic.Int32
	srv := jmaServer(t, &hits)
	dir := filepath.Join(t.TempDir(), "data")

	f := New(Config{BaseURL: srv.URL + "/geojson", Verify: true}, nil)
	results, err := f.FetchAll(context.Background(), dir)
	require.NoError(t, err)

	names := reversejp.DefaultShardNames()
	require.Len(t, results, len(names))
	assert.Equal(t, int32(len(names)), hits.Load())

	for i, n := range names {
		assert.Equal(t, n.File, results[i].File)
		assert.Equal(t, 1, results[i].Polygons)

		data, err := os.ReadFile(filepath.Join(dir, n.File))
		require.NoError(t, err)
		doc, err := archive.Extract(data, n.Entry)
		require.NoError(t, err)
		assert.Contains(t, string(doc), strings.TrimSuffix(n.Entry, ".json"))
	}

	// The fetched directory is loadable as-is.
	eng, err := reversejp.BuildFS(os.DirFS(dir))
	require.NoError(t, err)
	assert.Equal(t, len(names), eng.Len())

	got := eng.Find(0.5, 0.5)
	require.Len(t, got, len(names))
	assert.Equal(t, "class10s", got[0].Code)
}

func TestFetchShard_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := New(Config{BaseURL: srv.URL}, nil)
	_, err := f.FetchShard(context.Background(), dir, reversejp.DefaultShardNames()[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no file is written on failure")
}

func TestFetchShard_VerifyRejectsBrokenDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"FeatureCollection"}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	name := reversejp.DefaultShardNames()[1]
	existing := []byte("previous shard")
	require.NoError(t, os.WriteFile(filepath.Join(dir, name.File), existing, 0o644))

	f := New(Config{BaseURL: srv.URL, Verify: true}, nil)
	_, err := f.FetchShard(context.Background(), dir, name)
	require.Error(t, err)

	data, err := os.ReadFile(filepath.Join(dir, name.File))
	require.NoError(t, err)
	assert.Equal(t, existing, data, "existing shard must survive a failed fetch")
}

func TestFetchAll_Cancelled(t *testing.T) {
	srv := jmaServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(Config{BaseURL: srv.URL + "/geojson/"}, nil)
	results, err := f.FetchAll(ctx, t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestNew_Defaults(t *testing.T) {
	f := New(Config{}, nil)
	assert.Equal(t, DefaultBaseURL, f.baseURL)
	assert.NotNil(t, f.client)
}
