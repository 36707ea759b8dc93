package coverage

import (
	"context"
	"os"
	"testing"

	"github.com/MeKo-Tech/reversejp/internal/datasource"
	"github.com/MeKo-Tech/reversejp/internal/types"
	"github.com/MeKo-Tech/reversejp/pkg/reversejp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareEngine() *reversejp.Engine {
	square := orb.Polygon{{{130, 30}, {140, 30}, {140, 40}, {130, 40}, {130, 30}}}
	return reversejp.New(types.NewEntry(square, types.Properties{Code: "J", Name: "japan-ish"}))
}

func TestRun(t *testing.T) {
	cities := []datasource.City{
		{Name: "Osaka", Lon: 135.5022535, Lat: 34.6937378},
		{Name: "Kyoto", Lon: 135.7681, Lat: 35.0116},
		{Name: "Edge", Lon: 140.0015, Lat: 35},
		{Name: "Sapporo", Lon: 141.3469, Lat: 43.0619},
	}

	report := Run(context.Background(), squareEngine(), cities, Options{Workers: 2})

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 3, report.Matched)
	assert.Equal(t, 1, report.Approx)
	assert.InDelta(t, 0.75, report.Fraction, 1e-9)
	require.Len(t, report.Missing, 1)
	assert.Equal(t, "Sapporo", report.Missing[0].Name)
	assert.Len(t, report.Results, 4)

	assert.False(t, report.Passes(DefaultThreshold))
	assert.True(t, report.Passes(0.5))
}

func TestRun_Empty(t *testing.T) {
	report := Run(context.Background(), squareEngine(), nil, Options{})

	assert.Equal(t, 0, report.Total)
	assert.False(t, report.Passes(0), "an empty run never passes")
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cities := []datasource.City{{Name: "Osaka", Lon: 135.5, Lat: 34.7}}
	report := Run(ctx, squareEngine(), cities, Options{Workers: 1})

	assert.Equal(t, 0, report.Matched)
	assert.Len(t, report.Missing, 1)
}

func TestReportString(t *testing.T) {
	r := Report{Total: 4, Matched: 3, Approx: 1, Fraction: 0.75}
	assert.Equal(t, "3/4 cities resolved (75.0%, 1 via offset probe)", r.String())
}

// TestReferenceCitiesCoverage runs against the real shards when
// REVERSEJP_DATA_DIR points at a fetched dataset.
func TestReferenceCitiesCoverage(t *testing.T) {
	dir := os.Getenv("REVERSEJP_DATA_DIR")
	if testing.Short() || dir == "" {
		t.Skip("set REVERSEJP_DATA_DIR to run dataset tests")
	}

	eng, err := reversejp.BuildFS(os.DirFS(dir))
	require.NoError(t, err)

	cities, err := datasource.ReferenceCities()
	require.NoError(t, err)

	report := Run(context.Background(), eng, cities, Options{Workers: 4})
	t.Log(report)
	for _, c := range report.Missing {
		t.Logf("unresolved: %s", c)
	}

	assert.True(t, report.Passes(DefaultThreshold), report.String())
}
