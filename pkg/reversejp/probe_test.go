package reversejp

import (
	"fmt"
	"testing"

	"github.com/MeKo-Tech/reversejp/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeOffsets(t *testing.T) {
	assert.Equal(t, []float64{0.0, 0.001, -0.001, 0.002, -0.002, 0.005, -0.005}, ProbeOffsets())

	got := ProbeOffsets()
	got[0] = 42
	assert.Equal(t, 0.0, ProbeOffsets()[0], "ProbeOffsets must return a copy")
}

func TestFind_OffsetProbeFallback(t *testing.T) {
	const x, y = 139.0, 35.0

	// Contains (x+0.002, y) but nothing probed before it.
	target := types.Properties{Code: "A", Name: "east"}
	eng := New(types.NewEntry(box(x+0.002, y, 0.0004), target))

	assert.False(t, exactHit(eng, x, y), "exact point must miss")

	props, probe := eng.FindWithProbe(x, y)
	require.Equal(t, []types.Properties{target}, props)
	assert.Equal(t, Probe{DX: 0.002, DY: 0, Matched: true}, probe)
	assert.False(t, probe.Exact())

	assert.Equal(t, []types.Properties{target}, eng.Find(x, y))
}

func TestFind_LongitudeOuterLoop(t *testing.T) {
	const x, y = 135.0, 34.0

	// (dx=+0.001, dy=+0.005) comes before (dx=-0.001, dy=0) because the
	// longitude offset is the outer loop.
	a := types.Properties{Code: "A", Name: "north-east"}
	b := types.Properties{Code: "B", Name: "west"}
	eng := New(
		types.NewEntry(box(x-0.001, y, 0.0001), b),
		types.NewEntry(box(x+0.001, y+0.005, 0.0001), a),
	)

	props, probe := eng.FindWithProbe(x, y)
	assert.Equal(t, []types.Properties{a}, props)
	assert.Equal(t, 0.001, probe.DX)
	assert.Equal(t, 0.005, probe.DY)
}

func TestFind_PositiveBeforeNegative(t *testing.T) {
	const x, y = 135.0, 34.0

	south := types.Properties{Code: "S"}
	north := types.Properties{Code: "N"}
	eng := New(
		types.NewEntry(box(x, y-0.001, 0.0002), south),
		types.NewEntry(box(x, y+0.001, 0.0002), north),
	)

	props, probe := eng.FindWithProbe(x, y)
	assert.Equal(t, []types.Properties{north}, props)
	assert.Equal(t, Probe{DX: 0, DY: 0.001, Matched: true}, probe)
}

func TestFind_ExactHitStopsProbing(t *testing.T) {
	const x, y = 130.0, 33.0

	exact := types.Properties{Code: "E"}
	nearby := types.Properties{Code: "N"}
	eng := New(
		types.NewEntry(box(x+0.005, y, 0.0002), nearby),
		types.NewEntry(box(x, y, 0.0002), exact),
	)

	props, probe := eng.FindWithProbe(x, y)
	assert.Equal(t, []types.Properties{exact}, props, "no merge with later probes")
	assert.True(t, probe.Exact())
}

func TestFind_NoMatchAnywhere(t *testing.T) {
	eng := New(types.NewEntry(box(139.0, 35.0, 0.0001), tokyo))

	// The nearest probe lands 0.005° away, well outside the box.
	props, probe := eng.FindWithProbe(139.0+0.0052, 35.0+0.0052)
	assert.Empty(t, props)
	assert.NotNil(t, props)
	assert.False(t, probe.Matched)
}

func TestFind_KeepsDuplicatesInIndexOrder(t *testing.T) {
	// Two overlapping parts of the same feature both match.
	eng := New(
		types.NewEntry(box(0, 0, 1), tokyo),
		types.NewEntry(box(0, 0, 2), chiyoda),
		types.NewEntry(box(0.1, 0.1, 1), tokyo),
	)

	assert.Equal(t, []types.Properties{tokyo, chiyoda, tokyo}, eng.Find(0, 0))
}

func TestFind_Deterministic(t *testing.T) {
	eng := New(
		types.NewEntry(box(0, 0, 1), tokyo),
		types.NewEntry(box(0, 0, 1), chiyoda),
		types.NewEntry(box(0, 0, 1), landslip),
	)

	first := eng.Find(0.3, -0.2)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, eng.Find(0.3, -0.2))
	}
}

// exactHit reports whether the exact point (no offsets) hits anything.
func exactHit(eng *Engine, lon, lat float64) bool {
	_, probe := eng.FindWithProbe(lon, lat)
	return probe.Exact()
}

func BenchmarkFind(b *testing.B) {
	var entries []types.Entry
	for i := 0; i < 100; i++ {
		for j := 0; j < 100; j++ {
			x, y := 128.0+float64(i)*0.15, 30.0+float64(j)*0.15
			entries = append(entries, types.NewEntry(box(x, y, 0.07), types.Properties{Code: fmt.Sprintf("%d-%d", i, j)}))
		}
	}
	eng := New(entries...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eng.Find(139.7670, 35.6812)
	}
}
