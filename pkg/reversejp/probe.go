package reversejp

import (
	"github.com/MeKo-Tech/reversejp/internal/geom"
	"github.com/MeKo-Tech/reversejp/internal/types"
	"github.com/paulmach/orb"
)

// probeOffsets are tried on both axes, longitude outer and latitude inner, in
// this order. Values are decimal degrees.
var probeOffsets = [...]float64{0.0, 0.001, -0.001, 0.002, -0.002, 0.005, -0.005}

// ProbeOffsets returns a copy of the offsets Find applies to each axis.
func ProbeOffsets() []float64 {
	return append([]float64(nil), probeOffsets[:]...)
}

// Probe describes the offset at which a lookup matched.
type Probe struct {
	DX, DY  float64
	Matched bool
}

// Exact reports whether the match was at the queried point itself.
func (p Probe) Exact() bool {
	return p.Matched && p.DX == 0 && p.DY == 0
}

// Find returns the properties of every polygon containing (lon, lat), in index
// order. Parts of the same feature are not deduplicated. If the exact point
// matches nothing, offset points are tried (see ProbeOffsets) and the result of
// the first matching probe is returned. The result is empty, never nil, when
// no probe matches.
func (e *Engine) Find(lon, lat float64) []types.Properties {
	props, _ := e.FindWithProbe(lon, lat)
	return props
}

// FindWithProbe is Find that also reports which probe matched.
func (e *Engine) FindWithProbe(lon, lat float64) ([]types.Properties, Probe) {
	for _, dx := range probeOffsets {
		for _, dy := range probeOffsets {
			if props := e.scan(orb.Point{lon + dx, lat + dy}); len(props) > 0 {
				return props, Probe{DX: dx, DY: dy, Matched: true}
			}
		}
	}
	return []types.Properties{}, Probe{}
}

// scan tests pt against every entry in the index.
func (e *Engine) scan(pt orb.Point) []types.Properties {
	var out []types.Properties
	for i := range e.entries {
		entry := &e.entries[i]
		if geom.ContainsBound(entry.Polygon, entry.Bound, pt) {
			out = append(out, entry.Properties)
		}
	}
	return out
}
