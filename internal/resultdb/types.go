// Package resultdb stores batch lookup results in a SQLite database.
package resultdb

import (
	"strconv"

	"github.com/MeKo-Tech/reversejp/internal/types"
	"github.com/MeKo-Tech/reversejp/internal/worker"
)

// Metadata describes a batch run.
type Metadata struct {
	Name        string // Human-readable run identifier
	Description string
	Source      string // "embedded" or the data directory the index was built from
	Input       string // Input file the points were read from
	Version     string
	Polygons    int // Number of polygons in the index used for the run
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Source != "" {
		result["source"] = m.Source
	}
	if m.Input != "" {
		result["input"] = m.Input
	}
	if m.Version != "" {
		result["version"] = m.Version
	}
	if m.Polygons > 0 {
		result["polygons"] = strconv.Itoa(m.Polygons)
	}

	return result
}

// Record is one stored lookup.
type Record struct {
	ID         int
	Name       string
	Lon        float64
	Lat        float64
	DX         float64 // Probe offset that matched
	DY         float64
	Matched    bool
	Properties []types.Properties // In result order
}

// FromResult converts a worker result into a Record.
func FromResult(r worker.Result) Record {
	return Record{
		ID:         r.Task.ID,
		Name:       r.Task.Name,
		Lon:        r.Task.Lon,
		Lat:        r.Task.Lat,
		DX:         r.Probe.DX,
		DY:         r.Probe.DY,
		Matched:    r.Matched(),
		Properties: r.Properties,
	}
}
