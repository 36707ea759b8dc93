package reversejp

import "github.com/MeKo-Tech/reversejp/internal/types"

// FindAsMap runs Find once and keys the result by region code. When a code
// occurs more than once the later entry wins.
func (e *Engine) FindAsMap(lon, lat float64) map[string]types.Properties {
	return AsMap(e.Find(lon, lat))
}

// AsMap keys props by code, later entries overwriting earlier ones.
func AsMap(props []types.Properties) map[string]types.Properties {
	m := make(map[string]types.Properties, len(props))
	for _, p := range props {
		m[p.Code] = p
	}
	return m
}

// CodeCollisions returns the codes that occur more than once in props, in the
// order their first repeat appears. These are the entries AsMap collapses.
func CodeCollisions(props []types.Properties) []string {
	seen := make(map[string]int, len(props))
	var dups []string
	for _, p := range props {
		seen[p.Code]++
		if seen[p.Code] == 2 {
			dups = append(dups, p.Code)
		}
	}
	return dups
}
