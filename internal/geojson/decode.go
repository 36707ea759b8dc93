package geojson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/MeKo-Tech/reversejp/internal/types"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ParseError is returned when a shard document is not valid JSON or does not
// have the expected FeatureCollection layout.
type ParseError struct {
	Feature int // Index of the offending feature, -1 for document-level errors
	Msg     string
	Err     error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	if e.Feature < 0 {
		return "geojson: " + msg
	}
	return fmt.Sprintf("geojson: feature %d: %s", e.Feature, msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// collection is the top-level shape of a shard document. The value of type is
// only checked for presence; features are decoded one by one by orb.
type collection struct {
	Type     *string           `json:"type"`
	Features []json.RawMessage `json:"features"`
}

// Decode parses a FeatureCollection document and flattens its MultiPolygon
// features into index entries, one per polygon part. Ring 0 of each part is the
// outer boundary and any further rings are holes. Features with other geometry
// types (or no geometry) are skipped.
func Decode(doc []byte) ([]types.Entry, error) {
	var fc collection
	if err := json.Unmarshal(doc, &fc); err != nil {
		return nil, &ParseError{Feature: -1, Msg: "invalid feature collection", Err: err}
	}
	if fc.Type == nil {
		return nil, &ParseError{Feature: -1, Msg: "missing type"}
	}
	if fc.Features == nil {
		return nil, &ParseError{Feature: -1, Msg: "missing features"}
	}

	var entries []types.Entry
	for i, raw := range fc.Features {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, &ParseError{Feature: i, Msg: "null feature"}
		}

		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return nil, &ParseError{Feature: i, Msg: "invalid feature", Err: err}
		}

		mp, ok := f.Geometry.(orb.MultiPolygon)
		if !ok {
			continue
		}

		props, err := decodeProperties(f.Properties)
		if err != nil {
			return nil, &ParseError{Feature: i, Msg: "invalid properties", Err: err}
		}

		for _, poly := range mp {
			entries = append(entries, types.NewEntry(poly, props))
		}
	}

	return entries, nil
}

func decodeProperties(p geojson.Properties) (types.Properties, error) {
	if p == nil {
		return types.Properties{}, fmt.Errorf("missing properties object")
	}

	code, err := requiredString(p, "code")
	if err != nil {
		return types.Properties{}, err
	}
	name, err := requiredString(p, "name")
	if err != nil {
		return types.Properties{}, err
	}

	enName := ""
	if v, ok := p["enName"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return types.Properties{}, fmt.Errorf("enName: expected string, got %T", v)
		}
		enName = s
	}

	return types.Properties{Code: code, Name: name, EnName: enName}, nil
}

func requiredString(p geojson.Properties, key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", key, v)
	}
	return s, nil
}
