package types

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Properties describes a region or hazard zone.
// Code identifies the region; the same code may appear in more than one shard.
type Properties struct {
	Code   string `json:"code"`
	Name   string `json:"name"`   // Label in the source locale (Japanese)
	EnName string `json:"enName"` // English label, empty when the source has none
}

// String returns a short human-readable form, e.g. "130010 東京都 (Tokyo)".
func (p Properties) String() string {
	if p.EnName == "" {
		return fmt.Sprintf("%s %s", p.Code, p.Name)
	}
	return fmt.Sprintf("%s %s (%s)", p.Code, p.Name, p.EnName)
}

// Entry is one polygon of the spatial index together with the properties of the
// feature it came from. A multi-part feature contributes one Entry per part.
type Entry struct {
	Polygon    orb.Polygon // Ring 0 is the outer boundary, the rest are holes
	Bound      orb.Bound   // Bound of the outer ring
	Properties Properties
}

// NewEntry creates an entry and computes its bound from the outer ring.
func NewEntry(poly orb.Polygon, props Properties) Entry {
	e := Entry{Polygon: poly, Properties: props}
	if len(poly) > 0 {
		e.Bound = poly[0].Bound()
	}
	return e
}
