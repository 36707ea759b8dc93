// Package geom implements the point-in-polygon test used by the region index.
package geom

import "github.com/paulmach/orb"

// Contains reports whether pt lies inside poly using the even-odd rule.
// Ring 0 is the outer boundary; a point inside any further ring (a hole) is
// outside the polygon. Rings are treated as closed whether or not the last
// point repeats the first. Points exactly on an edge may resolve either way.
func Contains(poly orb.Polygon, pt orb.Point) bool {
	if len(poly) == 0 {
		return false
	}
	if !RingContains(poly[0], pt) {
		return false
	}
	for _, hole := range poly[1:] {
		if RingContains(hole, pt) {
			return false
		}
	}
	return true
}

// ContainsBound is Contains with a bounding box shortcut. b must be the bound
// of the outer ring (see types.NewEntry).
func ContainsBound(poly orb.Polygon, b orb.Bound, pt orb.Point) bool {
	if !b.Contains(pt) {
		return false
	}
	return Contains(poly, pt)
}

// RingContains casts a horizontal ray from pt towards +x and counts the ring
// edges it crosses; an odd count means inside.
func RingContains(ring orb.Ring, pt orb.Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	x, y := pt[0], pt[1]
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]

		// (yi > y) != (yj > y) also rules out horizontal edges, so the
		// division below never sees yj == yi.
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
