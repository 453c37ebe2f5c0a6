// Package geomutil holds small bounds helpers layered over orb.Bound that
// encode the empty-bounds convention this module relies on: the empty
// bounds is (+Inf, -Inf) rather than orb's own zero value, so that unioning
// it with any point or bound replaces it outright.
package geomutil

import (
	"math"

	"github.com/paulmach/orb"
)

// Empty returns the empty bounds: min at +Inf, max at -Inf componentwise.
func Empty() orb.Bound {
	return orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}
}

// IsEmpty reports whether b is the empty bounds produced by Empty (or any
// bounds whose min exceeds its max on either axis, which can only happen
// for an unadded empty bounds).
func IsEmpty(b orb.Bound) bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1]
}

// Union returns the smallest bounds containing both a and b, correctly
// handling either side being Empty.
func Union(a, b orb.Bound) orb.Bound {
	if IsEmpty(a) {
		return b
	}
	if IsEmpty(b) {
		return a
	}
	return a.Union(b)
}

// AddPoint returns b expanded to include p.
func AddPoint(b orb.Bound, p orb.Point) orb.Bound {
	if IsEmpty(b) {
		return orb.Bound{Min: p, Max: p}
	}
	return b.Extend(p)
}

// Expand grows b by buffer on each side, where buffer is expressed in the
// same units as b's coordinates (spec §4.7: buffer·tileSize in meters).
func Expand(b orb.Bound, buffer float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.Min[0] - buffer, b.Min[1] - buffer},
		Max: orb.Point{b.Max[0] + buffer, b.Max[1] + buffer},
	}
}

// OfGeometry returns the bounding box of g, or Empty() if g is nil or has
// no vertices.
func OfGeometry(g orb.Geometry) orb.Bound {
	if g == nil {
		return Empty()
	}
	b := g.Bound()
	if IsEmpty(b) {
		return Empty()
	}
	return b
}
