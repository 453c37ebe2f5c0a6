// Package simplify implements tolerance-based Douglas-Peucker line and ring
// simplification (spec §4.2), grounded on the call-site shape of the
// teacher's `layer.Simplify(simplify.DouglasPeucker(epsilon))` but
// hand-written rather than delegated, since producing this exact algorithm
// is this module's reason to exist.
package simplify

import (
	"math"

	"github.com/paulmach/orb"
)

// LineString retains the vertex of greatest perpendicular distance to the
// current segment whenever that distance exceeds tolerance; intermediate
// vertices within tolerance are dropped. Endpoints are always preserved.
func LineString(line orb.LineString, tolerance float64) orb.LineString {
	if len(line) <= 2 || tolerance <= 0 {
		return append(orb.LineString{}, line...)
	}
	keep := make([]bool, len(line))
	keep[0] = true
	keep[len(line)-1] = true
	douglasPeucker(line, 0, len(line)-1, tolerance, keep)

	out := make(orb.LineString, 0, len(line))
	for i, k := range keep {
		if k {
			out = append(out, line[i])
		}
	}
	return out
}

// Ring simplifies a closed ring (stored open: first point != last). The
// caller is responsible for discarding rings with fewer than 3 vertices
// after simplification. Ring closes the loop internally so the segment
// between the last and first vertex participates in the distance test.
func Ring(ring orb.Ring, tolerance float64) orb.Ring {
	if len(ring) <= 3 || tolerance <= 0 {
		return append(orb.Ring{}, ring...)
	}

	// Treat the ring as a closed line string (first point repeated at the
	// end) so Douglas-Peucker sees the closing segment, then drop the
	// synthetic duplicate from the result.
	closed := make(orb.LineString, len(ring)+1)
	copy(closed, ring)
	closed[len(ring)] = ring[0]

	simplified := LineString(closed, tolerance)
	if len(simplified) == 0 {
		return nil
	}
	out := make(orb.Ring, len(simplified)-1)
	copy(out, simplified[:len(simplified)-1])
	return out
}

func douglasPeucker(line orb.LineString, lo, hi int, tolerance float64, keep []bool) {
	if hi <= lo+1 {
		return
	}

	maxDist := -1.0
	maxIdx := -1
	a, b := line[lo], line[hi]
	for i := lo + 1; i < hi; i++ {
		d := perpendicularDistance(line[i], a, b)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist > tolerance {
		keep[maxIdx] = true
		douglasPeucker(line, lo, maxIdx, tolerance, keep)
		douglasPeucker(line, maxIdx, hi, tolerance, keep)
	}
}

// perpendicularDistance returns the perpendicular distance from p to the
// infinite line through a and b (or the distance to a, if a == b); it is
// not clamped to the segment's endpoints.
func perpendicularDistance(p, a, b orb.Point) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	if dx == 0 && dy == 0 {
		return math.Hypot(p[0]-a[0], p[1]-a[1])
	}
	// Distance from point to infinite line through a,b.
	num := math.Abs(dy*p[0] - dx*p[1] + b[0]*a[1] - b[1]*a[0])
	den := math.Hypot(dx, dy)
	return num / den
}
