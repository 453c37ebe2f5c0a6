// Package clip implements spec §4.3's rectangular clipper: point testing,
// Cohen-Sutherland-style polyline clipping, and Sutherland-Hodgman ring
// clipping against an axis-aligned tile bounds. Grounded on the call-site
// shape of the teacher's `layer.Clip(tileBound)` (gotiler.go:163), but
// hand-written since the exact clip algorithm is this module's payload.
package clip

import "github.com/paulmach/orb"

// TestPoint reports whether p lies inside b, closed on min, open on max.
func TestPoint(b orb.Bound, p orb.Point) bool {
	return p[0] >= b.Min[0] && p[0] < b.Max[0] && p[1] >= b.Min[1] && p[1] < b.Max[1]
}

// outCode bits for Cohen-Sutherland.
const (
	insideCode = 0
	left       = 1
	right      = 2
	bottom     = 4
	top        = 8
)

func outCode(b orb.Bound, p orb.Point) int {
	code := insideCode
	if p[0] < b.Min[0] {
		code |= left
	} else if p[0] > b.Max[0] {
		code |= right
	}
	if p[1] < b.Min[1] {
		code |= bottom
	} else if p[1] > b.Max[1] {
		code |= top
	}
	return code
}

// clipSegment clips a single segment a-b against bound using Cohen-Sutherland.
// Returns the clipped segment and whether any part of it survived.
func clipSegment(bound orb.Bound, a, b orb.Point) (orb.Point, orb.Point, bool) {
	codeA, codeB := outCode(bound, a), outCode(bound, b)
	for {
		if codeA|codeB == 0 {
			return a, b, true
		}
		if codeA&codeB != 0 {
			return a, b, false
		}

		var x, y float64
		codeOut := codeA
		if codeOut == 0 {
			codeOut = codeB
		}

		switch {
		case codeOut&top != 0:
			x = a[0] + (b[0]-a[0])*(bound.Max[1]-a[1])/(b[1]-a[1])
			y = bound.Max[1]
		case codeOut&bottom != 0:
			x = a[0] + (b[0]-a[0])*(bound.Min[1]-a[1])/(b[1]-a[1])
			y = bound.Min[1]
		case codeOut&right != 0:
			y = a[1] + (b[1]-a[1])*(bound.Max[0]-a[0])/(b[0]-a[0])
			x = bound.Max[0]
		case codeOut&left != 0:
			y = a[1] + (b[1]-a[1])*(bound.Min[0]-a[0])/(b[0]-a[0])
			x = bound.Min[0]
		}

		if codeOut == codeA {
			a = orb.Point{x, y}
			codeA = outCode(bound, a)
		} else {
			b = orb.Point{x, y}
			codeB = outCode(bound, b)
		}
	}
}

// LineString clips a single polyline against bound, producing zero or more
// fragments. Fragments shorter than 2 points are omitted. Successive
// segments that stay inside are concatenated into one fragment; a segment
// that exits and a later one that re-enters start a new fragment.
func LineString(line orb.LineString, bound orb.Bound) []orb.LineString {
	if len(line) < 2 {
		return nil
	}

	var out []orb.LineString
	var current orb.LineString

	flush := func() {
		if len(current) >= 2 {
			out = append(out, current)
		}
		current = nil
	}

	for i := 0; i < len(line)-1; i++ {
		a, b, ok := clipSegment(bound, line[i], line[i+1])
		if !ok {
			flush()
			continue
		}
		if len(current) == 0 {
			current = append(current, a)
		} else if current[len(current)-1] != a {
			// The clipped segment's start doesn't connect to the running
			// fragment (we re-entered elsewhere): start a new fragment.
			flush()
			current = append(current, a)
		}
		current = append(current, b)
	}
	flush()
	return out
}

// Ring clips a polygon ring against bound using Sutherland-Hodgman,
// processing the four edges (left, right, bottom, top) in that fixed
// order. A point exactly on an edge is treated as inside. The caller
// discards the result if fewer than 3 vertices remain.
func Ring(ring orb.Ring, bound orb.Bound) orb.Ring {
	if len(ring) == 0 {
		return nil
	}

	type edgeFn struct {
		inside func(p orb.Point) bool
		isect  func(a, b orb.Point) orb.Point
	}

	edges := []edgeFn{
		{
			inside: func(p orb.Point) bool { return p[0] >= bound.Min[0] },
			isect: func(a, b orb.Point) orb.Point {
				t := (bound.Min[0] - a[0]) / (b[0] - a[0])
				return orb.Point{bound.Min[0], a[1] + t*(b[1]-a[1])}
			},
		},
		{
			inside: func(p orb.Point) bool { return p[0] <= bound.Max[0] },
			isect: func(a, b orb.Point) orb.Point {
				t := (bound.Max[0] - a[0]) / (b[0] - a[0])
				return orb.Point{bound.Max[0], a[1] + t*(b[1]-a[1])}
			},
		},
		{
			inside: func(p orb.Point) bool { return p[1] >= bound.Min[1] },
			isect: func(a, b orb.Point) orb.Point {
				t := (bound.Min[1] - a[1]) / (b[1] - a[1])
				return orb.Point{a[0] + t*(b[0]-a[0]), bound.Min[1]}
			},
		},
		{
			inside: func(p orb.Point) bool { return p[1] <= bound.Max[1] },
			isect: func(a, b orb.Point) orb.Point {
				t := (bound.Max[1] - a[1]) / (b[1] - a[1])
				return orb.Point{a[0] + t*(b[0]-a[0]), bound.Max[1]}
			},
		},
	}

	poly := append(orb.Ring{}, ring...)
	for _, e := range edges {
		if len(poly) == 0 {
			break
		}
		var out orb.Ring
		n := len(poly)
		for i := 0; i < n; i++ {
			curr := poly[i]
			prev := poly[(i-1+n)%n]
			currIn := e.inside(curr)
			prevIn := e.inside(prev)

			if currIn {
				if !prevIn {
					out = append(out, e.isect(prev, curr))
				}
				out = append(out, curr)
			} else if prevIn {
				out = append(out, e.isect(prev, curr))
			}
		}
		poly = out
	}
	return poly
}
