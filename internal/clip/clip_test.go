package clip

import (
	"testing"

	"github.com/paulmach/orb"
)

func square(min, max float64) orb.Bound {
	return orb.Bound{Min: orb.Point{min, min}, Max: orb.Point{max, max}}
}

func TestTestPointClosedOpen(t *testing.T) {
	b := square(0, 10)
	if !TestPoint(b, orb.Point{0, 0}) {
		t.Error("min corner should be inside (closed on min)")
	}
	if TestPoint(b, orb.Point{10, 10}) {
		t.Error("max corner should be outside (open on max)")
	}
	if !TestPoint(b, orb.Point{5, 5}) {
		t.Error("interior point should be inside")
	}
}

func TestLineStringFullyInside(t *testing.T) {
	b := square(0, 10)
	line := orb.LineString{{1, 1}, {5, 5}, {9, 9}}
	out := LineString(line, b)
	if len(out) != 1 || len(out[0]) != 3 {
		t.Fatalf("out = %v, want single 3-point fragment", out)
	}
}

func TestLineStringClipsAcrossEdge(t *testing.T) {
	b := square(0, 10)
	line := orb.LineString{{-5, 5}, {5, 5}, {15, 5}}
	out := LineString(line, b)
	if len(out) != 1 {
		t.Fatalf("out = %v, want one fragment", out)
	}
	frag := out[0]
	for _, p := range frag {
		if p[0] < b.Min[0] || p[0] > b.Max[0] {
			t.Errorf("vertex %v outside bound on x", p)
		}
	}
}

func TestLineStringSplitsOnExitReentry(t *testing.T) {
	b := square(0, 10)
	// Goes inside, leaves to the right, comes back inside.
	line := orb.LineString{{5, 5}, {15, 5}, {15, 6}, {5, 6}}
	out := LineString(line, b)
	if len(out) != 2 {
		t.Fatalf("out = %v (%d fragments), want 2", out, len(out))
	}
}

func TestLineStringFullyOutside(t *testing.T) {
	b := square(0, 10)
	line := orb.LineString{{20, 20}, {30, 30}}
	out := LineString(line, b)
	if len(out) != 0 {
		t.Fatalf("out = %v, want no fragments", out)
	}
}

func TestRingClipSquareFullyInside(t *testing.T) {
	b := square(0, 10)
	ring := orb.Ring{{1, 1}, {9, 1}, {9, 9}, {1, 9}}
	out := Ring(ring, b)
	if len(out) != 4 {
		t.Fatalf("out = %v, want 4 vertices unchanged", out)
	}
}

func TestRingClipAgainstOneEdge(t *testing.T) {
	b := square(0, 10)
	// Square straddling the right edge.
	ring := orb.Ring{{5, 2}, {15, 2}, {15, 8}, {5, 8}}
	out := Ring(ring, b)
	if len(out) < 3 {
		t.Fatalf("expected a clipped ring with >=3 vertices, got %v", out)
	}
	for _, p := range out {
		if p[0] > b.Max[0]+1e-9 {
			t.Errorf("vertex %v exceeds right edge", p)
		}
	}
}

func TestRingClipFullyOutsideDrops(t *testing.T) {
	b := square(0, 10)
	ring := orb.Ring{{20, 20}, {30, 20}, {30, 30}, {20, 30}}
	out := Ring(ring, b)
	if len(out) >= 3 {
		t.Fatalf("expected ring to vanish, got %v", out)
	}
}

func TestRingClipBoundaryIsInside(t *testing.T) {
	b := square(0, 10)
	ring := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	out := Ring(ring, b)
	if len(out) != 4 {
		t.Fatalf("ring exactly on boundary should be preserved, got %v", out)
	}
}
