package layerstore

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestAddMultiPointWithoutLayerErrors(t *testing.T) {
	s := New()
	if err := s.AddMultiPoint(orb.MultiPoint{{0, 0}}, nil); err == nil {
		t.Fatal("expected ErrNoLayer, got nil")
	}
}

func TestCreateLayerThenAddAppendsToLatest(t *testing.T) {
	s := New()
	s.CreateLayer("points", 0)
	s.CreateLayer("lines", 0.1)

	if err := s.AddMultiLineString(orb.MultiLineString{{{0, 0}, {1, 1}}}, nil); err != nil {
		t.Fatalf("AddMultiLineString: %v", err)
	}

	layers := s.Layers()
	if len(layers[0].Features) != 0 {
		t.Fatalf("first layer should be untouched, got %d features", len(layers[0].Features))
	}
	if len(layers[1].Features) != 1 {
		t.Fatalf("second (latest) layer should have 1 feature, got %d", len(layers[1].Features))
	}
}

// Testable property #2: bounds monotonicity — after any sequence of
// additions, layer.Bound equals the union of all contained features'
// bounds.
func TestBoundsMonotonicity(t *testing.T) {
	s := New()
	l := s.CreateLayer("mixed", 0)

	if err := s.AddMultiPoint(orb.MultiPoint{{0, 0}}, nil); err != nil {
		t.Fatalf("AddMultiPoint: %v", err)
	}
	b1 := l.Bound
	if b1.Min != (orb.Point{0, 0}) || b1.Max != (orb.Point{0, 0}) {
		t.Fatalf("bound after first point = %v", b1)
	}

	if err := s.AddMultiPoint(orb.MultiPoint{{10, -5}}, nil); err != nil {
		t.Fatalf("AddMultiPoint: %v", err)
	}
	b2 := l.Bound
	if b2.Min != (orb.Point{0, -5}) || b2.Max != (orb.Point{10, 0}) {
		t.Fatalf("bound after second point = %v, want union of both points", b2)
	}

	// Adding a feature strictly inside the current bound must not shrink it.
	if err := s.AddMultiPoint(orb.MultiPoint{{5, -2}}, nil); err != nil {
		t.Fatalf("AddMultiPoint: %v", err)
	}
	b3 := l.Bound
	if b3 != b2 {
		t.Fatalf("bound shrank or changed after interior point: got %v, want %v", b3, b2)
	}
}

func TestClonePreservesContentsWithIndependentBacking(t *testing.T) {
	s := New()
	s.CreateLayer("lines", 0)
	line := orb.MultiLineString{{{0, 0}, {1, 1}, {2, 2}}}
	if err := s.AddMultiLineString(line, []Property{{Key: "name", Value: "a"}}); err != nil {
		t.Fatalf("AddMultiLineString: %v", err)
	}

	clone := s.Clone()
	clone.Layers()[0].Features[0].Lines[0][0][0] = 999

	original := s.Layers()[0].Features[0].Lines[0][0][0]
	if original == 999 {
		t.Fatal("mutating clone's geometry mutated the original store")
	}
}

// AddMultiPolygon must strip a ring's redundant closing vertex (last
// point equal to first) so every ring ends up stored open per spec §3,
// regardless of whether the caller already passed it open or closed.
func TestAddMultiPolygonNormalizesClosedRings(t *testing.T) {
	s := New()
	s.CreateLayer("polys", 0)
	closedRing := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	if err := s.AddMultiPolygon(orb.MultiPolygon{{closedRing}}, nil); err != nil {
		t.Fatalf("AddMultiPolygon: %v", err)
	}

	stored := s.Layers()[0].Features[0].Polygons[0][0]
	if len(stored) != 4 {
		t.Fatalf("stored ring has %d points, want 4 (closing vertex stripped)", len(stored))
	}
	if stored[len(stored)-1] == stored[0] {
		t.Fatalf("stored ring still ends with a duplicate of its first point: %v", stored)
	}
}

// An already-open ring must pass through unchanged.
func TestAddMultiPolygonLeavesOpenRingsUntouched(t *testing.T) {
	s := New()
	s.CreateLayer("polys", 0)
	openRing := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	if err := s.AddMultiPolygon(orb.MultiPolygon{{openRing}}, nil); err != nil {
		t.Fatalf("AddMultiPolygon: %v", err)
	}

	stored := s.Layers()[0].Features[0].Polygons[0][0]
	if len(stored) != 4 {
		t.Fatalf("stored ring has %d points, want 4", len(stored))
	}
}

func TestCloneCopiesAllLayersAndFeatureCounts(t *testing.T) {
	s := New()
	s.CreateLayer("a", 0)
	if err := s.AddMultiPoint(orb.MultiPoint{{0, 0}, {1, 1}}, nil); err != nil {
		t.Fatalf("AddMultiPoint: %v", err)
	}
	s.CreateLayer("b", 0)
	if err := s.AddMultiPolygon(orb.MultiPolygon{{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}}, nil); err != nil {
		t.Fatalf("AddMultiPolygon: %v", err)
	}

	clone := s.Clone()
	if len(clone.Layers()) != 2 {
		t.Fatalf("clone has %d layers, want 2", len(clone.Layers()))
	}
	if len(clone.Layers()[0].Features[0].Points) != 2 {
		t.Fatalf("clone layer a points = %d, want 2", len(clone.Layers()[0].Features[0].Points))
	}
	if len(clone.Layers()[1].Features[0].Polygons) != 1 {
		t.Fatalf("clone layer b polygons = %d, want 1", len(clone.Layers()[1].Features[0].Polygons))
	}
}
