// Package layerstore holds the mutable working set of layers a builder
// accumulates before tiling: an ordered list of named layers, each with its
// own buffer and a running union of its features' bounds. Grounded on
// internal/service/layer.go's ordered create-then-append CRUD shape,
// adapted from a database-backed service into an in-memory accumulator.
package layerstore

import (
	"github.com/paulmach/orb"

	"github.com/joeblew999/vectortile/internal/geomutil"
)

// GeomKind discriminates the three feature shapes a layer can hold.
type GeomKind int

const (
	KindMultiPoint GeomKind = iota
	KindMultiLineString
	KindMultiPolygon
)

// Feature is one geometry plus its properties, stored in WM-meter
// coordinates (already projected by the caller). Properties are kept as an
// ordered slice rather than a map to keep downstream encoding deterministic.
type Feature struct {
	Kind       GeomKind
	Points     orb.MultiPoint
	Lines      orb.MultiLineString
	Polygons   orb.MultiPolygon
	Properties []Property
	Bound      orb.Bound
}

// Property is one ordered key/value property entry, value already
// restricted to the MVT-expressible scalar set by the caller.
type Property struct {
	Key   string
	Value any
}

// Layer is one named collection of features sharing a buffer fraction.
type Layer struct {
	ID     string
	Buffer float64

	Features []Feature
	Bound    orb.Bound
}

// Store is an ordered collection of layers, in creation order.
type Store struct {
	layers []*Layer
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Layers returns the layers in creation order.
func (s *Store) Layers() []*Layer {
	return s.layers
}

// CreateLayer appends a new empty layer and makes it the target of
// subsequent AddMulti* calls (spec §4.5).
func (s *Store) CreateLayer(id string, buffer float64) *Layer {
	l := &Layer{ID: id, Buffer: buffer, Bound: geomutil.Empty()}
	s.layers = append(s.layers, l)
	return l
}

// currentLayer returns the most recently created layer, or nil if none
// exists yet.
func (s *Store) currentLayer() *Layer {
	if len(s.layers) == 0 {
		return nil
	}
	return s.layers[len(s.layers)-1]
}

// ErrNoLayer is returned by AddMulti* when called before any CreateLayer.
type ErrNoLayer struct{}

func (ErrNoLayer) Error() string {
	return "layerstore: no layer created yet"
}

// AddMultiPoint appends a MultiPoint feature to the most recently created
// layer, unioning its bound into both the feature and the layer (spec §4.5:
// "adding updates the layer's aggregate bounds by unioning the feature's
// bounding box").
func (s *Store) AddMultiPoint(points orb.MultiPoint, props []Property) error {
	l := s.currentLayer()
	if l == nil {
		return ErrNoLayer{}
	}
	b := geomutil.OfGeometry(points)
	l.Features = append(l.Features, Feature{Kind: KindMultiPoint, Points: points, Properties: props, Bound: b})
	l.Bound = geomutil.Union(l.Bound, b)
	return nil
}

// AddMultiLineString appends a MultiLineString feature to the most recently
// created layer.
func (s *Store) AddMultiLineString(lines orb.MultiLineString, props []Property) error {
	l := s.currentLayer()
	if l == nil {
		return ErrNoLayer{}
	}
	b := geomutil.OfGeometry(lines)
	l.Features = append(l.Features, Feature{Kind: KindMultiLineString, Lines: lines, Properties: props, Bound: b})
	l.Bound = geomutil.Union(l.Bound, b)
	return nil
}

// AddMultiPolygon appends a MultiPolygon feature to the most recently
// created layer. Rings are normalized to the spec's "stored open"
// convention before storing (spec §3: "Rings are closed implicitly...
// but stored open"): a caller that passes a ring with its last point
// equal to its first (GeoJSON's on-the-wire closed form, but also a
// plausible shape for a direct caller) has that duplicate stripped here,
// once, so every downstream consumer (simplifier, clipper, encoder) can
// rely on rings never carrying it.
func (s *Store) AddMultiPolygon(polys orb.MultiPolygon, props []Property) error {
	l := s.currentLayer()
	if l == nil {
		return ErrNoLayer{}
	}
	polys = openMultiPolygon(polys)
	b := geomutil.OfGeometry(polys)
	l.Features = append(l.Features, Feature{Kind: KindMultiPolygon, Polygons: polys, Properties: props, Bound: b})
	l.Bound = geomutil.Union(l.Bound, b)
	return nil
}

// openMultiPolygon returns polys with every ring's redundant closing
// vertex (last point equal to first) dropped.
func openMultiPolygon(polys orb.MultiPolygon) orb.MultiPolygon {
	out := make(orb.MultiPolygon, len(polys))
	for i, poly := range polys {
		np := make(orb.Polygon, len(poly))
		for j, ring := range poly {
			np[j] = openRing(ring)
		}
		out[i] = np
	}
	return out
}

// openRing drops ring's last point when it duplicates the first, leaving
// rings that were already stored open untouched.
func openRing(ring orb.Ring) orb.Ring {
	if len(ring) >= 2 && ring[len(ring)-1] == ring[0] {
		return ring[:len(ring)-1]
	}
	return ring
}

// Clone returns a deep-enough copy of the store for per-zoom simplification:
// layers, their feature slices and per-feature geometry slices are copied so
// that simplifying a zoom's working copy never mutates the original (spec
// §4.7 step 1 and §9: "a per-zoom working copy of the layer list is
// required because simplification is destructive at each zoom").
func (s *Store) Clone() *Store {
	out := &Store{layers: make([]*Layer, len(s.layers))}
	for i, l := range s.layers {
		nl := &Layer{ID: l.ID, Buffer: l.Buffer, Bound: l.Bound}
		nl.Features = make([]Feature, len(l.Features))
		for j, f := range l.Features {
			nf := f
			nf.Points = append(orb.MultiPoint(nil), f.Points...)
			nf.Lines = cloneMultiLineString(f.Lines)
			nf.Polygons = cloneMultiPolygon(f.Polygons)
			nf.Properties = append([]Property(nil), f.Properties...)
			nl.Features[j] = nf
		}
		out.layers[i] = nl
	}
	return out
}

func cloneMultiLineString(lines orb.MultiLineString) orb.MultiLineString {
	if lines == nil {
		return nil
	}
	out := make(orb.MultiLineString, len(lines))
	for i, line := range lines {
		out[i] = append(orb.LineString(nil), line...)
	}
	return out
}

func cloneMultiPolygon(polys orb.MultiPolygon) orb.MultiPolygon {
	if polys == nil {
		return nil
	}
	out := make(orb.MultiPolygon, len(polys))
	for i, poly := range polys {
		np := make(orb.Polygon, len(poly))
		for j, ring := range poly {
			np[j] = append(orb.Ring(nil), ring...)
		}
		out[i] = np
	}
	return out
}
