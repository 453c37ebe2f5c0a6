// Package geojsonio ingests GeoJSON Feature/FeatureCollection values into
// layerstore features, projecting WGS84 coordinates to Web-Mercator meters
// and validating property values against the MVT-expressible scalar set.
// Grounded on valpere-tile_to_json's converter package (geometry-type
// switch over orb/geojson features, property pass-through) and on
// internal/tiler/gotiler.go's use of orb/geojson for feature decoding,
// adapted to project coordinates and reject unsupported types instead of
// encoding directly.
package geojsonio

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/vectortile/internal/layerstore"
	"github.com/joeblew999/vectortile/internal/mercator"
)

// IngestError reports a problem with the shape or content of ingested
// GeoJSON (spec §7): malformed structure, unsupported geometry type, or an
// unsupported property value type.
type IngestError struct {
	Reason string
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("geojsonio: %s", e.Reason)
}

// Target receives projected features extracted from GeoJSON. layerstore.Store
// satisfies this via its AddMulti* methods.
type Target interface {
	AddMultiPoint(points orb.MultiPoint, props []layerstore.Property) error
	AddMultiLineString(lines orb.MultiLineString, props []layerstore.Property) error
	AddMultiPolygon(polys orb.MultiPolygon, props []layerstore.Property) error
}

// Import decodes raw GeoJSON bytes holding a Feature or FeatureCollection
// and appends each feature (projected to WM meters) to dst, which must
// already have a current layer (spec §4.6/§4.5).
func Import(raw []byte, dst Target, earthRadius float64) error {
	if fc, err := geojson.UnmarshalFeatureCollection(raw); err == nil && fc != nil {
		return importFeatures(fc.Features, dst, earthRadius)
	}
	if f, err := geojson.UnmarshalFeature(raw); err == nil && f != nil {
		return importFeatures([]*geojson.Feature{f}, dst, earthRadius)
	}
	return &IngestError{Reason: "root value is neither a GeoJSON Feature nor FeatureCollection"}
}

func importFeatures(features []*geojson.Feature, dst Target, earthRadius float64) error {
	for _, f := range features {
		if f == nil || f.Geometry == nil {
			return &IngestError{Reason: "feature missing geometry"}
		}
		props, err := convertProperties(f.Properties)
		if err != nil {
			return err
		}
		if err := importGeometry(f.Geometry, props, dst, earthRadius); err != nil {
			return err
		}
	}
	return nil
}

func importGeometry(g orb.Geometry, props []layerstore.Property, dst Target, earthRadius float64) error {
	switch t := g.(type) {
	case orb.Point:
		p, err := projectPoint(t, earthRadius)
		if err != nil {
			return err
		}
		return dst.AddMultiPoint(orb.MultiPoint{p}, props)
	case orb.MultiPoint:
		pts, err := projectMultiPoint(t, earthRadius)
		if err != nil {
			return err
		}
		return dst.AddMultiPoint(pts, props)
	case orb.LineString:
		line, err := projectLineString(t, earthRadius)
		if err != nil {
			return err
		}
		return dst.AddMultiLineString(orb.MultiLineString{line}, props)
	case orb.MultiLineString:
		lines, err := projectMultiLineString(t, earthRadius)
		if err != nil {
			return err
		}
		return dst.AddMultiLineString(lines, props)
	case orb.Polygon:
		poly, err := projectPolygon(t, earthRadius)
		if err != nil {
			return err
		}
		return dst.AddMultiPolygon(orb.MultiPolygon{poly}, props)
	case orb.MultiPolygon:
		polys, err := projectMultiPolygon(t, earthRadius)
		if err != nil {
			return err
		}
		return dst.AddMultiPolygon(polys, props)
	default:
		return &IngestError{Reason: fmt.Sprintf("unsupported geometry type %T", g)}
	}
}

func projectPoint(p orb.Point, earthRadius float64) (orb.Point, error) {
	if !isFinitePoint(p) {
		return orb.Point{}, &IngestError{Reason: "non-finite coordinate"}
	}
	x, y := mercator.ToWebMercator(p[0], p[1], earthRadius)
	return orb.Point{x, y}, nil
}

func projectMultiPoint(mp orb.MultiPoint, earthRadius float64) (orb.MultiPoint, error) {
	out := make(orb.MultiPoint, len(mp))
	for i, p := range mp {
		pp, err := projectPoint(p, earthRadius)
		if err != nil {
			return nil, err
		}
		out[i] = pp
	}
	return out, nil
}

func projectLineString(line orb.LineString, earthRadius float64) (orb.LineString, error) {
	out := make(orb.LineString, len(line))
	for i, p := range line {
		pp, err := projectPoint(p, earthRadius)
		if err != nil {
			return nil, err
		}
		out[i] = pp
	}
	return out, nil
}

func projectMultiLineString(mls orb.MultiLineString, earthRadius float64) (orb.MultiLineString, error) {
	out := make(orb.MultiLineString, len(mls))
	for i, line := range mls {
		l, err := projectLineString(line, earthRadius)
		if err != nil {
			return nil, err
		}
		out[i] = l
	}
	return out, nil
}

func projectRing(ring orb.Ring, earthRadius float64) (orb.Ring, error) {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		pp, err := projectPoint(p, earthRadius)
		if err != nil {
			return nil, err
		}
		out[i] = pp
	}
	return out, nil
}

func projectPolygon(poly orb.Polygon, earthRadius float64) (orb.Polygon, error) {
	out := make(orb.Polygon, len(poly))
	for i, ring := range poly {
		r, err := projectRing(ring, earthRadius)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func projectMultiPolygon(mp orb.MultiPolygon, earthRadius float64) (orb.MultiPolygon, error) {
	out := make(orb.MultiPolygon, len(mp))
	for i, poly := range mp {
		p, err := projectPolygon(poly, earthRadius)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func isFinitePoint(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsInf(p[0], 0) && !math.IsNaN(p[1]) && !math.IsInf(p[1], 0)
}

// convertProperties rejects any value outside the MVT-expressible scalar
// set (spec §7: "unsupported property value type" is an IngestError).
// geojson.Properties is a Go map with no defined iteration order, so keys
// are sorted lexicographically here to keep feature encoding deterministic
// (spec §8 property 9) regardless of map iteration order.
func convertProperties(props geojson.Properties) ([]layerstore.Property, error) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]layerstore.Property, 0, len(props))
	for _, k := range keys {
		v := props[k]
		if !isScalarJSONValue(v) {
			return nil, &IngestError{Reason: fmt.Sprintf("property %q has unsupported value type %T", k, v)}
		}
		out = append(out, layerstore.Property{Key: k, Value: v})
	}
	return out, nil
}

func isScalarJSONValue(v any) bool {
	switch v.(type) {
	case string, bool, float64, float32, int, int64:
		return true
	default:
		return false
	}
}
