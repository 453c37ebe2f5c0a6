package geojsonio

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/joeblew999/vectortile/internal/layerstore"
	"github.com/joeblew999/vectortile/internal/mercator"
)

func newTarget() *layerstore.Store {
	s := layerstore.New()
	s.CreateLayer("features", 0)
	return s
}

func TestImportRejectsNonFeatureRoot(t *testing.T) {
	dst := newTarget()
	err := Import([]byte(`{"foo":"bar"}`), dst, mercator.EarthRadius)
	if err == nil {
		t.Fatal("expected IngestError for non-Feature/FeatureCollection root")
	}
	if _, ok := err.(*IngestError); !ok {
		t.Fatalf("error type = %T, want *IngestError", err)
	}
}

func TestImportSinglePointFeature(t *testing.T) {
	dst := newTarget()
	raw := []byte(`{"type":"Feature","geometry":{"type":"Point","coordinates":[0,0]},"properties":{"name":"origin"}}`)
	if err := Import(raw, dst, mercator.EarthRadius); err != nil {
		t.Fatalf("Import: %v", err)
	}
	layer := dst.Layers()[0]
	if len(layer.Features) != 1 {
		t.Fatalf("features = %d, want 1", len(layer.Features))
	}
	f := layer.Features[0]
	if f.Kind != layerstore.KindMultiPoint {
		t.Fatalf("kind = %v, want KindMultiPoint", f.Kind)
	}
	if len(f.Points) != 1 || f.Points[0] != (orb.Point{0, 0}) {
		t.Fatalf("points = %v, want [(0,0)] (equator/meridian projects to origin)", f.Points)
	}
	if len(f.Properties) != 1 || f.Properties[0].Key != "name" {
		t.Fatalf("properties = %v", f.Properties)
	}
}

func TestImportRejectsUnsupportedPropertyValue(t *testing.T) {
	dst := newTarget()
	raw := []byte(`{"type":"Feature","geometry":{"type":"Point","coordinates":[0,0]},"properties":{"nested":{"a":1}}}`)
	err := Import(raw, dst, mercator.EarthRadius)
	if err == nil {
		t.Fatal("expected IngestError for nested object property value")
	}
}

func TestImportMultiPolygonFeatureCollection(t *testing.T) {
	dst := newTarget()
	raw := []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,1],[0,0]]]]},"properties":{}}
	]}`)
	if err := Import(raw, dst, mercator.EarthRadius); err != nil {
		t.Fatalf("Import: %v", err)
	}
	layer := dst.Layers()[0]
	if len(layer.Features) != 1 {
		t.Fatalf("features = %d, want 1", len(layer.Features))
	}
	if layer.Features[0].Kind != layerstore.KindMultiPolygon {
		t.Fatalf("kind = %v, want KindMultiPolygon", layer.Features[0].Kind)
	}
	if len(layer.Features[0].Polygons) != 1 || len(layer.Features[0].Polygons[0]) != 1 {
		t.Fatalf("polygons = %v", layer.Features[0].Polygons)
	}
}

// Scenario S6: feeding a FeatureCollection with one MultiPolygon must
// produce the same projected coordinates as the equivalent direct
// AddMultiPolygon call after projecting by hand.
func TestImportMatchesDirectAddMultiPolygonAfterProjection(t *testing.T) {
	raw := []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"MultiPolygon","coordinates":[[[[10,20],[11,20],[11,21],[10,21],[10,20]]]]},"properties":{}}
	]}`)

	viaGeoJSON := newTarget()
	if err := Import(raw, viaGeoJSON, mercator.EarthRadius); err != nil {
		t.Fatalf("Import: %v", err)
	}

	direct := newTarget()
	ring := make(orb.Ring, 5)
	coords := [][2]float64{{10, 20}, {11, 20}, {11, 21}, {10, 21}, {10, 20}}
	for i, c := range coords {
		x, y := mercator.ToWebMercator(c[0], c[1], mercator.EarthRadius)
		ring[i] = orb.Point{x, y}
	}
	if err := direct.AddMultiPolygon(orb.MultiPolygon{{ring}}, nil); err != nil {
		t.Fatalf("AddMultiPolygon: %v", err)
	}

	got := viaGeoJSON.Layers()[0].Features[0].Polygons
	want := direct.Layers()[0].Features[0].Polygons
	if len(got) != len(want) || len(got[0]) != len(want[0]) || len(got[0][0]) != len(want[0][0]) {
		t.Fatalf("shape mismatch: got %v, want %v", got, want)
	}
	for i := range want[0][0] {
		if got[0][0][i] != want[0][0][i] {
			t.Fatalf("vertex %d: got %v, want %v", i, got[0][0][i], want[0][0][i])
		}
	}
}

func TestImportRejectsUnknownGeometryType(t *testing.T) {
	dst := newTarget()
	raw := []byte(`{"type":"Feature","geometry":{"type":"GeometryCollection","geometries":[]},"properties":{}}`)
	if err := Import(raw, dst, mercator.EarthRadius); err == nil {
		t.Fatal("expected IngestError for unsupported geometry type")
	}
}
