package vtile

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/joeblew999/vectortile/internal/clip"
	"github.com/joeblew999/vectortile/internal/geojsonio"
	"github.com/joeblew999/vectortile/internal/geomutil"
	"github.com/joeblew999/vectortile/internal/layerstore"
	"github.com/joeblew999/vectortile/internal/mercator"
	"github.com/joeblew999/vectortile/internal/mvtencode"
	"github.com/joeblew999/vectortile/internal/simplify"
)

// Builder accumulates layers and features, then emits a tile pyramid via
// BuildTiles. Feature/layer additions are append-only up to the first
// BuildTiles call, which itself operates on a working copy so the Builder
// remains reusable afterward (spec §3 "Lifecycle").
type Builder struct {
	cfg   Config
	store *layerstore.Store
}

// New validates cfg and returns a Builder with one initial unnamed layer
// (spec §3: "An initial unnamed layer ("") exists from construction").
func New(cfg Config) (*Builder, error) {
	resolved := cfg.withDefaults()
	if err := resolved.validate(); err != nil {
		return nil, err
	}
	b := &Builder{cfg: resolved, store: layerstore.New()}
	b.store.CreateLayer("", resolved.DefaultLayerBuffer)
	return b, nil
}

// CreateLayer appends a new layer, which becomes the target of subsequent
// AddMulti* calls. buffer defaults to the config's DefaultLayerBuffer when
// omitted.
func (b *Builder) CreateLayer(id string, buffer ...float64) {
	buf := b.cfg.DefaultLayerBuffer
	if len(buffer) > 0 {
		buf = buffer[0]
	}
	b.store.CreateLayer(id, buf)
}

// IngestError reports an ingest-time problem: a property value outside the
// MVT-expressible scalar set on a direct AddMulti* call, or a malformed
// GeoJSON structure/geometry/property on an ImportGeoJSON call (spec §7).
// It is the one ingest-error type the public API exposes; ImportGeoJSON
// translates internal/geojsonio's own error of the same shape into this
// type at the package boundary so callers can `errors.As` against a single
// concrete type regardless of which ingest path raised it.
type IngestError struct {
	Reason string
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("vtile: %s", e.Reason)
}

func validateProperties(props []layerstore.Property) error {
	for _, p := range props {
		if _, ok := mvtencode.ValueFromAny(p.Value); !ok {
			return &IngestError{Reason: fmt.Sprintf("property %q has unsupported value type %T", p.Key, p.Value)}
		}
	}
	return nil
}

// AddMultiPoint appends a MultiPoint feature (pre-projected WM meters) to
// the most recently created layer.
func (b *Builder) AddMultiPoint(points orb.MultiPoint, properties []layerstore.Property) error {
	if err := validateProperties(properties); err != nil {
		return err
	}
	return b.store.AddMultiPoint(points, properties)
}

// AddMultiLineString appends a MultiLineString feature to the most
// recently created layer.
func (b *Builder) AddMultiLineString(lines orb.MultiLineString, properties []layerstore.Property) error {
	if err := validateProperties(properties); err != nil {
		return err
	}
	return b.store.AddMultiLineString(lines, properties)
}

// AddMultiPolygon appends a MultiPolygon feature to the most recently
// created layer.
func (b *Builder) AddMultiPolygon(polys orb.MultiPolygon, properties []layerstore.Property) error {
	if err := validateProperties(properties); err != nil {
		return err
	}
	return b.store.AddMultiPolygon(polys, properties)
}

// ImportGeoJSON ingests a raw GeoJSON Feature or FeatureCollection (WGS84
// lon/lat, optional elevation discarded), projecting and appending each
// feature to the most recently created layer (spec §4.6).
func (b *Builder) ImportGeoJSON(raw []byte) error {
	if err := geojsonio.Import(raw, b.store, b.cfg.EarthRadius); err != nil {
		var ie *geojsonio.IngestError
		if errors.As(err, &ie) {
			return &IngestError{Reason: ie.Reason}
		}
		return err
	}
	return nil
}

// TileInfo carries observability detail alongside each emitted tile's
// bytes: layer and feature counts that contributed to this tile.
type TileInfo struct {
	LayerCount   int
	FeatureCount int
}

// TileHandler receives one built tile. Returning a non-nil error aborts
// the remainder of the build and propagates to BuildTiles' caller (spec
// §7: "exceptions or error returns from it abort the build").
type TileHandler func(z, x, y int, data []byte, info TileInfo) error

// BuildTiles runs the per-zoom tile pyramid build (spec §4.7) from
// cfg.MaxZoom down to cfg.MinZoom, invoking handler once per non-empty
// tile. It operates on a working copy of the layer store, so the Builder
// remains usable for further additions (and further BuildTiles calls)
// afterward.
func (b *Builder) BuildTiles(handler TileHandler) error {
	working := b.store.Clone()

	minX, minY, _, _ := mercator.WorldBounds(b.cfg.EarthRadius)
	mapMin := orb.Point{minX, minY}

	for z := b.cfg.MaxZoom; z >= b.cfg.MinZoom; z-- {
		tolerance := zoomTolerance(b.cfg.EarthRadius, b.cfg.SimplificationFactor, z)
		simplifyWorkingCopy(working, tolerance)

		tileSize := 2 * math.Pi * b.cfg.EarthRadius / math.Pow(2, float64(z))
		maxIndex := int(math.Pow(2, float64(z))) - 1

		if err := buildZoom(working, z, tileSize, maxIndex, mapMin, b.cfg, handler); err != nil {
			return err
		}
	}
	return nil
}

// zoomTolerance computes t(z) = (2*pi*R / 2^z) * simplificationFactor
// (spec §4.2).
func zoomTolerance(earthRadius, simplificationFactor float64, z int) float64 {
	tileSize := 2 * math.Pi * earthRadius / math.Pow(2, float64(z))
	return tileSize * simplificationFactor
}

// simplifyWorkingCopy simplifies every line/ring feature in place, in the
// given working copy, at the given tolerance. Points are never simplified
// (spec §4.2). This mutates working's geometry slices directly: the
// monotonically-stronger-tolerance propagation across zooms (spec §9) is
// intentional — the caller must not re-clone from the original Builder
// store between zooms.
func simplifyWorkingCopy(working *layerstore.Store, tolerance float64) {
	for _, layer := range working.Layers() {
		kept := layer.Features[:0]
		for _, f := range layer.Features {
			switch f.Kind {
			case layerstore.KindMultiLineString:
				lines := make(orb.MultiLineString, 0, len(f.Lines))
				for _, line := range f.Lines {
					s := simplify.LineString(line, tolerance)
					if len(s) >= 2 {
						lines = append(lines, s)
					}
				}
				if len(lines) == 0 {
					continue
				}
				f.Lines = lines
			case layerstore.KindMultiPolygon:
				polys := make(orb.MultiPolygon, 0, len(f.Polygons))
				for _, poly := range f.Polygons {
					sp := simplifyPolygon(poly, tolerance)
					if sp != nil {
						polys = append(polys, sp)
					}
				}
				if len(polys) == 0 {
					continue
				}
				f.Polygons = polys
			}
			kept = append(kept, f)
		}
		layer.Features = kept
	}
}

// simplifyPolygon simplifies every ring of poly; if the exterior ring
// (index 0) vanishes, the whole polygon is dropped (spec §3). A hole that
// vanishes is simply omitted.
func simplifyPolygon(poly orb.Polygon, tolerance float64) orb.Polygon {
	if len(poly) == 0 {
		return nil
	}
	exterior := simplify.Ring(poly[0], tolerance)
	if len(exterior) < 3 {
		return nil
	}
	out := orb.Polygon{exterior}
	for _, hole := range poly[1:] {
		sh := simplify.Ring(hole, tolerance)
		if len(sh) >= 3 {
			out = append(out, sh)
		}
	}
	return out
}

// buildZoom computes the covered tile range for one zoom and invokes the
// clip+encode+emit step for each candidate tile (spec §4.7 steps 3-5).
func buildZoom(working *layerstore.Store, z int, tileSize float64, maxIndex int, mapMin orb.Point, cfg Config, handler TileHandler) error {
	layers := working.Layers()

	candidate := geomutil.Empty()
	for _, layer := range layers {
		if len(layer.Features) == 0 {
			continue
		}
		candidate = geomutil.Union(candidate, geomutil.Expand(layer.Bound, layer.Buffer*tileSize))
	}
	if geomutil.IsEmpty(candidate) {
		return nil
	}

	// The upper bound is floor(...)+1, not ceil(...): they agree except when
	// the expanded bound lands exactly on a tile-grid line, where ceil would
	// exclude the tile whose [min, max) clip range that line is the min of
	// (spec §4.7 step 4; matches MBVTTileBuilder.cpp's tileX1/tileY1).
	tileX0 := clampTileIndex(int(math.Floor((candidate.Min[0]-mapMin[0])/tileSize)), maxIndex)
	tileX1 := clampTileIndex(int(math.Floor((candidate.Max[0]-mapMin[0])/tileSize))+1, maxIndex+1)
	tileY0 := clampTileIndex(int(math.Floor((candidate.Min[1]-mapMin[1])/tileSize)), maxIndex)
	tileY1 := clampTileIndex(int(math.Floor((candidate.Max[1]-mapMin[1])/tileSize))+1, maxIndex+1)

	for tx := tileX0; tx < tileX1; tx++ {
		for ty := tileY0; ty < tileY1; ty++ {
			if err := buildTile(layers, z, tx, ty, tileSize, maxIndex, mapMin, cfg, handler); err != nil {
				return err
			}
		}
	}
	return nil
}

func clampTileIndex(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}

// buildTile clips, encodes, and emits a single (z, tileX, tileY) tile.
// tileY here is in the "source" northward-increasing convention; it is
// remapped to the caller's YOrientation only at emission time.
func buildTile(layers []*layerstore.Layer, z, tileX, tileY int, tileSize float64, maxIndex int, mapMin orb.Point, cfg Config, handler TileHandler) error {
	tileOrigin := orb.Point{
		float64(tileX)*tileSize + mapMin[0],
		float64(tileY)*tileSize + mapMin[1],
	}

	encodedLayers := make([]*mvtencode.Layer, 0, len(layers))
	featureCount := 0

	for _, layer := range layers {
		if len(layer.Features) == 0 {
			continue
		}
		buffer := layer.Buffer
		tileBound := orb.Bound{
			Min: orb.Point{tileOrigin[0] - buffer*tileSize, tileOrigin[1] - buffer*tileSize},
			Max: orb.Point{tileOrigin[0] + (1+buffer)*tileSize, tileOrigin[1] + (1+buffer)*tileSize},
		}

		enc := mvtencode.NewLayer(layer.ID, cfg.TileExtent)
		for _, f := range layer.Features {
			if !f.Bound.Intersects(tileBound) {
				continue
			}
			n, err := encodeFeature(enc, f, tileBound, tileOrigin, tileSize, cfg.TileExtent)
			if err != nil {
				return fmt.Errorf("vtile: encoding feature in layer %q at tile %d/%d/%d: %w", layer.ID, z, tileX, tileY, err)
			}
			featureCount += n
		}
		if !enc.Empty() {
			encodedLayers = append(encodedLayers, enc)
		}
	}

	if len(encodedLayers) == 0 {
		return nil
	}

	data := mvtencode.EncodeTile(encodedLayers)
	outY := remapTileY(tileY, z, cfg.YOrientation)
	return handler(z, tileX, outY, data, TileInfo{LayerCount: len(encodedLayers), FeatureCount: featureCount})
}

// remapTileY converts the source's northward-increasing tile index into
// the caller's chosen convention (spec §9 open question).
func remapTileY(tileY, z int, orientation YOrientation) int {
	if orientation == YNorthTMS {
		return tileY
	}
	maxIndex := int(math.Pow(2, float64(z))) - 1
	return maxIndex - tileY
}

// encodeFeature clips f's geometry to tileBound, encodes whatever survives
// into enc, and returns 1 if a feature was emitted (0 if everything was
// clipped away, which is not an error — spec §7: "feature fully outside
// tile bounds... silently drop").
func encodeFeature(enc *mvtencode.Layer, f layerstore.Feature, tileBound orb.Bound, tileOrigin orb.Point, tileSize float64, extent uint32) (int, error) {
	props := toEncodeProperties(f.Properties)

	switch f.Kind {
	case layerstore.KindMultiPoint:
		var inside orb.MultiPoint
		for _, p := range f.Points {
			if clip.TestPoint(tileBound, p) {
				inside = append(inside, p)
			}
		}
		if len(inside) == 0 {
			return 0, nil
		}
		cmds, err := mvtencode.EncodePoint(inside, tileOrigin, tileSize, extent)
		if err != nil {
			return 0, err
		}
		enc.AddFeature(0, false, mvtencode.Point, cmds, props)
		return 1, nil

	case layerstore.KindMultiLineString:
		var fragments []orb.LineString
		for _, line := range f.Lines {
			fragments = append(fragments, clip.LineString(line, tileBound)...)
		}
		if len(fragments) == 0 {
			return 0, nil
		}
		cmds, err := mvtencode.EncodeMultiLineString(fragments, tileOrigin, tileSize, extent)
		if err != nil {
			return 0, err
		}
		enc.AddFeature(0, false, mvtencode.LineString, cmds, props)
		return 1, nil

	case layerstore.KindMultiPolygon:
		var clipped orb.MultiPolygon
		for _, poly := range f.Polygons {
			cp := clipPolygon(poly, tileBound)
			if cp != nil {
				clipped = append(clipped, cp)
			}
		}
		if len(clipped) == 0 {
			return 0, nil
		}
		cmds, err := mvtencode.EncodeMultiPolygon(clipped, tileOrigin, tileSize, extent)
		if err != nil {
			return 0, err
		}
		enc.AddFeature(0, false, mvtencode.Polygon, cmds, props)
		return 1, nil
	}
	return 0, nil
}

// clipPolygon clips every ring of poly against tileBound; if the exterior
// ring is reduced below 3 vertices the whole polygon is dropped (spec §3,
// §4.3).
func clipPolygon(poly orb.Polygon, tileBound orb.Bound) orb.Polygon {
	if len(poly) == 0 {
		return nil
	}
	exterior := clip.Ring(poly[0], tileBound)
	if len(exterior) < 3 {
		return nil
	}
	out := orb.Polygon{exterior}
	for _, hole := range poly[1:] {
		ch := clip.Ring(hole, tileBound)
		if len(ch) >= 3 {
			out = append(out, ch)
		}
	}
	return out
}

func toEncodeProperties(props []layerstore.Property) []mvtencode.Property {
	if len(props) == 0 {
		return nil
	}
	out := make([]mvtencode.Property, 0, len(props))
	for _, p := range props {
		v, ok := mvtencode.ValueFromAny(p.Value)
		if !ok {
			continue
		}
		out = append(out, mvtencode.Property{Key: p.Key, Value: v})
	}
	return out
}
