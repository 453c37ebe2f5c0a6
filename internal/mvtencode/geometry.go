// Package mvtencode implements spec §4.4's tile command encoder: it turns
// tile-local continuous coordinates into MVT MoveTo/LineTo/ClosePath
// command integers, quantizes into the 0..extent grid, and normalizes
// polygon ring winding. Command/zig-zag/tag-table vocabulary is grounded
// on the standalone engelsjk-mvt reference encoder (`commandInteger`,
// `collectTags`, `encodeKey`/`encodeValue`) and on
// valpere-tile_to_json's layer/feature/value naming, adapted to emit
// through internal/mvtwire instead of ad hoc byte slices.
package mvtencode

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

// GeomType mirrors Tile.GeomType in the MVT protobuf schema.
type GeomType uint32

const (
	Unknown    GeomType = 0
	Point      GeomType = 1
	LineString GeomType = 2
	Polygon    GeomType = 3
)

const (
	cmdMoveTo    = 1
	cmdLineTo    = 2
	cmdClosePath = 7
)

// maxVertexCount is the largest ring/line/point-group this encoder can
// represent: the command integer packs a vertex count into the bits above
// the 3-bit command id, and spec §7 draws the line at 2^29 vertices.
const maxVertexCount = 1 << 29

// ErrTooManyVertices is returned when a single command run would need to
// encode more vertices than the command integer can carry.
var ErrTooManyVertices = errors.New("mvtencode: vertex count exceeds command encoding limit")

// ToTileLocal converts a point in the same linear units as tileOrigin and
// tileSize (Web-Mercator meters in this module) into tile-local fraction
// coordinates. v is flipped so that north (larger WM y) maps to v=0: MVT
// tile pixel space always increases downward, independent of whichever
// tileY indexing convention the caller uses for the tile itself (spec §9).
func ToTileLocal(p, tileOrigin orb.Point, tileSize float64) (u, v float64) {
	u = (p[0] - tileOrigin[0]) / tileSize
	v = 1 - (p[1]-tileOrigin[1])/tileSize
	return u, v
}

// quantize rounds fraction coordinates into the 0..extent integer grid.
func quantize(u, v float64, extent uint32) (x, y int64) {
	return int64(math.Round(u * float64(extent))), int64(math.Round(v * float64(extent)))
}

type pen struct {
	x, y int64
}

func (p *pen) moveTo(cmds []uint32, x, y int64) []uint32 {
	cmds = append(cmds, commandInteger(cmdMoveTo, 1))
	cmds = appendDelta(cmds, x-p.x, y-p.y)
	p.x, p.y = x, y
	return cmds
}

func (p *pen) lineTo(cmds []uint32, x, y int64) []uint32 {
	cmds = appendDelta(cmds, x-p.x, y-p.y)
	p.x, p.y = x, y
	return cmds
}

func commandInteger(id, count int) uint32 {
	return uint32((id & 0x7) | (count << 3))
}

func appendDelta(cmds []uint32, dx, dy int64) []uint32 {
	return append(cmds, zigZag32(dx), zigZag32(dy))
}

func zigZag32(n int64) uint32 {
	return uint32((n << 1) ^ (n >> 63))
}

// EncodePoint encodes a MultiPoint feature: a single MoveTo(count=N)
// followed by N deltas.
func EncodePoint(points []orb.Point, tileOrigin orb.Point, tileSize float64, extent uint32) ([]uint32, error) {
	if len(points) == 0 {
		return nil, nil
	}
	if len(points) >= maxVertexCount {
		return nil, ErrTooManyVertices
	}

	var p pen
	cmds := []uint32{commandInteger(cmdMoveTo, len(points))}
	for _, pt := range points {
		u, v := ToTileLocal(pt, tileOrigin, tileSize)
		x, y := quantize(u, v, extent)
		cmds = appendDelta(cmds, x-p.x, y-p.y)
		p.x, p.y = x, y
	}
	return cmds, nil
}

// EncodeLineString encodes a single polyline: MoveTo(1)+delta followed by
// LineTo(N-1)+deltas. The running pen position is shared across a whole
// feature's worth of lines by callers that pass an explicit *pen via
// EncodeMultiLineString.
func EncodeLineString(line orb.LineString, tileOrigin orb.Point, tileSize float64, extent uint32, p *pen) ([]uint32, error) {
	if len(line) < 2 {
		return nil, nil
	}
	if len(line)-1 >= maxVertexCount {
		return nil, ErrTooManyVertices
	}

	var cmds []uint32
	u, v := ToTileLocal(line[0], tileOrigin, tileSize)
	x, y := quantize(u, v, extent)
	cmds = p.moveTo(cmds, x, y)

	cmds = append(cmds, commandInteger(cmdLineTo, len(line)-1))
	for _, pt := range line[1:] {
		u, v := ToTileLocal(pt, tileOrigin, tileSize)
		x, y := quantize(u, v, extent)
		cmds = p.lineTo(cmds, x, y)
	}
	return cmds, nil
}

// EncodeMultiLineString encodes every polyline of a MultiLineString
// feature, sharing one running pen position across all of them as MVT
// requires.
func EncodeMultiLineString(lines []orb.LineString, tileOrigin orb.Point, tileSize float64, extent uint32) ([]uint32, error) {
	var p pen
	var cmds []uint32
	for _, line := range lines {
		part, err := EncodeLineString(line, tileOrigin, tileSize, extent, &p)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, part...)
	}
	return cmds, nil
}

// EncodeRing encodes one polygon ring: MoveTo(1)+delta, LineTo(N-1)+deltas,
// ClosePath(1). The final vertex equal to the first is never emitted as a
// LineTo — ClosePath implies it. isExterior controls winding: exterior
// rings end up clockwise in tile (Y-down) coordinates, holes
// counter-clockwise; the ring is reversed before emission if its natural
// winding disagrees.
func EncodeRing(ring orb.Ring, isExterior bool, tileOrigin orb.Point, tileSize float64, extent uint32, p *pen) ([]uint32, error) {
	if len(ring) < 3 {
		return nil, nil
	}
	if len(ring)-1 >= maxVertexCount {
		return nil, ErrTooManyVertices
	}

	quantized := make([]struct{ x, y int64 }, len(ring))
	for i, pt := range ring {
		u, v := ToTileLocal(pt, tileOrigin, tileSize)
		x, y := quantize(u, v, extent)
		quantized[i] = struct{ x, y int64 }{x, y}
	}

	if ringIsClockwise(quantized) != isExterior {
		reverseQuantized(quantized)
	}

	var cmds []uint32
	cmds = p.moveTo(cmds, quantized[0].x, quantized[0].y)
	cmds = append(cmds, commandInteger(cmdLineTo, len(quantized)-1))
	for _, q := range quantized[1:] {
		cmds = p.lineTo(cmds, q.x, q.y)
	}
	cmds = append(cmds, commandInteger(cmdClosePath, 1))
	return cmds, nil
}

// EncodeMultiPolygon encodes every ring of every polygon in a MultiPolygon
// feature (first ring of each polygon is its exterior, the rest holes),
// sharing one running pen position across the whole feature.
func EncodeMultiPolygon(polys []orb.Polygon, tileOrigin orb.Point, tileSize float64, extent uint32) ([]uint32, error) {
	var p pen
	var cmds []uint32
	for _, poly := range polys {
		for i, ring := range poly {
			part, err := EncodeRing(ring, i == 0, tileOrigin, tileSize, extent, &p)
			if err != nil {
				return nil, err
			}
			cmds = append(cmds, part...)
		}
	}
	return cmds, nil
}

// ringIsClockwise reports the winding of a quantized ring in tile
// (Y-down) coordinates via the shoelace formula. The standard shoelace
// sign convention (positive sum = counter-clockwise) is for a Y-up axis;
// since tile pixel space is Y-down, the sense is flipped and a positive
// raw sum here means clockwise.
func ringIsClockwise(pts []struct{ x, y int64 }) bool {
	var sum int64
	n := len(pts)
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		sum += a.x*b.y - b.x*a.y
	}
	return sum > 0
}

func reverseQuantized(pts []struct{ x, y int64 }) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
