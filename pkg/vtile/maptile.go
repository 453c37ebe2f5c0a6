package vtile

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// TileGeographicBound returns the WGS84 longitude/latitude bound of tile
// (z, x, y) under the standard XYZ scheme that orb/maptile implements,
// which matches this package's default YSouthXYZ orientation. It has no
// bearing on BuildTiles itself — the builder's own tile-range math stays
// entirely in Web-Mercator meters (spec §4.1: "the inverse is not needed")
// — but it is useful for callers that want to report or log a built
// tile's real-world extent.
func TileGeographicBound(z, x, y int) orb.Bound {
	return maptile.New(uint32(x), uint32(y), maptile.Zoom(z)).Bound()
}
