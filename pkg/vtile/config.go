// Package vtile is the public API: a Builder that accumulates geographic
// features and emits a pyramid of Mapbox Vector Tile v2 protobuf blobs.
// Grounded on internal/service/layer.go's Config-struct-plus-New(cfg)
// constructor pattern and internal/tiler/gotiler.go's per-zoom build loop,
// adapted from a database-backed tile service into a synchronous,
// in-memory builder.
package vtile

import (
	"fmt"
	"math"

	"github.com/joeblew999/vectortile/internal/mercator"
)

// YOrientation selects how tile Y indices map onto Web-Mercator northing.
// The geometry encoded inside a tile always has its v-axis flipped so tile
// pixel space increases downward (spec §9); this only affects which tile
// index a given row of the world is assigned to.
type YOrientation int

const (
	// YSouthXYZ is the common web-map XYZ convention: tileY increases
	// southward, so tileY=0 is the northernmost row. This is the default.
	YSouthXYZ YOrientation = iota
	// YNorthTMS keeps the source's native convention: tileY increases
	// northward directly from mapMin.y (spec §9's "source" behavior).
	YNorthTMS
)

// Config holds the Builder's construction-time parameters (spec §3
// "Builder configuration").
type Config struct {
	MinZoom int
	MaxZoom int

	// DefaultLayerBuffer is used by CreateLayer when no explicit buffer is
	// given, expressed as a fraction of tile size. Default 0.1.
	DefaultLayerBuffer float64

	// TileExtent is the tile-local integer coordinate extent. Default 4096.
	TileExtent uint32

	// SimplificationFactor scales the per-zoom Douglas-Peucker tolerance:
	// t(z) = (2*pi*EarthRadius / 2^z) * SimplificationFactor. Default
	// 1/TileExtent.
	SimplificationFactor float64

	// EarthRadius is the sphere radius (meters) used for projection and
	// tile-size math. Default 6378137.0 (spec glossary).
	EarthRadius float64

	// YOrientation selects the tile-index Y convention (spec §9 open
	// question). Default YSouthXYZ.
	YOrientation YOrientation
}

// ConfigError reports a Config value rejected at construction (spec §7).
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("vtile: invalid config: %s", e.Reason)
}

// withDefaults fills in zero-valued optional fields and returns the
// resolved config, without mutating cfg.
func (cfg Config) withDefaults() Config {
	out := cfg
	if out.DefaultLayerBuffer == 0 {
		out.DefaultLayerBuffer = 0.1
	}
	if out.TileExtent == 0 {
		out.TileExtent = 4096
	}
	if out.SimplificationFactor == 0 {
		out.SimplificationFactor = 1.0 / float64(out.TileExtent)
	}
	if out.EarthRadius == 0 {
		out.EarthRadius = mercator.EarthRadius
	}
	return out
}

// validate checks the resolved config against spec §6/§7's constraints.
func (cfg Config) validate() error {
	const maxZoomLimit = 24
	if cfg.MinZoom < 0 {
		return &ConfigError{Reason: "minZoom must be >= 0"}
	}
	if cfg.MaxZoom > maxZoomLimit {
		return &ConfigError{Reason: fmt.Sprintf("maxZoom must be <= %d", maxZoomLimit)}
	}
	if cfg.MinZoom > cfg.MaxZoom {
		return &ConfigError{Reason: "minZoom must be <= maxZoom"}
	}
	if !isFinite(cfg.DefaultLayerBuffer) || cfg.DefaultLayerBuffer < 0 {
		return &ConfigError{Reason: "defaultLayerBuffer must be finite and non-negative"}
	}
	if cfg.TileExtent == 0 {
		return &ConfigError{Reason: "tileExtent must be > 0"}
	}
	if !isFinite(cfg.SimplificationFactor) || cfg.SimplificationFactor < 0 {
		return &ConfigError{Reason: "simplificationFactor must be finite and non-negative"}
	}
	if !isFinite(cfg.EarthRadius) || cfg.EarthRadius <= 0 {
		return &ConfigError{Reason: "earthRadius must be finite and positive"}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
