package mvtencode

import "github.com/joeblew999/vectortile/internal/mvtwire"

// DefaultExtent is the tile-local coordinate extent used when a builder
// config doesn't override it (spec §3).
const DefaultExtent = 4096

// mvtVersion is the Layer.version this encoder targets (spec §4.8: MVT v2).
const mvtVersion = 2

// Property is one feature property as an ordered key/value pair. Ordered
// slices (not maps) keep feature encoding deterministic across runs —
// Go's map iteration order is randomized and would violate spec §8
// property 9 (identical inputs produce byte-identical outputs).
type Property struct {
	Key   string
	Value Value
}

type encodedFeature struct {
	id       uint64
	hasID    bool
	geomType GeomType
	commands []uint32
	tagIdx   []uint32 // flattened (keyIndex, valueIndex) pairs
}

// Layer accumulates features for one tile's worth of one named layer,
// building the deduplicated keys/values tables spec §4.4 step 5 requires
// as features are added.
type Layer struct {
	Name   string
	Extent uint32

	features []encodedFeature

	keys    []string
	keyIdx  map[string]uint32
	values  []Value
	valIdx  map[string]uint32
}

// NewLayer creates an empty layer encoder.
func NewLayer(name string, extent uint32) *Layer {
	if extent == 0 {
		extent = DefaultExtent
	}
	return &Layer{
		Name:   name,
		Extent: extent,
		keyIdx: make(map[string]uint32),
		valIdx: make(map[string]uint32),
	}
}

// Empty reports whether the layer has no features, and so should be
// omitted from the tile entirely (spec §4.7 step 5).
func (l *Layer) Empty() bool { return len(l.features) == 0 }

// AddFeature records one feature's geometry commands and properties. The
// property slice's order is preserved into the tag index list (but table
// slots are assigned in first-seen order across the whole layer, per spec
// §4.4 step 5: keys/values tables are deduplicated and shared by every
// feature in the layer).
func (l *Layer) AddFeature(id uint64, hasID bool, geomType GeomType, commands []uint32, props []Property) {
	f := encodedFeature{id: id, hasID: hasID, geomType: geomType, commands: commands}
	for _, p := range props {
		f.tagIdx = append(f.tagIdx, l.internKey(p.Key), l.internValue(p.Value))
	}
	l.features = append(l.features, f)
}

func (l *Layer) internKey(k string) uint32 {
	if idx, ok := l.keyIdx[k]; ok {
		return idx
	}
	idx := uint32(len(l.keys))
	l.keys = append(l.keys, k)
	l.keyIdx[k] = idx
	return idx
}

func (l *Layer) internValue(v Value) uint32 {
	dk := v.dedupeKey()
	if idx, ok := l.valIdx[dk]; ok {
		return idx
	}
	idx := uint32(len(l.values))
	l.values = append(l.values, v)
	l.valIdx[dk] = idx
	return idx
}

// field numbers per the canonical MVT .proto schema (spec §4.8).
const (
	fieldTileLayers = 3

	fieldLayerVersion = 15
	fieldLayerName    = 1
	fieldLayerFeature = 2
	fieldLayerKeys    = 3
	fieldLayerValues  = 4
	fieldLayerExtent  = 5

	fieldFeatureID       = 1
	fieldFeatureTags     = 2
	fieldFeatureType     = 3
	fieldFeatureGeometry = 4

	fieldValueString = 1
	fieldValueFloat  = 2
	fieldValueDouble = 3
	fieldValueInt    = 4
	fieldValueUint   = 5
	fieldValueSint   = 6
	fieldValueBool   = 7
)

func (l *Layer) serialize() *mvtwire.Writer {
	w := mvtwire.NewWriter()
	w.String(fieldLayerName, l.Name)

	for _, f := range l.features {
		fw := mvtwire.NewWriter()
		if f.hasID {
			fw.Uint64(fieldFeatureID, f.id)
		}
		if len(f.tagIdx) > 0 {
			fw.PackedUint32(fieldFeatureTags, f.tagIdx)
		}
		if f.geomType != Unknown {
			fw.Uint32(fieldFeatureType, uint32(f.geomType))
		}
		if len(f.commands) > 0 {
			fw.PackedUint32(fieldFeatureGeometry, f.commands)
		}
		w.Message(fieldLayerFeature, fw)
	}

	for _, k := range l.keys {
		w.String(fieldLayerKeys, k)
	}
	for _, v := range l.values {
		w.Message(fieldLayerValues, serializeValue(v))
	}

	w.Uint32(fieldLayerExtent, l.Extent)
	w.Uint32(fieldLayerVersion, mvtVersion)
	return w
}

func serializeValue(v Value) *mvtwire.Writer {
	w := mvtwire.NewWriter()
	switch v.Kind {
	case KindString:
		w.String(fieldValueString, v.String)
	case KindBool:
		w.Bool(fieldValueBool, v.Bool)
	case KindInt:
		w.Sint64(fieldValueSint, v.Int)
	case KindDouble:
		w.Double(fieldValueDouble, v.Double)
	}
	return w
}

// EncodeTile serializes a tile's non-empty layers into a Tile protobuf
// message (spec §4.8). Empty layers are expected to already have been
// filtered out by the caller (spec §4.7 step 5).
func EncodeTile(layers []*Layer) []byte {
	w := mvtwire.NewWriter()
	for _, l := range layers {
		if l.Empty() {
			continue
		}
		w.Message(fieldTileLayers, l.serialize())
	}
	return w.Bytes()
}
