package mvtencode

import "fmt"

// ValueKind discriminates the MVT-expressible scalar set (spec §3: bool,
// int64, double, string — other JSON types are rejected at ingest, not
// here).
type ValueKind int

const (
	KindString ValueKind = iota
	KindBool
	KindInt
	KindDouble
)

// Value is one entry of a layer's deduplicated values table.
type Value struct {
	Kind   ValueKind
	String string
	Bool   bool
	Int    int64
	Double float64
}

func stringValue(s string) Value  { return Value{Kind: KindString, String: s} }
func boolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func intValue(i int64) Value      { return Value{Kind: KindInt, Int: i} }
func doubleValue(f float64) Value { return Value{Kind: KindDouble, Double: f} }

// dedupeKey returns a string uniquely identifying this value for table
// deduplication purposes (distinct kinds never collide; the type tag is
// part of the key so 1 (int) and 1.0 (double) remain distinct entries).
func (v Value) dedupeKey() string {
	switch v.Kind {
	case KindString:
		return "s:" + v.String
	case KindBool:
		if v.Bool {
			return "b:1"
		}
		return "b:0"
	case KindInt:
		return fmt.Sprintf("i:%d", v.Int)
	case KindDouble:
		return fmt.Sprintf("d:%g", v.Double)
	default:
		return ""
	}
}

// ValueFromAny converts a Go value restricted to the MVT-expressible
// scalar set into a Value. Spec §3/§4.6: bool, 64-bit signed integer,
// double, string; anything else is an ingest error for the caller to
// raise, so this returns ok=false rather than erroring itself.
func ValueFromAny(v any) (Value, bool) {
	switch t := v.(type) {
	case string:
		return stringValue(t), true
	case bool:
		return boolValue(t), true
	case int:
		return intValue(int64(t)), true
	case int64:
		return intValue(t), true
	case float64:
		// encoding/json (and so orb/geojson) decodes every JSON number to
		// float64 with no int/double distinction in the source text, so
		// every GeoJSON numeric property lands here and becomes a double,
		// even a whole number. Only direct AddMulti* callers passing an
		// int/int64 property value produce KindInt.
		return doubleValue(t), true
	case float32:
		return doubleValue(float64(t)), true
	default:
		return Value{}, false
	}
}
