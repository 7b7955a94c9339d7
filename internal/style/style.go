// Package style resolves the visual style of an overlay from the built-in
// per-kind defaults and a caller supplied style map.
package style

import "maps"

// Kind names the overlay kinds a style can target.
type Kind string

const (
	Point    Kind = "point"
	Polyline Kind = "polyline"
	Polygon  Kind = "polygon"
	Circle   Kind = "circle"
)

// Common style attribute names.
const (
	StrokeColor   = "strokeColor"
	StrokeWeight  = "strokeWeight"
	StrokeOpacity = "strokeOpacity"
	FillColor     = "fillColor"
	FillOpacity   = "fillOpacity"
)

// Style maps a visual attribute name to its value.
type Style map[string]any

// Map holds per-kind style overrides, e.g. {"polygon": {"fillColor": "green"}}.
type Map map[Kind]Style

// Default returns a fresh copy of the built-in style for kind.
// Circles share the polygon default. Unknown kinds get an empty style.
func Default(kind Kind) Style {
	switch kind {
	case Polyline:
		return Style{
			StrokeColor:   "red",
			StrokeWeight:  4,
			StrokeOpacity: 0.5,
		}
	case Polygon, Circle:
		return Style{
			StrokeColor:  "blue",
			FillColor:    "blue",
			StrokeWeight: 2,
			FillOpacity:  0.8,
		}
	}
	return Style{}
}

// Resolve merges the default style for kind with overrides[kind].
// Override fields replace default fields one by one; the result never
// aliases either input.
func Resolve(kind Kind, overrides Map) Style {
	s := Default(kind)
	if o, ok := overrides[kind]; ok {
		maps.Copy(s, o)
	}
	return s
}

// Clone returns a shallow copy of s. A nil style clones to an empty one.
func (s Style) Clone() Style {
	out := make(Style, len(s))
	maps.Copy(out, s)
	return out
}

// String returns the string value of key, or "" if absent or not a string.
func (s Style) String(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

// Float returns the numeric value of key, or 0 if absent or not a number.
func (s Style) Float(key string) float64 {
	switch n := s[key].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// Clone returns a deep copy of m.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, s := range m {
		out[k] = s.Clone()
	}
	return out
}
