// Package geometry normalizes raw coordinate arrays and GeoJSON coordinate
// values into orb geometries.
//
// The normalizer never looks at a "type" field. Callers decide the Kind and
// pass the matching coordinate shape:
//
//	Point       [lon, lat]
//	LineString  [[lon, lat], ...]
//	Polygon     [[[lon, lat], ...], ...]  (first ring is the outer boundary)
package geometry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// Kind is the closed set of geometry kinds the renderer understands.
type Kind int

const (
	Unrecognized Kind = iota
	Point
	LineString
	Polygon
)

var kindNames = map[Kind]string{
	Unrecognized: "Unrecognized",
	Point:        "Point",
	LineString:   "LineString",
	Polygon:      "Polygon",
}

// String returns the GeoJSON type name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[Unrecognized]
}

// ParseKind maps a GeoJSON geometry type name to a Kind.
// Unknown names map to Unrecognized.
func ParseKind(name string) Kind {
	switch name {
	case "Point":
		return Point
	case "LineString":
		return LineString
	case "Polygon":
		return Polygon
	}
	return Unrecognized
}

var (
	// ErrArity is returned when a coordinate pair does not have exactly two components.
	ErrArity = errors.New("coordinate must have exactly 2 components")
	// ErrNotNumeric is returned when a coordinate component is not a number.
	ErrNotNumeric = errors.New("coordinate component is not numeric")
	// ErrShape is returned when the nesting of a coordinate value does not match the kind.
	ErrShape = errors.New("unexpected coordinate shape")
	// ErrTooFewPoints is returned for a line with fewer than two vertices.
	ErrTooFewPoints = errors.New("line needs at least 2 vertices")
	// ErrRingTooSmall is returned when a polygon's outer ring has fewer than 3 distinct vertices.
	ErrRingTooSmall = errors.New("outer ring needs at least 3 distinct vertices")
	// ErrUnrecognized is returned by Normalize for the Unrecognized kind.
	ErrUnrecognized = errors.New("unrecognized geometry kind")
)

// Normalize converts coords into the orb geometry for kind.
func Normalize(kind Kind, coords any) (orb.Geometry, error) {
	switch kind {
	case Point:
		return NewPoint(coords)
	case LineString:
		return NewLineString(coords)
	case Polygon:
		return NewPolygon(coords)
	}
	return nil, ErrUnrecognized
}

// NewPoint converts a [lon, lat] value into an orb.Point.
func NewPoint(coords any) (orb.Point, error) {
	return toPoint(coords)
}

// PointFromArray converts a [lon, lat] slice into an orb.Point.
func PointFromArray(lonlat []float64) (orb.Point, error) {
	if len(lonlat) != 2 {
		return orb.Point{}, fmt.Errorf("got %d components: %w", len(lonlat), ErrArity)
	}
	return orb.Point{lonlat[0], lonlat[1]}, nil
}

// NewLineString converts a [[lon, lat], ...] value into an orb.LineString.
func NewLineString(coords any) (orb.LineString, error) {
	pts, err := toPoints(coords)
	if err != nil {
		return nil, err
	}
	if len(pts) < 2 {
		return nil, ErrTooFewPoints
	}
	return orb.LineString(pts), nil
}

// NewPolygon converts a [[[lon, lat], ...], ...] value into an orb.Polygon.
// The first ring is the outer boundary and must have at least three distinct
// vertices; the closing vertex is kept as given.
func NewPolygon(coords any) (orb.Polygon, error) {
	if p, ok := coords.(orb.Polygon); ok {
		coords = toRingPoints(p)
	}

	rings, err := toRings(coords)
	if err != nil {
		return nil, err
	}
	if len(rings) == 0 {
		return nil, fmt.Errorf("no rings: %w", ErrShape)
	}

	poly := make(orb.Polygon, len(rings))
	for i, pts := range rings {
		poly[i] = orb.Ring(pts)
	}
	if distinct(poly[0]) < 3 {
		return nil, ErrRingTooSmall
	}
	return poly, nil
}

// FromOrb classifies an already typed orb geometry. Rings are promoted to
// single-ring polygons. Every other orb type is Unrecognized.
func FromOrb(g orb.Geometry) (Kind, orb.Geometry) {
	switch v := g.(type) {
	case orb.Point:
		return Point, v
	case orb.LineString:
		return LineString, v
	case orb.Polygon:
		return Polygon, v
	case orb.Ring:
		return Polygon, orb.Polygon{v}
	}
	return Unrecognized, nil
}

func toRingPoints(p orb.Polygon) [][]orb.Point {
	out := make([][]orb.Point, len(p))
	for i, r := range p {
		out[i] = []orb.Point(r)
	}
	return out
}

func toRings(v any) ([][]orb.Point, error) {
	switch c := v.(type) {
	case [][]orb.Point:
		return c, nil
	case [][][]float64:
		rings := make([][]orb.Point, len(c))
		for i, r := range c {
			pts, err := toPoints(r)
			if err != nil {
				return nil, fmt.Errorf("ring %d: %w", i, err)
			}
			rings[i] = pts
		}
		return rings, nil
	case []any:
		rings := make([][]orb.Point, len(c))
		for i, r := range c {
			pts, err := toPoints(r)
			if err != nil {
				return nil, fmt.Errorf("ring %d: %w", i, err)
			}
			rings[i] = pts
		}
		return rings, nil
	}
	return nil, fmt.Errorf("rings %T: %w", v, ErrShape)
}

func toPoints(v any) ([]orb.Point, error) {
	switch c := v.(type) {
	case []orb.Point:
		return c, nil
	case orb.LineString:
		return []orb.Point(c), nil
	case orb.Ring:
		return []orb.Point(c), nil
	case [][2]float64:
		pts := make([]orb.Point, len(c))
		for i, p := range c {
			pts[i] = orb.Point(p)
		}
		return pts, nil
	case [][]float64:
		pts := make([]orb.Point, len(c))
		for i, p := range c {
			pt, err := toPoint(p)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
			pts[i] = pt
		}
		return pts, nil
	case []any:
		pts := make([]orb.Point, len(c))
		for i, p := range c {
			pt, err := toPoint(p)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
			pts[i] = pt
		}
		return pts, nil
	}
	return nil, fmt.Errorf("points %T: %w", v, ErrShape)
}

func toPoint(v any) (orb.Point, error) {
	switch c := v.(type) {
	case orb.Point:
		return c, nil
	case [2]float64:
		return orb.Point(c), nil
	case []float64:
		return PointFromArray(c)
	case []any:
		if len(c) != 2 {
			return orb.Point{}, fmt.Errorf("got %d components: %w", len(c), ErrArity)
		}
		lon, ok := number(c[0])
		if !ok {
			return orb.Point{}, fmt.Errorf("lon %v: %w", c[0], ErrNotNumeric)
		}
		lat, ok := number(c[1])
		if !ok {
			return orb.Point{}, fmt.Errorf("lat %v: %w", c[1], ErrNotNumeric)
		}
		return orb.Point{lon, lat}, nil
	}
	return orb.Point{}, fmt.Errorf("point %T: %w", v, ErrShape)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func distinct(r orb.Ring) int {
	seen := make(map[orb.Point]struct{}, len(r))
	for _, p := range r {
		seen[p] = struct{}{}
	}
	return len(seen)
}
