// Package density draws a whole GeoJSON dataset as a grid of circles whose
// opacity follows the number of features in each cell. It is bound to the
// "mapv" render selector and refreshed in place through Update.
package density

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"

	"github.com/joeblew999/plat-overlay/internal/style"
	"github.com/joeblew999/plat-overlay/internal/widget"
)

// ErrUnsupportedData is returned for inputs the grid cannot decode.
var ErrUnsupportedData = errors.New("unsupported density data")

// Options tune the grid.
type Options struct {
	Depth      int     // cell zoom = map zoom + Depth
	Color      string  // fill color of the cells
	MaxOpacity float64 // opacity of the densest cell
}

func (o Options) withDefaults() Options {
	if o.Depth <= 0 {
		o.Depth = 3
	}
	if o.Color == "" {
		o.Color = "red"
	}
	if o.MaxOpacity <= 0 || o.MaxOpacity > 1 {
		o.MaxOpacity = 0.8
	}
	return o
}

// Grid implements widget.Renderer.
type Grid struct {
	mu       sync.Mutex
	m        widget.Map
	f        widget.Factory
	opts     Options
	overlays []widget.Overlay
}

// New draws data on m and returns the renderer.
func New(m widget.Map, f widget.Factory, data any, opts Options) (*Grid, error) {
	g := &Grid{m: m, f: f, opts: opts.withDefaults()}
	if err := g.Update(data); err != nil {
		return nil, err
	}
	return g, nil
}

// Update replaces the drawn cells with cells computed from data.
func (g *Grid) Update(data any) error {
	fc, err := Decode(data)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, o := range g.overlays {
		g.m.RemoveOverlay(o)
	}
	g.overlays = g.overlays[:0]

	z := g.m.Zoom() + g.opts.Depth
	if z > 22 {
		z = 22
	}
	cells := bucket(fc, maptile.Zoom(z))
	if len(cells) == 0 {
		return nil
	}

	maxCount := 0
	for _, c := range cells {
		maxCount = max(maxCount, c.count)
	}

	for _, c := range cells {
		bound := c.tile.Bound()
		s := style.Style{
			style.FillColor:    g.opts.Color,
			style.FillOpacity:  g.opts.MaxOpacity * float64(c.count) / float64(maxCount),
			style.StrokeWeight: 0,
		}
		o := g.f.NewCircle(bound.Center(), geo.DistanceHaversine(bound.Min, bound.Max)/2, s)
		o.SetProp(map[string]any{
			"count": c.count,
			"tile":  fmt.Sprintf("%d/%d/%d", c.tile.Z, c.tile.X, c.tile.Y),
		})
		g.m.AddOverlay(o)
		g.overlays = append(g.overlays, o)
	}
	return nil
}

// Overlays returns the cell overlays currently drawn.
func (g *Grid) Overlays() []widget.Overlay {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]widget.Overlay(nil), g.overlays...)
}

type cell struct {
	tile  maptile.Tile
	count int
}

func bucket(fc *geojson.FeatureCollection, z maptile.Zoom) []cell {
	counts := make(map[maptile.Tile]int)
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		counts[maptile.At(f.Geometry.Bound().Center(), z)]++
	}

	cells := make([]cell, 0, len(counts))
	for t, n := range counts {
		cells = append(cells, cell{tile: t, count: n})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].tile.Y != cells[j].tile.Y {
			return cells[i].tile.Y < cells[j].tile.Y
		}
		return cells[i].tile.X < cells[j].tile.X
	})
	return cells
}

// Decode turns the accepted density inputs into a feature collection.
func Decode(data any) (*geojson.FeatureCollection, error) {
	switch d := data.(type) {
	case *geojson.FeatureCollection:
		return d, nil
	case *geojson.Feature:
		fc := geojson.NewFeatureCollection()
		fc.Append(d)
		return fc, nil
	case string:
		return decodeBytes([]byte(d))
	case []byte:
		return decodeBytes(d)
	case json.RawMessage:
		return decodeBytes(d)
	case map[string]any, []any:
		b, err := json.Marshal(d)
		if err != nil {
			return nil, err
		}
		return decodeBytes(b)
	}
	return nil, fmt.Errorf("%T: %w", data, ErrUnsupportedData)
}

func decodeBytes(b []byte) (*geojson.FeatureCollection, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err == nil {
		fc := geojson.NewFeatureCollection()
		for i, raw := range raws {
			f, err := geojson.UnmarshalFeature(raw)
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			fc.Append(f)
		}
		return fc, nil
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case "FeatureCollection":
		return geojson.UnmarshalFeatureCollection(b)
	case "Feature":
		f, err := geojson.UnmarshalFeature(b)
		if err != nil {
			return nil, err
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(f)
		return fc, nil
	case "":
		return nil, fmt.Errorf("missing type: %w", ErrUnsupportedData)
	}

	g, err := geojson.UnmarshalGeometry(b)
	if err != nil {
		return nil, err
	}
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(g.Geometry()))
	return fc, nil
}
