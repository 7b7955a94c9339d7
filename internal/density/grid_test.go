package density

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-overlay/internal/canvas"
	"github.com/joeblew999/plat-overlay/internal/style"
)

const points = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [116.3001, 39.9001]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [116.3002, 39.9002]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [118.0, 30.0]}}
  ]
}`

func TestGrid_New(t *testing.T) {
	c := canvas.New(canvas.Config{Zoom: 10})
	g, err := New(c, c, points, Options{})
	require.NoError(t, err)

	overlays := g.Overlays()
	require.Len(t, overlays, 2)
	assert.Equal(t, 2, c.Len())

	var counts []int
	for _, o := range overlays {
		counts = append(counts, o.Prop()["count"].(int))
	}
	assert.ElementsMatch(t, []int{2, 1}, counts)

	for _, o := range overlays {
		if o.Prop()["count"] == 2 {
			assert.InDelta(t, 0.8, o.Style().Float(style.FillOpacity), 1e-9)
		} else {
			assert.InDelta(t, 0.4, o.Style().Float(style.FillOpacity), 1e-9)
		}
	}
}

func TestGrid_UpdateReplacesCells(t *testing.T) {
	c := canvas.New(canvas.Config{Zoom: 10})
	g, err := New(c, c, points, Options{Color: "purple"})
	require.NoError(t, err)

	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{0, 0}))
	require.NoError(t, g.Update(fc))

	require.Len(t, g.Overlays(), 1)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "purple", g.Overlays()[0].Style().String(style.FillColor))
}

func TestDecode(t *testing.T) {
	fc, err := Decode(`{"type":"Point","coordinates":[1,2]}`)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, orb.Point{1, 2}, fc.Features[0].Geometry)

	fc, err = Decode([]any{
		map[string]any{"type": "Feature", "geometry": map[string]any{"type": "Point", "coordinates": []any{1.0, 2.0}}},
	})
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)

	_, err = Decode(42)
	assert.ErrorIs(t, err, ErrUnsupportedData)

	_, err = Decode(`{"coordinates":[1,2]}`)
	assert.ErrorIs(t, err, ErrUnsupportedData)

	_, err = Decode(`not json`)
	assert.Error(t, err)
}
