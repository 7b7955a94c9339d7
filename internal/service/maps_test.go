package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-overlay/internal/logging"
	"github.com/joeblew999/plat-overlay/internal/render"
	"github.com/joeblew999/plat-overlay/internal/widget"
)

const lines = `{"type":"FeatureCollection","features":[
  {"type":"Feature","properties":{"id":1},"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]}},
  {"type":"Feature","properties":{"id":2},"geometry":{"type":"Point","coordinates":[2,2]}}
]}`

func newMapService() *MapService {
	return NewMapService(MapConfig{Zoom: 11, Center: []float64{116.4, 39.9}}, NewEventBus(), logging.Discard())
}

func drain(ch chan Event) []Event {
	var events []Event
	for {
		select {
		case e := <-ch:
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestMapService_CRUD(t *testing.T) {
	svc := newMapService()

	a, err := svc.Create(MapConfig{Name: "a"})
	require.NoError(t, err)
	b, err := svc.Create(MapConfig{Name: "b", Zoom: 5, Center: []float64{2.35, 48.85}})
	require.NoError(t, err)

	assert.Equal(t, 11, a.Canvas.Zoom())
	assert.Equal(t, 5, b.Canvas.Zoom())
	assert.Equal(t, []float64{2.35, 48.85}, b.Info().Center)

	got, ok := svc.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	list := svc.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)

	require.NoError(t, svc.Delete(a.ID))
	assert.ErrorIs(t, svc.Delete(a.ID), ErrMapNotFound)
	assert.Len(t, svc.List(), 1)

	_, err = svc.Create(MapConfig{Center: []float64{1}})
	assert.Error(t, err)
}

func TestSession_RenderPublishes(t *testing.T) {
	svc := newMapService()
	ch := svc.Bus().Subscribe()
	defer svc.Bus().Unsubscribe(ch)

	sess, err := svc.Create(MapConfig{})
	require.NoError(t, err)

	res := sess.Render(lines, render.Option{Name: "roads"})
	require.NotNil(t, res)
	require.Len(t, res.Overlays, 2)

	events := drain(ch)
	require.Len(t, events, 4)
	assert.Equal(t, Event{MapID: sess.ID, Resource: ResourceMaps, Action: ActionCreated, ID: sess.ID}, events[0])
	assert.Equal(t, ResourceOverlays, events[1].Resource)
	assert.Equal(t, "added", events[1].Action)
	assert.Equal(t, Event{MapID: sess.ID, Resource: ResourceLayers, Action: ActionRendered, ID: "roads"}, events[3])

	assert.Nil(t, sess.Render("{", render.Option{}))
	assert.Empty(t, drain(ch))
}

func TestSession_Describe(t *testing.T) {
	svc := newMapService()
	sess, err := svc.Create(MapConfig{})
	require.NoError(t, err)

	require.NotNil(t, sess.Render(lines, render.Option{Name: "roads"}))
	_, err = sess.Engine.AddPoint([]float64{5, 5})
	require.NoError(t, err)

	overlays := sess.Overlays()
	require.Len(t, overlays, 3)
	assert.Equal(t, string(widget.KindPolyline), overlays[0].Kind)
	assert.Equal(t, "roads", overlays[0].Layer)
	assert.EqualValues(t, 1, overlays[0].Prop["id"])
	assert.Empty(t, overlays[2].Layer)

	layers := sess.Layers()
	require.Len(t, layers, 1)
	assert.Equal(t, "roads", layers[0].Name)
	assert.False(t, layers[0].External)
	assert.Equal(t, []string{overlays[0].ID, overlays[1].ID}, layers[0].OverlayIDs)

	info := sess.Info()
	assert.Equal(t, 3, info.Overlays)
	assert.Equal(t, 1, info.Layers)

	assert.True(t, sess.Clear("roads"))
	assert.False(t, sess.Clear("roads"))
	assert.Len(t, sess.Overlays(), 1)
}
