package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-overlay/internal/logging"
	"github.com/joeblew999/plat-overlay/internal/service"
)

const roads = `{"type":"FeatureCollection","features":[
  {"type":"Feature","properties":{"name":"a"},"geometry":{"type":"Point","coordinates":[116.4,39.9]}},
  {"type":"Feature","properties":{"name":"b"},"geometry":{"type":"LineString","coordinates":[[116.3,39.8],[116.5,40.0]]}},
  {"type":"Feature","properties":{"name":"c"},"geometry":{"type":"Polygon","coordinates":[[[116,39],[117,39],[117,40],[116,39]]]}}
]}`

func newTestAPI(t *testing.T) (humatest.TestAPI, *Services) {
	t.Helper()
	cfg := huma.DefaultConfig("plat-overlay test", Version)
	cfg.CreateHooks = []func(huma.Config) huma.Config{}
	cfg.Transformers = append(cfg.Transformers, LinkTransformer())
	_, api := humatest.New(t, cfg)

	svc := &Services{
		Maps:    service.NewMapService(service.MapConfig{Zoom: 10}, service.NewEventBus(), logging.Discard()),
		Source:  service.NewSourceService(t.TempDir()),
		Query:   service.NewQueryService(nil, logging.Discard()),
		DataDir: "test",
	}
	RegisterRoutes(api, svc)
	return api, svc
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func createMap(t *testing.T, api humatest.TestAPI) string {
	t.Helper()
	resp := api.Post("/api/v1/maps", map[string]any{"name": "test", "center": []float64{116.4, 39.9}})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[service.MapInfo](t, resp.Body.Bytes()).ID
}

func TestHealth(t *testing.T) {
	api, _ := newTestAPI(t)

	resp := api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", decode[HealthBody](t, resp.Body.Bytes()).Status)
	assert.Contains(t, resp.Header().Values("Link"), `</api/v1/maps>; rel="maps"`)

	info := decode[InfoBody](t, api.Get("/api/v1/info").Body.Bytes())
	assert.Equal(t, "plat-overlay", info.Name)
	assert.False(t, info.DB)
}

func TestMapsCRUD(t *testing.T) {
	api, _ := newTestAPI(t)
	id := createMap(t, api)

	resp := api.Get("/api/v1/maps/" + id)
	require.Equal(t, http.StatusOK, resp.Code)
	info := decode[service.MapInfo](t, resp.Body.Bytes())
	assert.Equal(t, "test", info.Name)
	assert.Equal(t, 10, info.Zoom)
	assert.Contains(t, resp.Header().Values("Link"), fmt.Sprintf(`</api/v1/maps/%s>; rel="self"`, id))

	list := decode[[]service.MapInfo](t, api.Get("/api/v1/maps").Body.Bytes())
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusOK, api.Delete("/api/v1/maps/"+id).Code)
	assert.Equal(t, http.StatusNotFound, api.Get("/api/v1/maps/"+id).Code)
	assert.Equal(t, http.StatusNotFound, api.Delete("/api/v1/maps/"+id).Code)
}

func TestRender(t *testing.T) {
	api, _ := newTestAPI(t)
	id := createMap(t, api)

	resp := api.Post("/api/v1/maps/"+id+"/render", map[string]any{
		"geojson": json.RawMessage(roads),
		"option": map[string]any{
			"name":     "roads",
			"prop":     map[string]any{"source": "test"},
			"styleMap": map[string]any{"polygon": map[string]any{"fillColor": "green"}},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decode[RenderBody](t, resp.Body.Bytes())
	assert.Equal(t, "roads", body.Layer)
	assert.True(t, body.Collection)
	require.Len(t, body.Overlays, 3)
	assert.Equal(t, "marker", body.Overlays[0].Kind)
	assert.Equal(t, "polyline", body.Overlays[1].Kind)
	assert.Equal(t, "polygon", body.Overlays[2].Kind)
	assert.Equal(t, "green", body.Overlays[2].Style["fillColor"])
	assert.Equal(t, "blue", body.Overlays[2].Style["strokeColor"])
	assert.Equal(t, map[string]any{"source": "test", "name": "c"}, body.Overlays[2].Prop)
	assert.Empty(t, body.Failures)

	layers := decode[[]service.LayerInfo](t, api.Get("/api/v1/maps/"+id+"/layers").Body.Bytes())
	require.Len(t, layers, 1)
	assert.Len(t, layers[0].OverlayIDs, 3)

	overlays := decode[[]OverlayBody](t, api.Get("/api/v1/maps/"+id+"/overlays").Body.Bytes())
	require.Len(t, overlays, 3)
	assert.Equal(t, "roads", overlays[0].Layer)
}

func TestRender_StringAndFailures(t *testing.T) {
	api, _ := newTestAPI(t)
	id := createMap(t, api)

	resp := api.Post("/api/v1/maps/"+id+"/render", map[string]any{
		"geojson": `[
		  {"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]}},
		  {"type":"Feature","geometry":{"type":"Point","coordinates":["x",2]}},
		  {"type":"Feature","geometry":{"type":"Point","coordinates":[3,4]}}
		]`,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	body := decode[RenderBody](t, resp.Body.Bytes())
	assert.Equal(t, "tmp", body.Layer)
	assert.Len(t, body.Overlays, 2)
	require.Len(t, body.Failures, 1)
	assert.Equal(t, 1, body.Failures[0].Index)
	assert.Equal(t, "Point", body.Failures[0].Kind)

	resp = api.Post("/api/v1/maps/"+id+"/render", map[string]any{"geojson": "not json"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = api.Post("/api/v1/maps/"+id+"/render", map[string]any{
		"geojson": map[string]any{"type": "Point", "coordinates": []float64{1, 2}},
		"option":  map[string]any{"render": "mapv"},
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = api.Post("/api/v1/maps/missing/render", map[string]any{"geojson": roads})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRender_DensityLayerUpdatesInPlace(t *testing.T) {
	api, _ := newTestAPI(t)
	id := createMap(t, api)

	for range 2 {
		resp := api.Post("/api/v1/maps/"+id+"/render", map[string]any{
			"geojson": json.RawMessage(roads),
			"option":  map[string]any{"name": "heat", "render": "mapv"},
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		assert.True(t, decode[RenderBody](t, resp.Body.Bytes()).External)
	}

	layers := decode[[]service.LayerInfo](t, api.Get("/api/v1/maps/"+id+"/layers").Body.Bytes())
	require.Len(t, layers, 1)
	assert.True(t, layers[0].External)

	overlays := decode[[]OverlayBody](t, api.Get("/api/v1/maps/"+id+"/overlays").Body.Bytes())
	assert.Len(t, overlays, len(layers[0].OverlayIDs))
}

func TestCenterAndBounds(t *testing.T) {
	api, _ := newTestAPI(t)
	id := createMap(t, api)

	resp := api.Put("/api/v1/maps/"+id+"/center", map[string]any{"center": []float64{2.35, 48.85}, "zoom": 13})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	info := decode[service.MapInfo](t, resp.Body.Bytes())
	assert.Equal(t, []float64{2.35, 48.85}, info.Center)
	assert.Equal(t, 13, info.Zoom)

	bounds := decode[map[string]float64](t, api.Get("/api/v1/maps/"+id+"/bounds").Body.Bytes())
	assert.Less(t, bounds["xmin"], bounds["xmax"])
	assert.Less(t, bounds["ymin"], bounds["ymax"])

	resp = api.Put("/api/v1/maps/"+id+"/center", map[string]any{"center": []float64{1}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestPointsAndEvents(t *testing.T) {
	api, _ := newTestAPI(t)
	id := createMap(t, api)

	resp := api.Put("/api/v1/maps/"+id+"/points/tmp", map[string]any{"lonlat": []float64{1, 2}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	first := decode[OverlayBody](t, resp.Body.Bytes())
	assert.Contains(t, resp.Header().Values("Link"),
		fmt.Sprintf(`</api/v1/maps/%s/overlays/%s>; rel="delete"; method="DELETE"; title="Remove overlay"`, id, first.ID))

	resp = api.Put("/api/v1/maps/"+id+"/points/tmp", map[string]any{"lonlat": []float64{3, 4}})
	second := decode[OverlayBody](t, resp.Body.Bytes())
	assert.Equal(t, first.ID, second.ID)

	resp = api.Post("/api/v1/maps/"+id+"/points", map[string]any{"lonlat": []float64{5, 6}})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	point := decode[OverlayBody](t, resp.Body.Bytes())

	assert.Len(t, decode[[]OverlayBody](t, api.Get("/api/v1/maps/"+id+"/overlays").Body.Bytes()), 2)

	events := "/api/v1/maps/" + id + "/overlays/" + point.ID + "/events/"
	assert.Equal(t, http.StatusOK, api.Post(events+"click").Code)
	assert.Equal(t, http.StatusOK, api.Post(events+"dblclick").Code)
	assert.Equal(t, http.StatusNotFound, api.Post(events+"dblclick").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, api.Post(events+"hover").Code)

	assert.Equal(t, http.StatusOK, api.Delete("/api/v1/maps/"+id+"/overlays/"+first.ID).Code)
	assert.Equal(t, http.StatusNotFound, api.Delete("/api/v1/maps/"+id+"/overlays/"+first.ID).Code)
	assert.Empty(t, decode[[]OverlayBody](t, api.Get("/api/v1/maps/"+id+"/overlays").Body.Bytes()))
}

func TestDismissOnAndClear(t *testing.T) {
	api, _ := newTestAPI(t)
	id := createMap(t, api)

	resp := api.Post("/api/v1/maps/"+id+"/render", map[string]any{
		"geojson": json.RawMessage(roads),
		"option":  map[string]any{"name": "pois", "dismissOn": "dblclick"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	body := decode[RenderBody](t, resp.Body.Bytes())

	resp = api.Post("/api/v1/maps/" + id + "/overlays/" + body.Overlays[0].ID + "/events/dblclick")
	require.Equal(t, http.StatusOK, resp.Code)

	layers := decode[[]service.LayerInfo](t, api.Get("/api/v1/maps/"+id+"/layers").Body.Bytes())
	require.Len(t, layers, 1)
	assert.Len(t, layers[0].OverlayIDs, 2)

	assert.Equal(t, http.StatusOK, api.Delete("/api/v1/maps/"+id+"/layers/pois").Code)
	assert.Equal(t, http.StatusNotFound, api.Delete("/api/v1/maps/"+id+"/layers/pois").Code)
	assert.Empty(t, decode[[]OverlayBody](t, api.Get("/api/v1/maps/"+id+"/overlays").Body.Bytes()))
}

func TestRenderSource(t *testing.T) {
	api, svc := newTestAPI(t)
	id := createMap(t, api)

	require.NoError(t, os.MkdirAll(svc.Source.SourcesDir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(svc.Source.SourcesDir(), "roads.geojson"), []byte(roads), 0644))

	sources := decode[[]service.SourceFile](t, api.Get("/api/v1/sources").Body.Bytes())
	require.Len(t, sources, 1)

	resp := api.Post("/api/v1/maps/"+id+"/render/source", map[string]any{"name": "roads.geojson"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	body := decode[RenderBody](t, resp.Body.Bytes())
	assert.Equal(t, "roads.geojson", body.Layer)
	assert.Len(t, body.Overlays, 3)

	resp = api.Post("/api/v1/maps/"+id+"/render/source", map[string]any{"name": "../roads.geojson"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.Post("/api/v1/maps/"+id+"/render/source", map[string]any{"name": "missing.geojson"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRenderQuery_NoDatabase(t *testing.T) {
	api, _ := newTestAPI(t)
	id := createMap(t, api)

	resp := api.Post("/api/v1/maps/"+id+"/render/query", map[string]any{"query": "SELECT 1"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, http.StatusServiceUnavailable, api.Get("/api/v1/tables").Code)
}
