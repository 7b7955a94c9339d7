package editor

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-overlay/internal/humastar"
	"github.com/joeblew999/plat-overlay/internal/render"
	"github.com/joeblew999/plat-overlay/internal/service"
)

// SignalsInput carries the Datastar signals posted by the editor form.
type SignalsInput struct {
	ID      string `path:"id" doc:"Map session ID"`
	RawBody []byte
}

// ListOverlays patches the overlay list once.
func (h *EventHandler) ListOverlays(ctx context.Context, input *MapInput) (*huma.StreamResponse, error) {
	sess, ok := h.maps.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("map not found: " + input.ID)
	}
	layer := layerFilter(input.Datastar)

	return h.Stream(func(_ huma.Context, sse humastar.SSE) {
		sse.Patch(h.renderOverlayList(sess, layer), "#overlay-list")
	}), nil
}

// Render draws the geojson signal into the layer signal and patches the
// overlay list. Failures are reported as an error signal.
func (h *EventHandler) Render(ctx context.Context, input *SignalsInput) (*huma.StreamResponse, error) {
	sess, ok := h.maps.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("map not found: " + input.ID)
	}
	signals, err := humastar.ParseSignals(input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid signals: " + err.Error())
	}

	return h.Stream(func(_ huma.Context, sse humastar.SSE) {
		data := signals.String("geojson")
		if data == "" {
			sse.Error("geojson is required")
			return
		}
		res := sess.Render(data, render.Option{
			Name:     signals.String("layer"),
			Renderer: signals.String("renderer"),
			Render:   signals.String("render"),
		})
		if res == nil {
			sse.Error("input is not drawable GeoJSON")
			return
		}

		sse.Patch(h.renderOverlayList(sess, ""), "#overlay-list")
		msg := fmt.Sprintf("%d overlays drawn in %s", len(res.Overlays), res.Layer)
		if len(res.Failures) > 0 {
			msg += fmt.Sprintf(", %d skipped", len(res.Failures))
		}
		sse.Signals(map[string]any{"success": msg, "error": "", "geojson": ""})
	}), nil
}

func (h *EventHandler) renderOverlayList(sess *service.Session, layer string) string {
	var items []any
	for _, o := range sess.Overlays() {
		if layer != "" && o.Layer != layer {
			continue
		}
		items = append(items, o)
	}
	return h.RenderList("overlay-row", items, "No overlays", "Render GeoJSON to draw on this map")
}
