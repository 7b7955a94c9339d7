// Package editor streams map session state to the Datastar editor UI.
package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-overlay/internal/humastar"
	"github.com/joeblew999/plat-overlay/internal/service"
	"github.com/joeblew999/plat-overlay/internal/templates"
)

// MapInput selects a map session. Datastar sends its signals as a JSON
// query parameter on GET requests.
type MapInput struct {
	ID       string `path:"id" doc:"Map session ID"`
	Datastar string `query:"datastar" required:"false" doc:"Datastar signals as JSON"`
}

// EventHandler streams map change events to the Datastar UI via SSE.
type EventHandler struct {
	humastar.Handler
	maps *service.MapService
}

// NewEventHandler creates a new event handler.
func NewEventHandler(maps *service.MapService, renderer *templates.Renderer) *EventHandler {
	return &EventHandler{
		Handler: humastar.Handler{Renderer: renderer},
		maps:    maps,
	}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/maps/{id}/events", h.Events,
		huma.OperationTags("editor"),
	)
	huma.Get(api, "/api/v1/editor/maps/{id}/overlays", h.ListOverlays,
		huma.OperationTags("editor"),
	)
	huma.Post(api, "/api/v1/editor/maps/{id}/render", h.Render,
		huma.OperationTags("editor"),
	)
}

func (h *EventHandler) Events(ctx context.Context, input *MapInput) (*huma.StreamResponse, error) {
	sess, ok := h.maps.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("map not found: " + input.ID)
	}
	layer := layerFilter(input.Datastar)

	return h.Stream(func(humaCtx huma.Context, sse humastar.SSE) {
		bus := h.maps.Bus()
		ch := bus.Subscribe()
		defer bus.Unsubscribe(ch)

		if h.patchMap(sse, sess, layer) != nil {
			return
		}

		done := humaCtx.Context().Done()
		for {
			select {
			case <-done:
				return
			case ev, open := <-ch:
				if !open {
					return
				}
				if ev.MapID != sess.ID {
					continue
				}
				if ev.Resource == service.ResourceMaps && ev.Action == service.ActionDeleted {
					sse.Error("map deleted")
					return
				}
				if h.patchMap(sse, sess, layer) != nil {
					return
				}
				sse.DispatchCustomEvent("map-changed", map[string]any{
					"resource": ev.Resource,
					"action":   ev.Action,
					"id":       ev.ID,
				})
			}
		}
	}), nil
}

// patchMap pushes the overlay list and map summary for sess.
func (h *EventHandler) patchMap(sse humastar.SSE, sess *service.Session, layer string) error {
	if err := sse.Patch(h.renderOverlayList(sess, layer), "#overlay-list"); err != nil {
		return err
	}
	summary, err := h.Renderer.Render("map-summary", sess.Info())
	if err != nil {
		return sse.Error(err.Error())
	}
	return sse.Patch(summary, "#map-summary")
}

func layerFilter(raw string) string {
	if raw == "" {
		return ""
	}
	signals, err := humastar.ParseSignals([]byte(raw))
	if err != nil {
		return ""
	}
	return signals.String("layer")
}
