package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-overlay/internal/canvas"
	"github.com/joeblew999/plat-overlay/internal/humastar"
	"github.com/joeblew999/plat-overlay/internal/service"
)

var overlayActions = []humastar.ActionDef{
	{Rel: "delete", Pattern: "/api/v1/maps/%s/overlays/%s", Method: "DELETE", Title: "Remove overlay"},
	{Rel: "dismiss", Pattern: "/api/v1/maps/%s/overlays/%s/events/dblclick", Method: "POST", Title: "Double click"},
}

// OverlayBody is an overlay with its hypermedia actions.
type OverlayBody struct {
	service.OverlayInfo
	mapID string
}

func newOverlayBody(mapID string, info service.OverlayInfo) OverlayBody {
	return OverlayBody{OverlayInfo: info, mapID: mapID}
}

// Actions implements humastar.Actor.
func (b OverlayBody) Actions() []humastar.Action {
	return humastar.ActionsFor(overlayActions, b.mapID, b.ID)
}

type OverlayOutput struct {
	Body OverlayBody
}

type OverlayIDInput struct {
	MapIDInput
	OID string `path:"oid" doc:"Overlay ID"`
}

type LayerNameInput struct {
	MapIDInput
	Name string `path:"name" doc:"Layer name" example:"tmp"`
}

type FireInput struct {
	OverlayIDInput
	Event string `path:"event" enum:"click,dblclick" doc:"Interaction event"`
}

// RegisterOverlays registers layer and overlay routes.
func (h *APIHandler) RegisterOverlays(api huma.API) {
	huma.Get(api, "/api/v1/maps/{id}/layers", h.ListLayers, huma.OperationTags("layers"))
	huma.Delete(api, "/api/v1/maps/{id}/layers/{name}", h.ClearLayer, huma.OperationTags("layers"))
	huma.Get(api, "/api/v1/maps/{id}/overlays", h.ListOverlays, huma.OperationTags("overlays"))
	huma.Delete(api, "/api/v1/maps/{id}/overlays/{oid}", h.RemoveOverlay, huma.OperationTags("overlays"))
	huma.Post(api, "/api/v1/maps/{id}/overlays/{oid}/events/{event}", h.FireEvent, huma.OperationTags("overlays"))
}

func (h *APIHandler) ListLayers(ctx context.Context, input *MapIDInput) (*struct{ Body []service.LayerInfo }, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	return &struct{ Body []service.LayerInfo }{Body: sess.Layers()}, nil
}

func (h *APIHandler) ClearLayer(ctx context.Context, input *LayerNameInput) (*struct{ Body MessageBody }, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	if !sess.Clear(input.Name) {
		return nil, huma.Error404NotFound(fmt.Sprintf("layer %q not found", input.Name))
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Layer cleared"}}, nil
}

func (h *APIHandler) ListOverlays(ctx context.Context, input *MapIDInput) (*struct{ Body []OverlayBody }, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	infos := sess.Overlays()
	bodies := make([]OverlayBody, len(infos))
	for i, info := range infos {
		bodies[i] = newOverlayBody(sess.ID, info)
	}
	return &struct{ Body []OverlayBody }{Body: bodies}, nil
}

func (h *APIHandler) RemoveOverlay(ctx context.Context, input *OverlayIDInput) (*struct{ Body MessageBody }, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	o, _, ok := sess.Overlay(input.OID)
	if !ok {
		return nil, huma.Error404NotFound(fmt.Sprintf("overlay %q not found", input.OID))
	}
	sess.Engine.Remove(o)
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Overlay removed"}}, nil
}

func (h *APIHandler) FireEvent(ctx context.Context, input *FireInput) (*struct{ Body MessageBody }, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	if err := sess.Canvas.Fire(input.OID, input.Event); err != nil {
		if errors.Is(err, canvas.ErrOverlayNotFound) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, huma.Error500InternalServerError("fire event", err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: fmt.Sprintf("%s delivered", input.Event)}}, nil
}
