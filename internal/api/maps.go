package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-overlay/internal/render"
	"github.com/joeblew999/plat-overlay/internal/service"
)

type MapOutput struct {
	Body service.MapInfo
}

type CenterInput struct {
	MapIDInput
	Body struct {
		Center []float64 `json:"center" required:"true" minItems:"2" maxItems:"2" doc:"New center as [lon, lat]"`
		Zoom   int       `json:"zoom,omitempty" minimum:"0" maximum:"22" doc:"New zoom level, 0 keeps the current one"`
	}
}

type PointInput struct {
	MapIDInput
	Body struct {
		LonLat []float64 `json:"lonlat" required:"true" minItems:"2" maxItems:"2" doc:"Marker position as [lon, lat]"`
	}
}

// RegisterMaps registers map session routes.
func (h *APIHandler) RegisterMaps(api huma.API) {
	huma.Get(api, "/api/v1/maps", h.ListMaps, huma.OperationTags("maps"))
	huma.Post(api, "/api/v1/maps", h.CreateMap, huma.OperationTags("maps"), created)
	huma.Get(api, "/api/v1/maps/{id}", h.GetMap, huma.OperationTags("maps"))
	huma.Delete(api, "/api/v1/maps/{id}", h.DeleteMap, huma.OperationTags("maps"))
	huma.Put(api, "/api/v1/maps/{id}/center", h.SetCenter, huma.OperationTags("maps"))
	huma.Get(api, "/api/v1/maps/{id}/bounds", h.GetBounds, huma.OperationTags("maps"))
	huma.Post(api, "/api/v1/maps/{id}/points", h.AddPoint, huma.OperationTags("overlays"), created)
	huma.Put(api, "/api/v1/maps/{id}/points/tmp", h.AddTmpPoint, huma.OperationTags("overlays"))
}

func created(o *huma.Operation) { o.DefaultStatus = http.StatusCreated }

func (h *APIHandler) ListMaps(ctx context.Context, input *struct{}) (*struct{ Body []service.MapInfo }, error) {
	if h.svc == nil || h.svc.Maps == nil {
		return &struct{ Body []service.MapInfo }{Body: []service.MapInfo{}}, nil
	}
	return &struct{ Body []service.MapInfo }{Body: h.svc.Maps.List()}, nil
}

func (h *APIHandler) CreateMap(ctx context.Context, input *struct{ Body service.MapConfig }) (*MapOutput, error) {
	if h.svc == nil || h.svc.Maps == nil {
		return nil, huma.Error503ServiceUnavailable("map service not available")
	}
	sess, err := h.svc.Maps.Create(input.Body)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return &MapOutput{Body: sess.Info()}, nil
}

func (h *APIHandler) GetMap(ctx context.Context, input *MapIDInput) (*MapOutput, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	return &MapOutput{Body: sess.Info()}, nil
}

func (h *APIHandler) DeleteMap(ctx context.Context, input *MapIDInput) (*struct{ Body MessageBody }, error) {
	if _, err := h.session(input.ID); err != nil {
		return nil, err
	}
	if err := h.svc.Maps.Delete(input.ID); err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Map deleted"}}, nil
}

func (h *APIHandler) SetCenter(ctx context.Context, input *CenterInput) (*MapOutput, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.SetCenter(input.Body.Center, input.Body.Zoom); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return &MapOutput{Body: sess.Info()}, nil
}

func (h *APIHandler) GetBounds(ctx context.Context, input *MapIDInput) (*struct{ Body render.BBox }, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	return &struct{ Body render.BBox }{Body: sess.Engine.Bounds()}, nil
}

func (h *APIHandler) AddPoint(ctx context.Context, input *PointInput) (*OverlayOutput, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	o, err := sess.Engine.AddPoint(input.Body.LonLat)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return &OverlayOutput{Body: newOverlayBody(sess.ID, service.DescribeOverlay(o, ""))}, nil
}

func (h *APIHandler) AddTmpPoint(ctx context.Context, input *PointInput) (*OverlayOutput, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	o, err := sess.Engine.AddTmpPoint(input.Body.LonLat)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return &OverlayOutput{Body: newOverlayBody(sess.ID, service.DescribeOverlay(o, ""))}, nil
}
