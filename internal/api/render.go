package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-overlay/internal/render"
	"github.com/joeblew999/plat-overlay/internal/service"
)

type RenderInput struct {
	MapIDInput
	Body struct {
		GeoJSON any           `json:"geojson" required:"true" doc:"FeatureCollection, Feature array, Feature or bare geometry, as an object or a JSON string"`
		Option  render.Option `json:"option,omitempty" doc:"Render options"`
	}
}

type RenderSourceInput struct {
	MapIDInput
	Body struct {
		Name   string        `json:"name" required:"true" minLength:"1" doc:"Source file name" example:"districts.geojson"`
		Option render.Option `json:"option,omitempty" doc:"Render options"`
	}
}

type RenderQueryInput struct {
	MapIDInput
	Body struct {
		Query  string        `json:"query" required:"true" minLength:"1" doc:"SQL returning a geometry column of GeoJSON text" example:"SELECT name, ST_AsGeoJSON(geom) AS geometry FROM districts"`
		Option render.Option `json:"option,omitempty" doc:"Render options"`
	}
}

type FailureBody struct {
	Index int    `json:"index" doc:"Position of the feature in the input"`
	Kind  string `json:"kind" doc:"Geometry kind of the feature"`
	Error string `json:"error" doc:"Why the feature was skipped"`
}

type RenderBody struct {
	Layer      string        `json:"layer" doc:"Layer the overlays were registered under"`
	Collection bool          `json:"collection" doc:"Whether the input was a collection"`
	External   bool          `json:"external" doc:"Whether an external renderer drew the input"`
	Overlays   []OverlayBody `json:"overlays" doc:"Overlays produced, in input order"`
	Failures   []FailureBody `json:"failures" doc:"Features that could not be drawn"`
}

type RenderOutput struct {
	Body RenderBody
}

// RegisterRender registers the render routes.
func (h *APIHandler) RegisterRender(api huma.API) {
	huma.Post(api, "/api/v1/maps/{id}/render", h.Render, huma.OperationTags("render"))
	huma.Post(api, "/api/v1/maps/{id}/render/source", h.RenderSource, huma.OperationTags("render"))
	huma.Post(api, "/api/v1/maps/{id}/render/query", h.RenderQuery, huma.OperationTags("render"))
}

func (h *APIHandler) Render(ctx context.Context, input *RenderInput) (*RenderOutput, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	return renderOutput(sess, input.Body.GeoJSON, input.Body.Option)
}

func (h *APIHandler) RenderSource(ctx context.Context, input *RenderSourceInput) (*RenderOutput, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	if h.svc.Source == nil {
		return nil, huma.Error503ServiceUnavailable("source service not available")
	}

	data, err := h.svc.Source.Read(input.Body.Name)
	switch {
	case errors.Is(err, service.ErrInvalidSourceName):
		return nil, huma.Error400BadRequest(err.Error())
	case errors.Is(err, service.ErrSourceNotFound):
		return nil, huma.Error404NotFound(err.Error())
	case err != nil:
		return nil, huma.Error500InternalServerError("read source", err)
	}

	opt := input.Body.Option
	if opt.Name == "" {
		opt.Name = input.Body.Name
	}
	return renderOutput(sess, data, opt)
}

func (h *APIHandler) RenderQuery(ctx context.Context, input *RenderQueryInput) (*RenderOutput, error) {
	sess, err := h.session(input.ID)
	if err != nil {
		return nil, err
	}
	if !h.svc.Query.Available() {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	fc, err := h.svc.Query.Features(ctx, input.Body.Query)
	if err != nil {
		return nil, huma.Error400BadRequest("Query failed: " + err.Error())
	}
	return renderOutput(sess, fc, input.Body.Option)
}

func renderOutput(sess *service.Session, input any, opt render.Option) (*RenderOutput, error) {
	res := sess.Render(input, opt)
	if res == nil {
		return nil, huma.Error422UnprocessableEntity("render failed: input is not drawable GeoJSON")
	}

	body := RenderBody{
		Layer:      res.Layer,
		Collection: res.Collection,
		External:   res.External,
		Overlays:   make([]OverlayBody, len(res.Overlays)),
		Failures:   make([]FailureBody, len(res.Failures)),
	}
	for i, o := range res.Overlays {
		body.Overlays[i] = newOverlayBody(sess.ID, service.DescribeOverlay(o, res.Layer))
	}
	for i, f := range res.Failures {
		body.Failures[i] = FailureBody{Index: f.Index, Kind: f.Kind.String(), Error: f.Err.Error()}
	}
	return &RenderOutput{Body: body}, nil
}
