package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoBody struct {
	Name      string   `json:"name" doc:"Service name"`
	Version   string   `json:"version" doc:"Service version"`
	DataDir   string   `json:"data_dir" doc:"Data directory path"`
	DB        bool     `json:"db" doc:"Whether database is available"`
	Renderers []string `json:"renderers" doc:"External render selectors"`
	Maps      int      `json:"maps" doc:"Live map sessions"`
}

type TablesOutput struct {
	Body struct {
		Tables []string `json:"tables" doc:"List of table names"`
	}
}

// RegisterInfo registers service info and database discovery routes.
func (h *APIHandler) RegisterInfo(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
	huma.Get(api, "/api/v1/tables", h.ListTables, huma.OperationTags("render"))
}

func (h *APIHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	body := InfoBody{
		Name:      "plat-overlay",
		Version:   Version,
		Renderers: []string{"mapv"},
	}
	if h.svc != nil {
		body.DataDir = h.svc.DataDir
		body.DB = h.svc.Query.Available()
		if h.svc.Maps != nil {
			body.Maps = len(h.svc.Maps.List())
		}
	}
	return &struct{ Body InfoBody }{Body: body}, nil
}

// ListTables returns the DuckDB tables that render/query can read from.
func (h *APIHandler) ListTables(ctx context.Context, input *struct{}) (*TablesOutput, error) {
	if h.svc == nil || !h.svc.Query.Available() {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	tables, err := h.svc.Query.Tables(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tables", err)
	}

	out := &TablesOutput{}
	out.Body.Tables = tables
	return out, nil
}
