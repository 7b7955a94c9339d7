package render

import (
	"maps"

	"github.com/joeblew999/plat-overlay/internal/style"
)

const (
	// DefaultLayerName is used when Option.Name is empty.
	DefaultLayerName = "tmp"
	// DefaultRenderer is the backend hint used when Option.Renderer is empty.
	DefaultRenderer = "svg"
	// RenderMapV selects the density renderer.
	RenderMapV = "mapv"
)

// Option configures one render call. Zero fields take their defaults
// individually.
type Option struct {
	Name      string         `json:"name,omitempty" doc:"Layer name" example:"roads" default:"tmp"`
	Prop      map[string]any `json:"prop,omitempty" doc:"Metadata attached to every produced overlay"`
	StyleMap  style.Map      `json:"styleMap,omitempty" doc:"Style overrides keyed by point, polyline, polygon or circle"`
	Renderer  string         `json:"renderer,omitempty" doc:"Rendering backend hint" default:"svg"`
	Render    string         `json:"render,omitempty" doc:"External renderer selector" example:"mapv"`
	Radius    *float64       `json:"radius,omitempty" doc:"Circle radius in meters, required for circles"`
	DismissOn string         `json:"dismissOn,omitempty" doc:"Interaction event that removes the overlay" example:"dblclick"`
	Replace   bool           `json:"replace,omitempty" doc:"Remove the layer's previous overlays before drawing"`
}

// WithRadius returns a copy of o with Radius set to r.
func (o Option) WithRadius(r float64) Option {
	o.Radius = &r
	return o
}

// withDefaults returns a copy of o with defaults applied per field. The
// copy shares no maps or pointers with o.
func (o Option) withDefaults() Option {
	out := o
	if out.Name == "" {
		out.Name = DefaultLayerName
	}
	if out.Renderer == "" {
		out.Renderer = DefaultRenderer
	}
	out.Prop = maps.Clone(o.Prop)
	if out.Prop == nil {
		out.Prop = map[string]any{}
	}
	out.StyleMap = o.StyleMap.Clone()
	if o.Radius != nil {
		r := *o.Radius
		out.Radius = &r
	}
	return out
}

// mergeProps returns a fresh map holding base overlaid by extra.
func mergeProps(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	maps.Copy(out, base)
	maps.Copy(out, extra)
	return out
}
