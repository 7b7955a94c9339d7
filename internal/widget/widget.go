// Package widget defines the map widget capabilities the renderer consumes.
//
// The widget owns the overlays added to it, their pixels and the viewport.
// The render engine only constructs overlays through a Factory, hands them to
// a Map and keeps non-owning references for later lookup.
package widget

import (
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-overlay/internal/style"
)

// Interaction event names.
const (
	EventClick       = "click"
	EventDoubleClick = "dblclick"
)

// Kind identifies the concrete overlay type.
type Kind string

const (
	KindMarker   Kind = "marker"
	KindPolyline Kind = "polyline"
	KindPolygon  Kind = "polygon"
	KindCircle   Kind = "circle"
)

// Event is delivered to overlay listeners.
type Event struct {
	Name    string
	Overlay Overlay
}

// Handler reacts to an interaction on an overlay.
type Handler func(Event)

// Overlay is a renderable object placed on a map.
type Overlay interface {
	ID() string
	Kind() Kind
	Geometry() orb.Geometry
	Style() style.Style
	Prop() map[string]any
	SetProp(prop map[string]any)
	AddEventListener(event string, h Handler)
}

// Positioner is implemented by overlays that can be moved in place (markers).
type Positioner interface {
	SetPosition(p orb.Point)
}

// Radiuser is implemented by circle overlays.
type Radiuser interface {
	Radius() float64
}

// Map is the host map widget.
type Map interface {
	AddOverlay(o Overlay)
	RemoveOverlay(o Overlay)
	Zoom() int
	SetCenter(p orb.Point, zoom int)
	Bounds() orb.Bound
}

// Factory constructs overlays from normalized geometry and a resolved style.
type Factory interface {
	NewMarker(p orb.Point, s style.Style) Overlay
	NewPolyline(ls orb.LineString, s style.Style) Overlay
	NewPolygon(p orb.Polygon, s style.Style) Overlay
	NewCircle(center orb.Point, radius float64, s style.Style) Overlay
}

// Renderer is an external renderer that draws a whole dataset at once and
// can be refreshed in place.
type Renderer interface {
	Update(data any) error
	Overlays() []Overlay
}
