package canvas

import (
	"maps"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-overlay/internal/style"
	"github.com/joeblew999/plat-overlay/internal/widget"
)

// Element is the overlay type built by a Canvas.
type Element struct {
	mu        sync.RWMutex
	id        string
	kind      widget.Kind
	geom      orb.Geometry
	style     style.Style
	radius    float64
	prop      map[string]any
	listeners map[string][]widget.Handler
	owner     *Canvas
}

func newElement(kind widget.Kind, g orb.Geometry, s style.Style) *Element {
	return &Element{
		id:        uuid.NewString(),
		kind:      kind,
		geom:      g,
		style:     s.Clone(),
		prop:      map[string]any{},
		listeners: make(map[string][]widget.Handler),
	}
}

// NewMarker builds a point marker.
func (c *Canvas) NewMarker(p orb.Point, s style.Style) widget.Overlay {
	return newElement(widget.KindMarker, p, s)
}

// NewPolyline builds a polyline.
func (c *Canvas) NewPolyline(ls orb.LineString, s style.Style) widget.Overlay {
	return newElement(widget.KindPolyline, ls.Clone(), s)
}

// NewPolygon builds a polygon.
func (c *Canvas) NewPolygon(p orb.Polygon, s style.Style) widget.Overlay {
	return newElement(widget.KindPolygon, p.Clone(), s)
}

// NewCircle builds a circle of radius meters around center.
func (c *Canvas) NewCircle(center orb.Point, radius float64, s style.Style) widget.Overlay {
	el := newElement(widget.KindCircle, center, s)
	el.radius = radius
	return el
}

func (e *Element) ID() string        { return e.id }
func (e *Element) Kind() widget.Kind { return e.kind }

func (e *Element) Geometry() orb.Geometry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.geom
}

// Style returns a copy of the overlay's style.
func (e *Element) Style() style.Style {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.style.Clone()
}

// Radius returns the circle radius in meters, 0 for other kinds.
func (e *Element) Radius() float64 {
	return e.radius
}

// Prop returns a copy of the metadata attached to the overlay.
func (e *Element) Prop() map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return maps.Clone(e.prop)
}

// SetProp replaces the overlay metadata.
func (e *Element) SetProp(prop map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prop = maps.Clone(prop)
	if e.prop == nil {
		e.prop = map[string]any{}
	}
}

// AddEventListener registers h for event.
func (e *Element) AddEventListener(event string, h widget.Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[event] = append(e.listeners[event], h)
}

// ListenerCount returns how many handlers are registered for event.
func (e *Element) ListenerCount(event string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[event])
}

// SetPosition moves a marker. It is ignored for other kinds.
func (e *Element) SetPosition(p orb.Point) {
	e.mu.Lock()
	if e.kind != widget.KindMarker {
		e.mu.Unlock()
		return
	}
	e.geom = p
	owner := e.owner
	e.mu.Unlock()

	if owner != nil {
		owner.notify(Change{Action: ActionMoved, Overlay: e})
	}
}

func (e *Element) attach(c *Canvas) {
	e.mu.Lock()
	e.owner = c
	e.mu.Unlock()
}

func (e *Element) emit(event string) {
	e.mu.RLock()
	handlers := append([]widget.Handler(nil), e.listeners[event]...)
	e.mu.RUnlock()

	for _, h := range handlers {
		h(widget.Event{Name: event, Overlay: e})
	}
}
