package render

import (
	"fmt"

	"github.com/joeblew999/plat-overlay/internal/geometry"
	"github.com/joeblew999/plat-overlay/internal/style"
	"github.com/joeblew999/plat-overlay/internal/widget"
)

// Point draws a marker at coords ([lon, lat]) and registers it under opt.Name.
func (e *Engine) Point(coords any, opt Option) (widget.Overlay, error) {
	return e.direct(coords, opt, e.point)
}

// Polyline draws a line through coords ([[lon, lat], ...]).
func (e *Engine) Polyline(coords any, opt Option) (widget.Overlay, error) {
	return e.direct(coords, opt, e.polyline)
}

// Polygon draws a polygon from coords ([[[lon, lat], ...], ...]). Only the
// outer ring is drawn.
func (e *Engine) Polygon(coords any, opt Option) (widget.Overlay, error) {
	return e.direct(coords, opt, e.polygon)
}

// Circle draws a circle of opt.Radius meters around coords.
func (e *Engine) Circle(coords any, opt Option) (widget.Overlay, error) {
	return e.direct(coords, opt, e.circle)
}

type builder func(coords any, opt Option, props map[string]any) (widget.Overlay, error)

func (e *Engine) direct(coords any, opt Option, build builder) (widget.Overlay, error) {
	opt = opt.withDefaults()

	e.mu.Lock()
	defer e.mu.Unlock()

	if opt.Replace {
		e.clear(opt.Name)
	}
	return build(coords, opt, nil)
}

func (e *Engine) point(coords any, opt Option, props map[string]any) (widget.Overlay, error) {
	p, err := geometry.NewPoint(coords)
	if err != nil {
		return nil, fmt.Errorf("point: %w", err)
	}
	o := e.f.NewMarker(p, style.Resolve(style.Point, opt.StyleMap))
	return e.place(o, opt, props), nil
}

func (e *Engine) polyline(coords any, opt Option, props map[string]any) (widget.Overlay, error) {
	ls, err := geometry.NewLineString(coords)
	if err != nil {
		return nil, fmt.Errorf("polyline: %w", err)
	}
	o := e.f.NewPolyline(ls, style.Resolve(style.Polyline, opt.StyleMap))
	return e.place(o, opt, props), nil
}

func (e *Engine) polygon(coords any, opt Option, props map[string]any) (widget.Overlay, error) {
	poly, err := geometry.NewPolygon(coords)
	if err != nil {
		return nil, fmt.Errorf("polygon: %w", err)
	}
	o := e.f.NewPolygon(poly, style.Resolve(style.Polygon, opt.StyleMap))
	return e.place(o, opt, props), nil
}

func (e *Engine) circle(coords any, opt Option, props map[string]any) (widget.Overlay, error) {
	if opt.Radius == nil || *opt.Radius <= 0 {
		return nil, ErrRadiusRequired
	}
	center, err := geometry.NewPoint(coords)
	if err != nil {
		return nil, fmt.Errorf("circle: %w", err)
	}
	o := e.f.NewCircle(center, *opt.Radius, style.Resolve(style.Circle, opt.StyleMap))
	return e.place(o, opt, props), nil
}

// place adds o to the map, attaches metadata, registers it under the layer
// name and binds the dismiss handler.
func (e *Engine) place(o widget.Overlay, opt Option, props map[string]any) widget.Overlay {
	e.m.AddOverlay(o)
	o.SetProp(mergeProps(opt.Prop, props))
	e.layers.Append(opt.Name, o)
	if opt.DismissOn != "" {
		e.dismissOn(o, opt.DismissOn)
	}
	return o
}
