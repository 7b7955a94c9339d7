package render

import (
	"github.com/joeblew999/plat-overlay/internal/geometry"
	"github.com/joeblew999/plat-overlay/internal/style"
	"github.com/joeblew999/plat-overlay/internal/widget"
)

// BBox is a viewport in degrees.
type BBox struct {
	XMin float64 `json:"xmin" doc:"West longitude"`
	XMax float64 `json:"xmax" doc:"East longitude"`
	YMin float64 `json:"ymin" doc:"South latitude"`
	YMax float64 `json:"ymax" doc:"North latitude"`
}

// ViewportBounds returns the visible extent of m.
func ViewportBounds(m widget.Map) BBox {
	b := m.Bounds()
	return BBox{
		XMin: b.Min.Lon(),
		XMax: b.Max.Lon(),
		YMin: b.Min.Lat(),
		YMax: b.Max.Lat(),
	}
}

// Bounds returns the visible extent of the engine's map.
func (e *Engine) Bounds() BBox {
	return ViewportBounds(e.m)
}

// AddPoint drops a plain marker at lonlat that disappears on double click.
// It is not registered under any layer.
func (e *Engine) AddPoint(lonlat []float64) (widget.Overlay, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addPoint(lonlat)
}

func (e *Engine) addPoint(lonlat []float64) (widget.Overlay, error) {
	p, err := geometry.PointFromArray(lonlat)
	if err != nil {
		return nil, err
	}
	m := e.f.NewMarker(p, style.Style{})
	e.m.AddOverlay(m)
	e.dismissOn(m, widget.EventDoubleClick)
	return m, nil
}

// AddTmpPoint keeps a single scratch marker per map: the first call creates
// it, later calls move it. A dismissed scratch marker is recreated.
func (e *Engine) AddTmpPoint(lonlat []float64) (widget.Overlay, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if mv, ok := e.tmp.(widget.Positioner); ok {
		p, err := geometry.PointFromArray(lonlat)
		if err != nil {
			return nil, err
		}
		mv.SetPosition(p)
		return e.tmp, nil
	}

	m, err := e.addPoint(lonlat)
	if err != nil {
		return nil, err
	}
	e.tmp = m
	return m, nil
}

// SetCenter recenters the map on lonlat. A zoom of zero or less keeps the
// current zoom.
func (e *Engine) SetCenter(lonlat any, zoom int) error {
	p, err := geometry.NewPoint(lonlat)
	if err != nil {
		return err
	}
	if zoom <= 0 {
		zoom = e.m.Zoom()
	}
	e.m.SetCenter(p, zoom)
	return nil
}

// Remove takes o off the map and out of every layer.
func (e *Engine) Remove(o widget.Overlay) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.remove(o)
}

func (e *Engine) remove(o widget.Overlay) {
	e.m.RemoveOverlay(o)
	e.layers.Forget(o)
	if e.tmp != nil && e.tmp.ID() == o.ID() {
		e.tmp = nil
	}
}

// Clear removes every overlay of the named layer from the map and drops the
// layer. It reports whether the layer existed.
func (e *Engine) Clear(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clear(name)
}

func (e *Engine) clear(name string) bool {
	entry, ok := e.layers.Delete(name)
	if !ok {
		return false
	}
	for _, o := range entry.Overlays {
		e.m.RemoveOverlay(o)
	}
	return true
}

// dismissOn removes o from the map when event fires on it.
func (e *Engine) dismissOn(o widget.Overlay, event string) {
	o.AddEventListener(event, func(ev widget.Event) {
		e.Remove(ev.Overlay)
	})
}
