// Package canvas is a headless map widget. It keeps overlays in memory,
// tracks a Web Mercator viewport and dispatches interaction events, which is
// all the render engine needs from a host map.
package canvas

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/joeblew999/plat-overlay/internal/widget"
)

// Change actions reported through Config.OnChange.
const (
	ActionAdded    = "added"
	ActionRemoved  = "removed"
	ActionMoved    = "moved"
	ActionCentered = "centered"
)

const (
	DefaultZoom   = 12
	DefaultWidth  = 1024
	DefaultHeight = 768
	MaxZoom       = 22

	tileSize = 256
	// earthCircumference is the Web Mercator world width in meters.
	earthCircumference = 2 * math.Pi * 6378137
)

// ErrOverlayNotFound is returned when an overlay id is not on the canvas.
var ErrOverlayNotFound = errors.New("overlay not found")

// Change describes a mutation of the canvas. Overlay is nil for ActionCentered.
type Change struct {
	Action  string
	Overlay widget.Overlay
}

// Config holds the initial viewport of a canvas.
type Config struct {
	Center orb.Point
	Zoom   int
	Width  int // viewport width in pixels
	Height int // viewport height in pixels

	// OnChange is called after every mutation, outside the canvas lock.
	OnChange func(Change)
}

// Canvas implements widget.Map and widget.Factory.
type Canvas struct {
	mu       sync.RWMutex
	center   orb.Point
	zoom     int
	width    int
	height   int
	order    []string
	overlays map[string]widget.Overlay
	onChange func(Change)
}

// New creates a canvas, filling zero config fields with defaults.
func New(cfg Config) *Canvas {
	if cfg.Zoom <= 0 {
		cfg.Zoom = DefaultZoom
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	return &Canvas{
		center:   cfg.Center,
		zoom:     clampZoom(cfg.Zoom),
		width:    cfg.Width,
		height:   cfg.Height,
		overlays: make(map[string]widget.Overlay),
		onChange: cfg.OnChange,
	}
}

// AddOverlay places o on the canvas. Adding the same overlay twice is a no-op.
func (c *Canvas) AddOverlay(o widget.Overlay) {
	c.mu.Lock()
	if _, exists := c.overlays[o.ID()]; exists {
		c.mu.Unlock()
		return
	}
	c.overlays[o.ID()] = o
	c.order = append(c.order, o.ID())
	if el, ok := o.(*Element); ok {
		el.attach(c)
	}
	c.mu.Unlock()

	c.notify(Change{Action: ActionAdded, Overlay: o})
}

// RemoveOverlay takes o off the canvas. Removing an absent overlay is a no-op.
func (c *Canvas) RemoveOverlay(o widget.Overlay) {
	c.mu.Lock()
	if _, exists := c.overlays[o.ID()]; !exists {
		c.mu.Unlock()
		return
	}
	delete(c.overlays, o.ID())
	for i, id := range c.order {
		if id == o.ID() {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	if el, ok := o.(*Element); ok {
		el.attach(nil)
	}
	c.mu.Unlock()

	c.notify(Change{Action: ActionRemoved, Overlay: o})
}

// Overlay returns the overlay with the given id.
func (c *Canvas) Overlay(id string) (widget.Overlay, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	o, ok := c.overlays[id]
	return o, ok
}

// Overlays returns the overlays in the order they were added.
func (c *Canvas) Overlays() []widget.Overlay {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]widget.Overlay, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.overlays[id])
	}
	return result
}

// Len returns the number of overlays on the canvas.
func (c *Canvas) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Zoom returns the current zoom level.
func (c *Canvas) Zoom() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.zoom
}

// Center returns the current viewport center.
func (c *Canvas) Center() orb.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.center
}

// SetCenter moves the viewport to p at the given zoom.
func (c *Canvas) SetCenter(p orb.Point, zoom int) {
	c.mu.Lock()
	c.center = p
	c.zoom = clampZoom(zoom)
	c.mu.Unlock()

	c.notify(Change{Action: ActionCentered})
}

// Bounds returns the lon/lat extent of the viewport.
func (c *Canvas) Bounds() orb.Bound {
	c.mu.RLock()
	center, zoom, w, h := c.center, c.zoom, c.width, c.height
	c.mu.RUnlock()

	metersPerPixel := earthCircumference / (tileSize * math.Exp2(float64(zoom)))
	halfW := float64(w) / 2 * metersPerPixel
	halfH := float64(h) / 2 * metersPerPixel

	m := project.WGS84.ToMercator(center)
	sw := project.Mercator.ToWGS84(orb.Point{m[0] - halfW, m[1] - halfH})
	ne := project.Mercator.ToWGS84(orb.Point{m[0] + halfW, m[1] + halfH})

	return orb.Bound{Min: clampLonLat(sw), Max: clampLonLat(ne)}
}

// Fire delivers an interaction event to the listeners of overlay id.
// Listeners run outside the canvas lock and may remove the overlay.
func (c *Canvas) Fire(id, event string) error {
	c.mu.RLock()
	o, ok := c.overlays[id]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%q: %w", id, ErrOverlayNotFound)
	}

	el, ok := o.(*Element)
	if !ok {
		return fmt.Errorf("overlay %q does not accept events", id)
	}
	el.emit(event)
	return nil
}

func (c *Canvas) notify(ch Change) {
	if c.onChange != nil {
		c.onChange(ch)
	}
}

func clampZoom(z int) int {
	if z < 0 {
		return 0
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

func clampLonLat(p orb.Point) orb.Point {
	return orb.Point{
		math.Max(-180, math.Min(180, p[0])),
		math.Max(-85.05112878, math.Min(85.05112878, p[1])),
	}
}
