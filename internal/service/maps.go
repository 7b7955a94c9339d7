package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-overlay/internal/canvas"
	"github.com/joeblew999/plat-overlay/internal/geometry"
	"github.com/joeblew999/plat-overlay/internal/render"
	"github.com/joeblew999/plat-overlay/internal/widget"
)

// ErrMapNotFound is returned for unknown map ids.
var ErrMapNotFound = errors.New("map not found")

// Session is one live map: a headless canvas, its layer registry and the
// engine that draws on it.
type Session struct {
	ID      string
	Name    string
	Created time.Time
	Canvas  *canvas.Canvas
	Engine  *render.Engine

	bus *EventBus
}

// MapService manages map sessions.
type MapService struct {
	defaults MapConfig
	bus      *EventBus
	logger   *slog.Logger
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewMapService creates a map service. defaults fills zero fields of every
// MapConfig passed to Create.
func NewMapService(defaults MapConfig, bus *EventBus, logger *slog.Logger) *MapService {
	if bus == nil {
		bus = NewEventBus()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MapService{
		defaults: defaults,
		bus:      bus,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Bus returns the bus map events are published on.
func (s *MapService) Bus() *EventBus { return s.bus }

// Create starts a new map session.
func (s *MapService) Create(cfg MapConfig) (*Session, error) {
	cfg = s.withDefaults(cfg)

	var center orb.Point
	if len(cfg.Center) > 0 {
		p, err := geometry.PointFromArray(cfg.Center)
		if err != nil {
			return nil, fmt.Errorf("center: %w", err)
		}
		center = p
	}

	sess := &Session{
		ID:      uuid.NewString(),
		Name:    cfg.Name,
		Created: time.Now().UTC(),
		bus:     s.bus,
	}
	sess.Canvas = canvas.New(canvas.Config{
		Center:   center,
		Zoom:     cfg.Zoom,
		Width:    cfg.Width,
		Height:   cfg.Height,
		OnChange: sess.publishChange,
	})
	sess.Engine = render.New(sess.Canvas, sess.Canvas,
		render.WithLogger(s.logger.With("map", sess.ID)))

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("map created", "map", sess.ID, "name", sess.Name)
	s.bus.Publish(Event{MapID: sess.ID, Resource: ResourceMaps, Action: ActionCreated, ID: sess.ID})
	return sess, nil
}

// Get returns a session by id.
func (s *MapService) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	return sess, ok
}

// List returns all sessions, oldest first.
func (s *MapService) List() []MapInfo {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Created.Equal(sessions[j].Created) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].Created.Before(sessions[j].Created)
	})

	result := make([]MapInfo, len(sessions))
	for i, sess := range sessions {
		result[i] = sess.Info()
	}
	return result
}

// Delete removes a session by id.
func (s *MapService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return fmt.Errorf("map %q: %w", id, ErrMapNotFound)
	}

	delete(s.sessions, id)
	s.bus.Publish(Event{MapID: id, Resource: ResourceMaps, Action: ActionDeleted, ID: id})
	return nil
}

func (s *MapService) withDefaults(cfg MapConfig) MapConfig {
	if cfg.Zoom == 0 {
		cfg.Zoom = s.defaults.Zoom
	}
	if cfg.Width == 0 {
		cfg.Width = s.defaults.Width
	}
	if cfg.Height == 0 {
		cfg.Height = s.defaults.Height
	}
	if len(cfg.Center) == 0 {
		cfg.Center = s.defaults.Center
	}
	return cfg
}

// Render draws input through the engine's error boundary and announces the
// result. A nil result means the render failed and was logged.
func (sess *Session) Render(input any, opt render.Option) *render.Result {
	res := sess.Engine.GeoJSON(input, &opt)
	if res != nil {
		sess.bus.Publish(Event{MapID: sess.ID, Resource: ResourceLayers, Action: ActionRendered, ID: res.Layer})
	}
	return res
}

// Clear drops a layer and its overlays.
func (sess *Session) Clear(name string) bool {
	if !sess.Engine.Clear(name) {
		return false
	}
	sess.bus.Publish(Event{MapID: sess.ID, Resource: ResourceLayers, Action: ActionCleared, ID: name})
	return true
}

// Info summarizes the session.
func (sess *Session) Info() MapInfo {
	c := sess.Canvas.Center()
	return MapInfo{
		ID:       sess.ID,
		Name:     sess.Name,
		Center:   []float64{c.Lon(), c.Lat()},
		Zoom:     sess.Canvas.Zoom(),
		Bounds:   sess.Engine.Bounds(),
		Overlays: sess.Canvas.Len(),
		Layers:   sess.Engine.Layers().Len(),
		Created:  sess.Created,
	}
}

// Overlays describes every overlay on the canvas in drawing order.
func (sess *Session) Overlays() []OverlayInfo {
	owner := make(map[string]string)
	for _, e := range sess.Engine.Layers().List() {
		for _, o := range e.Overlays {
			owner[o.ID()] = e.Name
		}
	}

	overlays := sess.Canvas.Overlays()
	result := make([]OverlayInfo, len(overlays))
	for i, o := range overlays {
		result[i] = DescribeOverlay(o, owner[o.ID()])
	}
	return result
}

// Overlay returns the overlay with id and the layer it is registered under.
func (sess *Session) Overlay(id string) (widget.Overlay, string, bool) {
	o, ok := sess.Canvas.Overlay(id)
	if !ok {
		return nil, "", false
	}
	for _, e := range sess.Engine.Layers().List() {
		for _, x := range e.Overlays {
			if x.ID() == id {
				return o, e.Name, true
			}
		}
	}
	return o, "", true
}

// DescribeOverlay converts o into its API representation.
func DescribeOverlay(o widget.Overlay, layer string) OverlayInfo {
	info := OverlayInfo{
		ID:       o.ID(),
		Kind:     string(o.Kind()),
		Layer:    layer,
		Geometry: geojson.NewGeometry(o.Geometry()),
		Style:    o.Style(),
		Prop:     o.Prop(),
	}
	if r, ok := o.(widget.Radiuser); ok {
		info.Radius = r.Radius()
	}
	return info
}

// Layers describes the registry entries.
func (sess *Session) Layers() []LayerInfo {
	entries := sess.Engine.Layers().List()
	result := make([]LayerInfo, len(entries))
	for i, e := range entries {
		ids := make([]string, len(e.Overlays))
		for j, o := range e.Overlays {
			ids[j] = o.ID()
		}
		result[i] = LayerInfo{Name: e.Name, External: e.Renderer != nil, OverlayIDs: ids}
	}
	return result
}

func (sess *Session) publishChange(ch canvas.Change) {
	ev := Event{MapID: sess.ID, Resource: ResourceOverlays, Action: ch.Action}
	if ch.Overlay != nil {
		ev.ID = ch.Overlay.ID()
	} else {
		ev.Resource = ResourceMaps
		ev.ID = sess.ID
	}
	sess.bus.Publish(ev)
}
