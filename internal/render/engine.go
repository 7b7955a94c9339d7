// Package render turns geometry and GeoJSON-shaped input into overlays on a
// map widget.
//
// An Engine is bound to one map. It resolves styles, builds overlays through
// the widget's factory, tracks them by layer name and wires interaction
// handlers. Render is the typed entry point; GeoJSON is the forgiving one
// that logs failures and returns nil instead.
package render

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/joeblew999/plat-overlay/internal/density"
	"github.com/joeblew999/plat-overlay/internal/layer"
	"github.com/joeblew999/plat-overlay/internal/widget"
)

var (
	// ErrRadiusRequired is returned when a circle is built without a positive radius.
	ErrRadiusRequired = errors.New("circle requires a positive radius")
	// ErrEmptyInput is returned for nil or blank input.
	ErrEmptyInput = errors.New("empty input")
	// ErrUnsupportedInput is returned for input values of an unknown Go type.
	ErrUnsupportedInput = errors.New("unsupported input")
	// ErrMalformed is returned for GeoJSON whose structure cannot be walked.
	ErrMalformed = errors.New("malformed geojson")
	// ErrMissingGeometry is returned for a feature without a geometry object.
	ErrMissingGeometry = errors.New("feature has no geometry")
)

// RendererFunc constructs an external renderer for data on m.
type RendererFunc func(m widget.Map, f widget.Factory, data any, opt Option) (widget.Renderer, error)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRegistry shares an existing layer registry with the engine.
func WithRegistry(r *layer.Registry) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.layers = r
		}
	}
}

// WithRenderer binds an external renderer to a render selector.
func WithRenderer(selector string, fn RendererFunc) EngineOption {
	return func(e *Engine) {
		e.renderers[selector] = fn
	}
}

// Engine renders features onto one map widget.
type Engine struct {
	mu        sync.Mutex
	m         widget.Map
	f         widget.Factory
	layers    *layer.Registry
	logger    *slog.Logger
	renderers map[string]RendererFunc
	tmp       widget.Overlay
}

// New creates an engine for m. The "mapv" selector is bound to the density
// grid unless overridden with WithRenderer.
func New(m widget.Map, f widget.Factory, opts ...EngineOption) *Engine {
	e := &Engine{
		m:      m,
		f:      f,
		layers: layer.NewRegistry(),
		logger: slog.Default(),
		renderers: map[string]RendererFunc{
			RenderMapV: densityRenderer,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Map returns the widget the engine draws on.
func (e *Engine) Map() widget.Map { return e.m }

// Layers returns the engine's layer registry.
func (e *Engine) Layers() *layer.Registry { return e.layers }

func densityRenderer(m widget.Map, f widget.Factory, data any, _ Option) (widget.Renderer, error) {
	return density.New(m, f, data, density.Options{})
}
