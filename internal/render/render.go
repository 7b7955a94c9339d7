package render

import (
	"fmt"

	"github.com/joeblew999/plat-overlay/internal/geometry"
	"github.com/joeblew999/plat-overlay/internal/layer"
	"github.com/joeblew999/plat-overlay/internal/widget"
)

// Result describes what one render call produced.
type Result struct {
	Layer      string
	Collection bool
	External   bool
	Overlays   []widget.Overlay
	Failures   []*FeatureError
}

// Single returns the only overlay of a single-feature render, or nil.
func (r *Result) Single() widget.Overlay {
	if r == nil || len(r.Overlays) == 0 {
		return nil
	}
	return r.Overlays[0]
}

// FeatureError reports a feature that could not be drawn.
type FeatureError struct {
	Index int
	Kind  geometry.Kind
	Err   error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("feature %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *FeatureError) Unwrap() error { return e.Err }

// Render draws input on the map.
//
// input may be a FeatureCollection, a list of Features, a single Feature or
// a bare geometry, either as Go values (orb, orb/geojson or decoded JSON) or
// as GeoJSON text. When opt.Render names a bound external renderer the whole
// input is handed to it instead, updating the renderer already registered
// under opt.Name if there is one.
//
// Collections render every feature they can: malformed features are
// reported in Result.Failures and features of unrecognized kinds are
// skipped. A malformed single feature is returned as an error.
func (e *Engine) Render(input any, opt Option) (*Result, error) {
	opt = opt.withDefaults()

	e.mu.Lock()
	defer e.mu.Unlock()

	if opt.Render != "" {
		if fn, ok := e.renderers[opt.Render]; ok {
			return e.renderExternal(fn, input, opt)
		}
		e.logger.Warn("unknown render selector, drawing overlays directly", "render", opt.Render, "layer", opt.Name)
	}

	doc, err := decode(input)
	if err != nil {
		return nil, err
	}
	if opt.Replace {
		e.clear(opt.Name)
	}

	res := &Result{Layer: opt.Name, Collection: doc.collection}
	for i, f := range doc.features {
		o, err := e.buildFeature(f, opt)
		if err != nil {
			fe := &FeatureError{Index: i, Kind: f.kind, Err: err}
			if !doc.collection {
				return nil, fe
			}
			e.logger.Warn("skipping feature", "layer", opt.Name, "index", i, "error", err)
			res.Failures = append(res.Failures, fe)
			continue
		}
		if o == nil {
			e.logger.Debug("skipping unrecognized geometry", "layer", opt.Name, "index", i)
			continue
		}
		res.Overlays = append(res.Overlays, o)
	}

	e.logger.Debug("rendered",
		"layer", opt.Name,
		"overlays", len(res.Overlays),
		"failures", len(res.Failures))
	return res, nil
}

func (e *Engine) buildFeature(f featureInput, opt Option) (widget.Overlay, error) {
	if f.err != nil {
		return nil, f.err
	}
	switch f.kind {
	case geometry.Polygon:
		return e.polygon(f.coords, opt, f.props)
	case geometry.LineString:
		return e.polyline(f.coords, opt, f.props)
	case geometry.Point:
		return e.point(f.coords, opt, f.props)
	}
	return nil, nil
}

func (e *Engine) renderExternal(fn RendererFunc, input any, opt Option) (*Result, error) {
	entry, ok := e.layers.Get(opt.Name)

	// IDs the renderer owned before this call; everything else in the entry
	// was drawn directly and must stay registered.
	owned := make(map[string]bool)
	if ok && entry.Renderer != nil {
		for _, o := range entry.Renderer.Overlays() {
			owned[o.ID()] = true
		}
	}

	var r widget.Renderer
	if ok && entry.Renderer != nil {
		if err := entry.Renderer.Update(input); err != nil {
			return nil, fmt.Errorf("update layer %q: %w", opt.Name, err)
		}
		r = entry.Renderer
	} else {
		var err error
		r, err = fn(e.m, e.f, input, opt)
		if err != nil {
			return nil, fmt.Errorf("create %s layer %q: %w", opt.Render, opt.Name, err)
		}
		if ok {
			e.logger.Debug("external renderer joins layer", "layer", opt.Name, "overlays", len(entry.Overlays))
		}
	}

	overlays := r.Overlays()
	var tracked []widget.Overlay
	for _, o := range entry.Overlays {
		if !owned[o.ID()] {
			tracked = append(tracked, o)
		}
	}
	tracked = append(tracked, overlays...)
	e.layers.Set(opt.Name, layer.Entry{Renderer: r, Overlays: tracked})

	return &Result{
		Layer:      opt.Name,
		Collection: true,
		External:   true,
		Overlays:   overlays,
	}, nil
}
