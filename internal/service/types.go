// Package service holds the map sessions and the data sources that feed them.
package service

import (
	"time"

	"github.com/joeblew999/plat-overlay/internal/render"
	"github.com/joeblew999/plat-overlay/internal/style"
)

// MapConfig describes a new map session. Zero fields fall back to the
// service defaults.
type MapConfig struct {
	Name   string    `json:"name,omitempty" maxLength:"100" doc:"Display name" example:"Beijing"`
	Center []float64 `json:"center,omitempty" minItems:"2" maxItems:"2" doc:"Initial center as [lon, lat]"`
	Zoom   int       `json:"zoom,omitempty" minimum:"0" maximum:"22" doc:"Initial zoom level" example:"12"`
	Width  int       `json:"width,omitempty" minimum:"0" doc:"Viewport width in pixels" example:"1024"`
	Height int       `json:"height,omitempty" minimum:"0" doc:"Viewport height in pixels" example:"768"`
}

// MapInfo summarizes a map session.
type MapInfo struct {
	ID       string      `json:"id" doc:"Map session identifier"`
	Name     string      `json:"name,omitempty" doc:"Display name"`
	Center   []float64   `json:"center" doc:"Current center as [lon, lat]"`
	Zoom     int         `json:"zoom" doc:"Current zoom level"`
	Bounds   render.BBox `json:"bounds" doc:"Visible extent"`
	Overlays int         `json:"overlays" doc:"Number of overlays on the map"`
	Layers   int         `json:"layers" doc:"Number of registered layers"`
	Created  time.Time   `json:"created" doc:"Creation time"`
}

// OverlayInfo describes one overlay on a map.
type OverlayInfo struct {
	ID       string         `json:"id" doc:"Overlay identifier"`
	Kind     string         `json:"kind" enum:"marker,polyline,polygon,circle" doc:"Overlay type"`
	Layer    string         `json:"layer,omitempty" doc:"Layer the overlay is registered under"`
	Geometry any            `json:"geometry" doc:"GeoJSON geometry"`
	Radius   float64        `json:"radius,omitempty" doc:"Circle radius in meters"`
	Style    style.Style    `json:"style" doc:"Resolved style"`
	Prop     map[string]any `json:"prop" doc:"Attached metadata"`
}

// LayerInfo describes one registry entry.
type LayerInfo struct {
	Name       string   `json:"name" doc:"Layer name" example:"tmp"`
	External   bool     `json:"external" doc:"Whether an external renderer owns the layer"`
	OverlayIDs []string `json:"overlayIds" doc:"Overlays registered under the layer"`
}

// SourceFile represents a local GeoJSON file.
type SourceFile struct {
	Name     string `json:"name" doc:"File name" example:"districts.geojson"`
	Size     string `json:"size" doc:"Human-readable file size" example:"1.2 MB"`
	FileType string `json:"fileType" doc:"File type" example:"GeoJSON"`
}
