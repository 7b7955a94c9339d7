package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-overlay/internal/render"
	"github.com/joeblew999/plat-overlay/internal/service"
)

var errNotDrawable = errors.New("input is not drawable GeoJSON")

type failure struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

type renderResult struct {
	Layer    string                `json:"layer"`
	External bool                  `json:"external"`
	Map      service.MapInfo       `json:"map"`
	Overlays []service.OverlayInfo `json:"overlays"`
	Failures []failure             `json:"failures,omitempty"`
}

// renderInput draws in on a fresh headless map session.
func renderInput(in io.Reader, opt render.Option, opts *Options, logger *slog.Logger) (*renderResult, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	maps := service.NewMapService(service.MapConfig{
		Zoom:   opts.Zoom,
		Width:  opts.Width,
		Height: opts.Height,
	}, nil, logger)
	sess, err := maps.Create(service.MapConfig{Name: "cli"})
	if err != nil {
		return nil, err
	}

	res := sess.Render(data, opt)
	if res == nil {
		return nil, errNotDrawable
	}

	out := &renderResult{
		Layer:    res.Layer,
		External: res.External,
		Map:      sess.Info(),
		Overlays: sess.Overlays(),
	}
	for _, f := range res.Failures {
		out.Failures = append(out.Failures, failure{Index: f.Index, Kind: f.Kind.String(), Error: f.Err.Error()})
	}
	return out, nil
}

// write prints v as indented JSON, or as YAML via its JSON form so field
// names match the API.
func write(w io.Writer, v any, useYAML bool) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if !useYAML {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
