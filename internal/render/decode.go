package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-overlay/internal/geometry"
)

// featureInput is one drawable unit found in the input. coords is either raw
// decoded JSON or a typed orb geometry; the builders accept both.
type featureInput struct {
	kind   geometry.Kind
	coords any
	props  map[string]any
	err    error
}

type document struct {
	collection bool
	features   []featureInput
}

func decode(input any) (document, error) {
	switch v := input.(type) {
	case nil:
		return document{}, ErrEmptyInput
	case string:
		return decodeBytes([]byte(v))
	case []byte:
		return decodeBytes(v)
	case json.RawMessage:
		return decodeBytes(v)
	case *geojson.FeatureCollection:
		if v == nil {
			return document{}, ErrEmptyInput
		}
		return fromFeatures(v.Features), nil
	case []*geojson.Feature:
		return fromFeatures(v), nil
	case *geojson.Feature:
		if v == nil {
			return document{}, ErrEmptyInput
		}
		return document{features: []featureInput{fromFeature(v)}}, nil
	case *geojson.Geometry:
		if v == nil || v.Geometry() == nil {
			return document{}, ErrEmptyInput
		}
		return document{features: []featureInput{fromOrb(v.Geometry(), nil)}}, nil
	case orb.Geometry:
		return document{features: []featureInput{fromOrb(v, nil)}}, nil
	case map[string]any, []any:
		return decodeValue(v)
	default:
		return document{}, fmt.Errorf("%w: %T", ErrUnsupportedInput, input)
	}
}

func decodeBytes(b []byte) (document, error) {
	if len(strings.TrimSpace(string(b))) == 0 {
		return document{}, ErrEmptyInput
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return document{}, fmt.Errorf("decode geojson: %w", err)
	}
	return decodeValue(v)
}

func decodeValue(v any) (document, error) {
	switch t := v.(type) {
	case []any:
		doc := document{collection: true, features: make([]featureInput, 0, len(t))}
		for _, item := range t {
			doc.features = append(doc.features, fromValue(item))
		}
		return doc, nil
	case map[string]any:
		typ, _ := t["type"].(string)
		switch typ {
		case "":
			return document{}, fmt.Errorf("%w: missing type", ErrMalformed)
		case "FeatureCollection":
			items, ok := t["features"].([]any)
			if !ok {
				return document{}, fmt.Errorf("%w: features is not an array", ErrMalformed)
			}
			doc := document{collection: true, features: make([]featureInput, 0, len(items))}
			for _, item := range items {
				doc.features = append(doc.features, fromValue(item))
			}
			return doc, nil
		default:
			return document{features: []featureInput{fromMap(t)}}, nil
		}
	default:
		return document{}, fmt.Errorf("%w: %T", ErrUnsupportedInput, v)
	}
}

// fromValue handles one element of a collection. Problems are recorded on
// the element so the rest of the collection still renders.
func fromValue(v any) featureInput {
	m, ok := v.(map[string]any)
	if !ok {
		return featureInput{err: fmt.Errorf("%w: feature is %T", ErrMalformed, v)}
	}
	return fromMap(m)
}

func fromMap(m map[string]any) featureInput {
	typ, _ := m["type"].(string)
	if typ != "Feature" {
		// bare geometry
		return featureInput{kind: geometry.ParseKind(typ), coords: m["coordinates"]}
	}

	props, _ := m["properties"].(map[string]any)
	g, ok := m["geometry"].(map[string]any)
	if !ok {
		return featureInput{props: props, err: ErrMissingGeometry}
	}
	gtyp, _ := g["type"].(string)
	return featureInput{
		kind:   geometry.ParseKind(gtyp),
		coords: g["coordinates"],
		props:  props,
	}
}

func fromFeatures(fs []*geojson.Feature) document {
	doc := document{collection: true, features: make([]featureInput, 0, len(fs))}
	for _, f := range fs {
		doc.features = append(doc.features, fromFeature(f))
	}
	return doc
}

func fromFeature(f *geojson.Feature) featureInput {
	if f == nil || f.Geometry == nil {
		return featureInput{err: ErrMissingGeometry}
	}
	return fromOrb(f.Geometry, f.Properties)
}

func fromOrb(g orb.Geometry, props map[string]any) featureInput {
	kind, g := geometry.FromOrb(g)
	return featureInput{kind: kind, coords: g, props: props}
}
