package humastar

import (
	"fmt"
	"strings"
)

// Action is a state-dependent hypermedia link, emitted as an RFC 8288 Link
// header with method and title extension parameters:
//
//	</api/v1/maps/42/overlays/7>; rel="delete"; method="DELETE"; title="Remove overlay"
type Action struct {
	Rel    string
	Href   string
	Method string
	Title  string
}

// Actor is implemented by response bodies that offer actions.
type Actor interface {
	Actions() []Action
}

// LinkHeader formats the action as a Link header value.
func (a Action) LinkHeader() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<%s>; rel="%s"`, a.Href, a.Rel)
	if a.Method != "" {
		fmt.Fprintf(&b, `; method="%s"`, a.Method)
	}
	if a.Title != "" {
		fmt.Fprintf(&b, `; title="%s"`, a.Title)
	}
	return b.String()
}

// ActionDef is a reusable action template. Pattern is formatted with the
// resource path parameters in order.
type ActionDef struct {
	Rel     string
	Pattern string // e.g. "/api/v1/maps/%s/overlays/%s"
	Method  string
	Title   string
}

// ActionsFor expands defs for one resource.
func ActionsFor(defs []ActionDef, params ...any) []Action {
	actions := make([]Action, len(defs))
	for i, d := range defs {
		actions[i] = Action{
			Rel:    d.Rel,
			Href:   fmt.Sprintf(d.Pattern, params...),
			Method: d.Method,
			Title:  d.Title,
		}
	}
	return actions
}
