package humastar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionsFor(t *testing.T) {
	defs := []ActionDef{
		{Rel: "delete", Pattern: "/api/v1/maps/%s/overlays/%s", Method: "DELETE", Title: "Remove overlay"},
		{Rel: "self", Pattern: "/api/v1/maps/%s/overlays/%s"},
	}
	actions := ActionsFor(defs, "m1", "o1")
	require.Len(t, actions, 2)

	assert.Equal(t, `</api/v1/maps/m1/overlays/o1>; rel="delete"; method="DELETE"; title="Remove overlay"`, actions[0].LinkHeader())
	assert.Equal(t, `</api/v1/maps/m1/overlays/o1>; rel="self"`, actions[1].LinkHeader())
}

func TestParseSignals(t *testing.T) {
	s, err := ParseSignals([]byte(`{"layer":"roads","zoom":3}`))
	require.NoError(t, err)
	assert.Equal(t, "roads", s.String("layer"))
	assert.Empty(t, s.String("zoom"))
	assert.Empty(t, s.String("missing"))

	_, err = ParseSignals([]byte(`{`))
	assert.Error(t, err)
}
