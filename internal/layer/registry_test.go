package layer

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-overlay/internal/canvas"
	"github.com/joeblew999/plat-overlay/internal/widget"
)

type stubRenderer struct{ updates int }

func (s *stubRenderer) Update(any) error          { s.updates++; return nil }
func (s *stubRenderer) Overlays() []widget.Overlay { return nil }

func TestRegistry_GetSet(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get("tmp")
	assert.False(t, ok)

	rend := &stubRenderer{}
	r.Set("heat", Entry{Renderer: rend})
	r.Set("heat", Entry{Renderer: rend})

	e, ok := r.Get("heat")
	require.True(t, ok)
	assert.Equal(t, "heat", e.Name)
	assert.Same(t, rend, e.Renderer)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_AppendForget(t *testing.T) {
	c := canvas.New(canvas.Config{})
	a := c.NewMarker(orb.Point{0, 0}, nil)
	b := c.NewMarker(orb.Point{1, 1}, nil)

	r := NewRegistry()
	r.Append("pois", a)
	r.Append("pois", b)
	r.Append("other", a)

	e, _ := r.Get("pois")
	assert.Equal(t, []widget.Overlay{a, b}, e.Overlays)

	r.Forget(a)
	e, _ = r.Get("pois")
	assert.Equal(t, []widget.Overlay{b}, e.Overlays)

	_, ok := r.Get("other")
	assert.False(t, ok, "empty entry should be dropped")
}

func TestRegistry_ForgetKeepsRendererEntries(t *testing.T) {
	c := canvas.New(canvas.Config{})
	a := c.NewMarker(orb.Point{0, 0}, nil)

	r := NewRegistry()
	r.Set("heat", Entry{Renderer: &stubRenderer{}, Overlays: []widget.Overlay{a}})
	r.Forget(a)

	e, ok := r.Get("heat")
	require.True(t, ok)
	assert.Empty(t, e.Overlays)
}

func TestRegistry_DeleteAndList(t *testing.T) {
	r := NewRegistry()
	r.Set("b", Entry{})
	r.Set("a", Entry{})

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "b", list[1].Name)

	_, ok := r.Delete("a")
	assert.True(t, ok)
	_, ok = r.Delete("a")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	c := canvas.New(canvas.Config{})
	r := NewRegistry()
	r.Append("x", c.NewMarker(orb.Point{0, 0}, nil))

	e, _ := r.Get("x")
	e.Overlays[0] = nil

	again, _ := r.Get("x")
	assert.NotNil(t, again.Overlays[0])
}
