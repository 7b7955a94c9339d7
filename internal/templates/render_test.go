package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	html, err := r.Render("overlay-row", map[string]any{
		"ID":     "o1",
		"Kind":   "circle",
		"Layer":  "heat",
		"Radius": 250.0,
		"Style":  map[string]any{"fillColor": "blue"},
	})
	require.NoError(t, err)
	assert.Contains(t, html, `id="overlay-o1"`)
	assert.Contains(t, html, "250 m")
	assert.Contains(t, html, "background: blue")

	html, err = r.Render("empty-state", map[string]string{"Title": "No overlays", "Message": "Render something"})
	require.NoError(t, err)
	assert.Contains(t, html, "No overlays")

	_, err = r.Render("missing", nil)
	assert.Error(t, err)
}

func TestRenderer_Reload(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.html"), []byte(`{{define "empty-state"}}nothing{{end}}`), 0644))
	require.NoError(t, r.Reload(dir))

	html, err := r.Render("empty-state", nil)
	require.NoError(t, err)
	assert.Equal(t, "nothing", html)
}
