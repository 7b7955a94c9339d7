package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-overlay/internal/db"
	"github.com/joeblew999/plat-overlay/internal/logging"
	"github.com/joeblew999/plat-overlay/internal/render"
)

func TestQueryService_NoDatabase(t *testing.T) {
	svc := NewQueryService(nil, nil)
	assert.False(t, svc.Available())

	_, err := svc.Features(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func TestQueryService_Features(t *testing.T) {
	conn, err := db.Open(db.Config{Extensions: []string{}})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	svc := NewQueryService(conn, logging.Discard())
	ctx := context.Background()

	fc, err := svc.Features(ctx, `
		SELECT 'a' AS name, 1 AS rank, '{"type":"Point","coordinates":[1,2]}' AS geometry
		UNION ALL
		SELECT 'b', 2, 'not geojson'
		ORDER BY rank`)
	require.NoError(t, err)

	features := fc["features"].([]any)
	require.Len(t, features, 2)

	first := features[0].(map[string]any)
	assert.Equal(t, "a", first["properties"].(map[string]any)["name"])
	assert.Equal(t, "Point", first["geometry"].(map[string]any)["type"])
	assert.Nil(t, features[1].(map[string]any)["geometry"])

	_, err = svc.Features(ctx, "SELECT 1 AS x")
	assert.ErrorIs(t, err, ErrNoGeometryColumn)

	// the unparseable row is reported per feature, the good one is drawn
	maps := NewMapService(MapConfig{}, nil, logging.Discard())
	sess, err := maps.Create(MapConfig{})
	require.NoError(t, err)
	res := sess.Render(fc, render.Option{Name: "query"})
	require.NotNil(t, res)
	assert.Len(t, res.Overlays, 1)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 1, res.Failures[0].Index)
}

func TestQueryService_Tables(t *testing.T) {
	conn, err := db.Open(db.Config{Extensions: []string{}})
	require.NoError(t, err)

	svc := NewQueryService(conn, logging.Discard())
	ctx := context.Background()

	_, err = conn.ExecContext(ctx, "CREATE TABLE districts (name VARCHAR, geometry VARCHAR)")
	require.NoError(t, err)

	tables, err := svc.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"districts"}, tables)

	require.NoError(t, conn.Close())
	_, err = svc.Tables(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list tables")
}
