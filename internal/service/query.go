package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// GeometryColumn is the result column QueryService reads geometry from.
const GeometryColumn = "geometry"

var (
	// ErrNoDatabase is returned when the query service has no connection.
	ErrNoDatabase = errors.New("database not available")
	// ErrNoGeometryColumn is returned when a query result lacks the geometry column.
	ErrNoGeometryColumn = errors.New(`query result has no "geometry" column`)
)

// QueryService turns DuckDB query results into GeoJSON feature collections.
type QueryService struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewQueryService creates a query service. db may be nil, in which case
// every query fails with ErrNoDatabase.
func NewQueryService(db *sql.DB, logger *slog.Logger) *QueryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryService{db: db, logger: logger}
}

// Available reports whether a database is attached.
func (s *QueryService) Available() bool {
	return s != nil && s.db != nil
}

// Features runs query and returns a FeatureCollection in decoded-JSON form.
// The geometry column must hold GeoJSON text, for example
// ST_AsGeoJSON(geom) AS geometry; every other column becomes a property.
// Rows whose geometry does not parse keep a null geometry.
func (s *QueryService) Features(ctx context.Context, query string) (map[string]any, error) {
	if !s.Available() {
		return nil, ErrNoDatabase
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	geomIdx := -1
	for i, c := range cols {
		if strings.EqualFold(c, GeometryColumn) {
			geomIdx = i
			break
		}
	}
	if geomIdx < 0 {
		return nil, ErrNoGeometryColumn
	}

	features := []any{}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		props := make(map[string]any, len(cols)-1)
		for i, c := range cols {
			if i == geomIdx {
				continue
			}
			props[c] = columnValue(values[i])
		}

		features = append(features, map[string]any{
			"type":       "Feature",
			"geometry":   s.parseGeometry(values[geomIdx], len(features)),
			"properties": props,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return map[string]any{
		"type":     "FeatureCollection",
		"features": features,
	}, nil
}

// Tables lists the tables of the attached database.
func (s *QueryService) Tables(ctx context.Context) ([]string, error) {
	if !s.Available() {
		return nil, ErrNoDatabase
	}

	rows, err := s.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

func (s *QueryService) parseGeometry(v any, row int) any {
	var raw []byte
	switch t := v.(type) {
	case string:
		raw = []byte(t)
	case []byte:
		raw = t
	case nil:
		return nil
	default:
		s.logger.Warn("geometry column is not text", "row", row, "type", fmt.Sprintf("%T", v))
		return nil
	}

	var g map[string]any
	if err := json.Unmarshal(raw, &g); err != nil {
		s.logger.Warn("unparseable geometry", "row", row, "error", err)
		return nil
	}
	return g
}

func columnValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
