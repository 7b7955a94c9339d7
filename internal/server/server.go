package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/joeblew999/plat-overlay/internal/api"
	"github.com/joeblew999/plat-overlay/internal/api/editor"
	"github.com/joeblew999/plat-overlay/internal/db"
	"github.com/joeblew999/plat-overlay/internal/logging"
	"github.com/joeblew999/plat-overlay/internal/service"
	"github.com/joeblew999/plat-overlay/internal/templates"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string

	// Defaults for new map sessions.
	Zoom   int
	Width  int
	Height int

	// Logger defaults to a discarding logger.
	Logger *slog.Logger

	// NoDB skips opening DuckDB; render/query then answers 503.
	NoDB bool
}

// Server is the overlay HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	db       *sql.DB
	services *api.Services
	renderer *templates.Renderer
	logger   *slog.Logger
}

// New creates a new overlay server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("plat-overlay API", api.Version)
	humaConfig.Info.Description = "Renders GeoJSON into styled overlays on live map sessions."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	s := &Server{
		config:  cfg,
		mux:     mux,
		humaAPI: humaAPI,
		logger:  logger,
	}

	if !cfg.NoDB {
		conn, err := db.Get(db.Config{
			DataDir: cfg.DataDir,
			DBName:  "overlay",
		})
		if err != nil {
			logger.Warn("duckdb unavailable, query rendering disabled", "error", err)
		} else {
			s.db = conn
		}
	}

	bus := service.NewEventBus()
	s.services = &api.Services{
		Maps: service.NewMapService(service.MapConfig{
			Zoom:   cfg.Zoom,
			Width:  cfg.Width,
			Height: cfg.Height,
		}, bus, logger),
		Source:  service.NewSourceService(cfg.DataDir),
		Query:   service.NewQueryService(s.db, logger),
		DataDir: cfg.DataDir,
	}

	if r, err := templates.New(); err == nil {
		s.renderer = r
	} else {
		logger.Error("fragment templates failed to parse, editor routes disabled", "error", err)
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Maps exposes the session service for embedding callers.
func (s *Server) Maps() *service.MapService {
	return s.services.Maps
}

// Close closes server resources.
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	return db.Close()
}

func (s *Server) routes() {
	api.RegisterRoutes(s.humaAPI, s.services)

	if s.renderer != nil {
		events := editor.NewEventHandler(s.services.Maps, s.renderer)
		events.RegisterRoutes(s.humaAPI)
	}

	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"service": "plat-overlay",
		"status":  "running",
		"maps":    len(s.services.Maps.List()),
	})
}
