package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joeblew999/plat-overlay/internal/logging"
	"github.com/joeblew999/plat-overlay/internal/render"
	"github.com/joeblew999/plat-overlay/internal/server"
)

// Options defines all CLI flags and env vars for the overlay server.
// Flags: --host, --port, --data-dir, --log-level, --log-format, --zoom, --width, --height
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_LOG_LEVEL, ...
type Options struct {
	Host      string `doc:"Host to bind to" default:"0.0.0.0"`
	Port      int    `doc:"Port to listen on" short:"p" default:"8087"`
	DataDir   string `doc:"Directory for GeoJSON sources and the DuckDB file" default:".data"`
	LogLevel  string `doc:"Log level (DEBUG, INFO, WARN, ERROR)" default:"INFO"`
	LogFormat string `doc:"Log format (text or json)" default:"text"`
	Zoom      int    `doc:"Default zoom for new maps" default:"11"`
	Width     int    `doc:"Default viewport width in pixels" default:"1024"`
	Height    int    `doc:"Default viewport height in pixels" default:"768"`
}

func newServer(opts *Options, noDB bool) *server.Server {
	return server.New(server.Config{
		Host:    opts.Host,
		Port:    fmt.Sprintf("%d", opts.Port),
		DataDir: opts.DataDir,
		Zoom:    opts.Zoom,
		Width:   opts.Width,
		Height:  opts.Height,
		Logger:  logging.Init(opts.LogLevel, opts.LogFormat),
		NoDB:    noDB,
	})
}

func main() {
	// .env is optional; real env vars win.
	_ = godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		srv := newServer(opts, false)

		hooks.OnStart(func() {
			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-overlay API server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Data:    %s\n", opts.DataDir)
			fmt.Println()
			fmt.Printf("  Events:  %s/api/v1/editor/maps/{id}/events\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			if err := http.ListenAndServe(addr, srv); err != nil {
				log.Fatalf("Server error: %v", err)
			}
		})

		hooks.OnStop(func() {
			srv.Close()
		})
	})

	cli.Root().Use = "overlay"
	cli.Root().Short = "Render GeoJSON into styled map overlays"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv := newServer(opts, true)
			useYAML, _ := cmd.Flags().GetBool("yaml")
			if err := write(os.Stdout, srv.OpenAPI(), useYAML); err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// render subcommand: draw a GeoJSON file on a headless map and print the overlays
	renderCmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render GeoJSON from a file (or stdin) and print the resulting overlays",
		Args:  cobra.MaximumNArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			logger := logging.Init(opts.LogLevel, opts.LogFormat)

			in := io.Reader(os.Stdin)
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error opening input: %v\n", err)
					os.Exit(1)
				}
				defer f.Close()
				in = f
			}

			var opt render.Option
			opt.Name, _ = cmd.Flags().GetString("layer")
			opt.Render, _ = cmd.Flags().GetString("render")
			useYAML, _ := cmd.Flags().GetBool("yaml")

			out, err := renderInput(in, opt, opts, logger)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
				os.Exit(1)
			}
			if err := write(os.Stdout, out, useYAML); err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling result: %v\n", err)
				os.Exit(1)
			}
		}),
	}
	renderCmd.Flags().StringP("layer", "l", "", "Layer name (default tmp)")
	renderCmd.Flags().StringP("render", "r", "", "External renderer selector, e.g. mapv")
	renderCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(renderCmd)

	cli.Run()
}
