package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	dataFile := flag.String("data", "", "locations CSV/GeoJSON file or directory (overrides config)")
	flag.Parse()

	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("Could not read .env")
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dataFile != "" {
		cfg.DataFile = *dataFile
	}

	l, err := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger = l

	logger.Info().Msg("🚀 College Navigator route server")
	logger.Info().
		Str("data", cfg.DataFile).
		Float64("minSpeed", cfg.Synthesizer.MinSpeed).
		Float64("maxSpeed", cfg.Synthesizer.MaxSpeed).
		Bool("considerSpeed", cfg.ConsiderSpeed).
		Msg("Configuration loaded")

	srv := NewServer(cfg)
	if g, err := srv.Reload(); err != nil {
		logger.Warn().Err(err).Msg("No graph loaded; call /graph/reload once the data file is fixed")
	} else {
		b := g.Bound()
		logger.Info().
			Int("locations", g.Len()).
			Int("edges", g.EdgeCount()).
			Msgf("Bounding box: (%.0f, %.0f) to (%.0f, %.0f)", b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y())
	}

	logger.Info().Msg("Endpoints:")
	logger.Info().Msg("  GET  /health                      - Check server status")
	logger.Info().Msg("  GET  /locations                   - List locations")
	logger.Info().Msg("  GET  /locations/{name}/neighbors  - Outgoing edges of a location")
	logger.Info().Msg("  GET  /nearest?x=&y=&radius=       - Location under a click")
	logger.Info().Msg("  POST /route                       - Shortest route between two locations")
	logger.Info().Msg("  POST /routes                      - Several routes at once")
	logger.Info().Msg("  GET  /graph/lines                 - Graph edges as GeoJSON")
	logger.Info().Msg("  POST /graph/reload                - Rebuild the graph from the data file")
	logger.Info().Str("addr", cfg.Addr).Msg("Server starting")

	if err := http.ListenAndServe(cfg.Addr, srv.Handler()); err != nil {
		logger.Fatal().Err(err).Msg("Server stopped")
	}
}
