// dungeond serves dungeon previews over WebSocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lawnchairsociety/dungeongen/internal/catalog"
	"github.com/lawnchairsociety/dungeongen/internal/config"
	"github.com/lawnchairsociety/dungeongen/internal/logger"
	"github.com/lawnchairsociety/dungeongen/internal/server"
)

func main() {
	configFile := flag.String("config", "dungeongen.yaml", "Path to generator config YAML file")
	addr := flag.String("addr", "", "Listen address (default: from config)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Address = *addr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config:\n%v\n", err)
		os.Exit(1)
	}

	if _, err := logger.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting dungeon preview server")

	srv := server.NewServer(cfg, logger.With("component", "server"))

	if cfg.Catalog.Enabled {
		cat, err := catalog.Open(cfg.Catalog)
		if err != nil {
			logger.Error("Failed to open catalog", "driver", cfg.Catalog.Driver, "error", err)
			os.Exit(1)
		}
		defer cat.Close()
		srv.SetCatalog(cat)
		logger.Info("Run catalog enabled", "driver", cat.Dialect().Driver)
	}

	if len(cfg.Server.AllowedOrigins) == 0 {
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	} else if len(cfg.Server.AllowedOrigins) == 1 && cfg.Server.AllowedOrigins[0] == "*" {
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	} else {
		logger.Info("WebSocket CORS policy", "allowed_origins", cfg.Server.AllowedOrigins)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Preview server running", "address", cfg.Server.Address,
		"max_per_ip", cfg.Server.MaxPerIP, "max_total", cfg.Server.MaxTotal)
	logger.Info("Press Ctrl+C to shutdown")

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
