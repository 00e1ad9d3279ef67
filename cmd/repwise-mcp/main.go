// repwise-mcp serves the RepWise MCP tools over stdio. It runs in one of
// two modes: local, connecting straight to the Postgres database, or
// remote, proxying the REST API of a running repwise server (typically
// reached over Tailscale).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/repwise/internal/advisor"
	"github.com/claude/repwise/internal/config"
	"github.com/claude/repwise/internal/mcp"
	"github.com/claude/repwise/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (local mode)")
	remoteURL := flag.String("url", "", "base URL of a running repwise server (remote mode)")
	apiKey := flag.String("api-key", "", "API key for the remote server (remote mode)")
	flag.Parse()

	// Logs go to stderr: stdout is the MCP transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var (
		ds   mcp.DataSource
		proc mcp.WeekProcessor
	)

	switch {
	case *remoteURL != "":
		client := mcp.NewHTTPClient(*remoteURL, *apiKey)
		ds, proc = client, client
		log.Info("repwise-mcp starting", "version", Version, "mode", "remote", "url", *remoteURL)

	case *configPath != "":
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		ds = db
		proc = mcp.LocalProcessor{DB: db, Advisor: advisor.New()}
		log.Info("repwise-mcp starting", "version", Version, "mode", "local")

	default:
		fmt.Fprintf(os.Stderr, "Usage: repwise-mcp -config config.yaml | -url https://repwise.example [-api-key KEY]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	s := mcp.New(ds, proc, Version, log)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
