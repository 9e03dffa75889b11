package main

import (
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ieg-tools/projcodes/internal/config"
	"github.com/ieg-tools/projcodes/internal/logging"
	"github.com/ieg-tools/projcodes/internal/version"
	"github.com/ieg-tools/projcodes/mcp"
)

const serverName = "projcodes"

func main() {
	configPath := pflag.StringP("config", "c", "", "Configuration file path (default: .projcodes.toml lookup)")
	pflag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout carries JSON-RPC
	log, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	deps, err := mcp.NewDependencies(cfg, log)
	if err != nil {
		log.Fatal("failed to build session", zap.Error(err))
	}

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)
	mcp.RegisterTools(server, mcp.NewHandlerSet(deps))

	log.Info("starting MCP server",
		zap.String("name", serverName),
		zap.String("version", version.Short()),
		zap.Strings("tools", []string{
			"load_data", "unload_data", "data_info",
			"get_projects", "get_codes", "count_codes", "dominant_code",
			"save_result", "plot_result",
		}),
	)

	if err := mcpserver.ServeStdio(server); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
