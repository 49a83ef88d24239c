package main

import (
	"context"
	"flag"
	"io"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "adda/internal/adapters/mcp"
	"adda/internal/bootstrap"
	"adda/internal/config"
	"adda/internal/logging"
)

func main() {
	configFlag := flag.String("config", "", "path to the config file (default $ADDA_CONFIG or ~/.config/adda/config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("adda-mcp: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("adda-mcp: %v", err)
	}

	// stdout carries the protocol; logs only go to the configured file
	logger, err := logging.New(io.Discard, logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		log.Fatalf("adda-mcp: %v", err)
	}
	defer logger.Close()

	app, err := bootstrap.New(context.Background(), cfg, logger.Logger)
	if err != nil {
		log.Fatalf("adda-mcp: %v", err)
	}
	defer app.Close()

	mcpServer := server.NewMCPServer(
		"adda-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, app.Table, app)
	mcpadapter.RegisterWriteTools(mcpServer, app.Table, app)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Printf("adda-mcp: %v", err)
	}
}
