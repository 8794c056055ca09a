package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/agrolink/consult-sync/internal/mcp"
)

const version = "v1.0.0"

// This MCP server talks to a running consultd through its local control API.
// stdout carries the MCP protocol, so logs go to stderr.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	apiURL := os.Getenv("CONSULTD_API_URL")
	if apiURL == "" {
		port := os.Getenv("DEBUG_API_PORT")
		if port == "" {
			port = "8090"
		}
		apiURL = fmt.Sprintf("http://127.0.0.1:%s", port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(mcp.NewHandler(mcp.NewClient(apiURL), logger), version)
	logger.Info("consult-mcp started", "api_url", apiURL)
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
